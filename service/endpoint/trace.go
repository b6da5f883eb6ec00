package endpoint

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/viant/offboard/tracing"
)

// SpanName is the name of the server span recorded per request
const SpanName = "endpoint.request"

// Trace wraps each request in a server span carrying the matched route and status
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.StartSpan(r.Context(), SpanName, tracing.KindServer)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			span.WithAttributes(map[string]string{
				"http.method":      r.Method,
				"http.route":       route,
				"http.status_code": strconv.Itoa(status),
			})
			span.SetStatusFromHTTPCode(status)
			span.End()
		}()
		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}
