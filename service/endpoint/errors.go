package endpoint

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/viant/offboard/model"
)

type errorBody struct {
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

// StatusCode maps a failure reason onto an HTTP status
func StatusCode(reason model.Reason) int {
	switch reason {
	case model.ReasonMalformedToken, model.ReasonWrongFormType:
		return http.StatusBadRequest
	case model.ReasonInvalidSignature:
		return http.StatusUnauthorized
	case model.ReasonNotFound:
		return http.StatusNotFound
	case model.ReasonPreconditionFailed, model.ReasonReplayed:
		return http.StatusConflict
	case model.ReasonExpired:
		return http.StatusGone
	case model.ReasonValidationFailed:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var reasoned *model.Error
	if errors.As(err, &reasoned) {
		writeJSON(w, StatusCode(reasoned.Reason), &errorBody{Reason: string(reasoned.Reason), Message: reasoned.Message})
		return
	}
	h.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, &errorBody{Reason: "internal", Message: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
