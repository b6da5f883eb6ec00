package endpoint

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/approval"
	"github.com/viant/offboard/service/form"
)

// maxBodySize bounds decision and form bodies
const maxBodySize = 64 << 10

type decisionRequest struct {
	Token  string       `json:"token"`
	Action model.Action `json:"action"`
	Notes  string       `json:"notes"`
}

type formRequest struct {
	Token  string            `json:"token"`
	Fields map[string]string `json:"fields"`
}

type outcome struct {
	SubmissionID int                     `json:"submissionId"`
	Status       model.ResignationStatus `json:"status"`
}

// Handler serves approval and form links
type Handler struct {
	approvals *approval.Service
	forms     *form.Handler
	limiter   *RateLimiter
	logger    *slog.Logger
}

// Router returns the HTTP routes
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Trace)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter.Middleware)
		}
		r.Get("/approve/{role}/{id}", h.inspectApproval)
		r.Post("/approve/{id}", h.decide)
		r.Get("/forms/{formType}", h.inspectForm)
		r.Post("/forms/{formType}", h.submitForm)
	})
	return r
}

func (h *Handler) inspectApproval(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	query := r.URL.Query()
	view, err := h.approvals.Inspect(r.Context(), &approval.Request{
		Token:        query.Get("token"),
		Action:       model.Action(query.Get("action")),
		Role:         model.Role(chi.URLParam(r, "role")),
		SubmissionID: id,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	request := &decisionRequest{}
	if isForm(r) {
		err = r.ParseForm()
		request.Token, request.Action, request.Notes = r.PostForm.Get("token"), model.Action(r.PostForm.Get("action")), r.PostForm.Get("notes")
	} else {
		err = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(request)
	}
	if err != nil {
		h.writeError(w, r, model.NewError(model.ReasonValidationFailed, "invalid request body"))
		return
	}
	result, err := h.approvals.Decide(r.Context(), &approval.Decision{
		Token:        request.Token,
		Action:       request.Action,
		Notes:        request.Notes,
		SubmissionID: id,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) inspectForm(w http.ResponseWriter, r *http.Request) {
	view, err := h.forms.Inspect(r.Context(), form.Type(chi.URLParam(r, "formType")), r.URL.Query().Get("token"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request) {
	request := &formRequest{}
	var err error
	if isForm(r) {
		if err = r.ParseForm(); err == nil {
			request.Token = r.PostForm.Get("token")
			request.Fields = make(map[string]string, len(r.PostForm))
			for name := range r.PostForm {
				if name != "token" {
					request.Fields[name] = r.PostForm.Get(name)
				}
			}
		}
	} else {
		err = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(request)
	}
	if err != nil {
		h.writeError(w, r, model.NewError(model.ReasonValidationFailed, "invalid request body"))
		return
	}
	result, err := h.forms.Submit(r.Context(), form.Type(chi.URLParam(r, "formType")), request.Token, request.Fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &outcome{SubmissionID: result.Submission.ID, Status: result.To})
}

func pathID(r *http.Request) (int, error) {
	value := chi.URLParam(r, "id")
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return 0, model.NewError(model.ReasonValidationFailed, "invalid submission id: %q", value)
	}
	return id, nil
}

func isForm(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

// New creates an HTTP handler; limiter may be nil
func New(approvals *approval.Service, forms *form.Handler, limiter *RateLimiter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{approvals: approvals, forms: forms, limiter: limiter, logger: logger}
}
