// Package api is the JSON surface the host CMS calls: lifecycle events,
// per-post opt-in flags and integration status.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kolapsis/koraki/internal/link"
	"github.com/kolapsis/koraki/internal/notify"
	"github.com/kolapsis/koraki/internal/settings"
	"github.com/kolapsis/koraki/internal/textutil"
)

const maxRequestBody = 1 << 20

// StatusSource reports the credential link state.
type StatusSource interface {
	Status(ctx context.Context) (link.Status, error)
	DashboardURL(applicationID string) string
}

// OptInStore reads and writes per-post opt-in flags.
type OptInStore interface {
	OptIn(ctx context.Context, postID int64) (string, error)
	SetOptIn(ctx context.Context, postID int64, value string) error
}

// Handler serves the host API.
type Handler struct {
	notifier notify.Notifier
	optIns   OptInStore
	status   StatusSource
}

// NewHandler creates a Handler.
func NewHandler(n notify.Notifier, optIns OptInStore, status StatusSource) *Handler {
	return &Handler{notifier: n, optIns: optIns, status: status}
}

// Routes returns the API router, to be mounted under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/events/content-published", h.contentPublished)
	r.Post("/events/review-approved", h.reviewApproved)
	r.Post("/events/comment-approved", h.commentApproved)
	r.Get("/posts/{id}/opt-in", h.getOptIn)
	r.Put("/posts/{id}/opt-in", h.putOptIn)
	r.Get("/status", h.getStatus)
	return r
}

// EventResponse reports whether an event produced a notification.
type EventResponse struct {
	Topic notify.Topic `json:"topic,omitempty"`
	Sent  bool         `json:"sent"`
}

func (h *Handler) contentPublished(w http.ResponseWriter, r *http.Request) {
	var ev notify.ContentEvent
	if !decodeBody(w, r, &ev) {
		return
	}
	topic, sent := h.notifier.OnContentPublished(r.Context(), ev)
	writeJSON(w, http.StatusOK, EventResponse{Topic: topic, Sent: sent})
}

func (h *Handler) reviewApproved(w http.ResponseWriter, r *http.Request) {
	var ev notify.ReviewEvent
	if !decodeBody(w, r, &ev) {
		return
	}
	topic, sent := h.notifier.OnReviewApproved(r.Context(), ev)
	writeJSON(w, http.StatusOK, EventResponse{Topic: topic, Sent: sent})
}

func (h *Handler) commentApproved(w http.ResponseWriter, r *http.Request) {
	var ev notify.CommentEvent
	if !decodeBody(w, r, &ev) {
		return
	}
	topic, sent := h.notifier.OnCommentApproved(r.Context(), ev)
	writeJSON(w, http.StatusOK, EventResponse{Topic: topic, Sent: sent})
}

// OptInResponse is the stored flag of one post.
type OptInResponse struct {
	PostID  int64  `json:"post_id"`
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
}

type optInRequest struct {
	Value string `json:"value"`
}

func (h *Handler) getOptIn(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}
	value, err := h.optIns.OptIn(r.Context(), postID)
	if err != nil {
		slog.Error("reading opt-in flag", "post_id", postID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not read opt-in flag")
		return
	}
	writeJSON(w, http.StatusOK, optInResponse(postID, value))
}

func (h *Handler) putOptIn(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}
	var req optInRequest
	if !decodeBody(w, r, &req) {
		return
	}
	value := textutil.SanitizeField(req.Value)
	if err := h.optIns.SetOptIn(r.Context(), postID, value); err != nil {
		slog.Error("writing opt-in flag", "post_id", postID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not store opt-in flag")
		return
	}
	writeJSON(w, http.StatusOK, optInResponse(postID, value))
}

func optInResponse(postID int64, value string) OptInResponse {
	return OptInResponse{PostID: postID, Value: value, Enabled: value == settings.OptInEnabled}
}

// StatusResponse describes the credential link.
type StatusResponse struct {
	Linked        bool   `json:"linked"`
	ClientID      string `json:"client_id,omitempty"`
	ApplicationID string `json:"application_id,omitempty"`
	Plan          string `json:"plan,omitempty"`
	PlanLabel     string `json:"plan_label,omitempty"`
	DashboardURL  string `json:"dashboard_url,omitempty"`
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.status.Status(r.Context())
	if err != nil {
		slog.Error("loading link status", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load status")
		return
	}
	resp := StatusResponse{Linked: st.Linked, ClientID: st.ClientID}
	if st.Linked {
		resp.ApplicationID = st.ApplicationID
		resp.Plan = string(st.Plan)
		resp.PlanLabel = st.Plan.Label()
		resp.DashboardURL = h.status.DashboardURL(st.ApplicationID)
	}
	writeJSON(w, http.StatusOK, resp)
}

func postIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "post id must be a positive integer")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("writing response", "error", err)
	}
}
