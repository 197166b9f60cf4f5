package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/compozy/m2release/internal/domain"
	"github.com/compozy/m2release/internal/form"
	"github.com/compozy/m2release/internal/repository"
	"github.com/compozy/m2release/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type releaseHandler struct {
	actions        ReleaseActions
	identityHeader string
	maxSubmitBytes int64
	logger         *zap.Logger
}

// failureNotice is returned by the page users land on when scheduling failed.
type failureNotice struct {
	Project string `json:"project"`
	Message string `json:"message"`
}

func (h *releaseHandler) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := h.actions.View(r.Context(), h.caller(r), chi.URLParam(r, "project"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *releaseHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	decode := func() (form.Decoder, error) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxSubmitBytes)
		return form.NewDecoder(r, h.logger)
	}
	result, err := h.actions.Submit(r.Context(), h.caller(r), chi.URLParam(r, "project"), decode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, result.Redirect, http.StatusFound)
}

func (h *releaseHandler) handleFailed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, &failureNotice{
		Project: chi.URLParam(r, "project"),
		Message: "The release build could not be scheduled.",
	})
}

func (h *releaseHandler) handleLastRelease(w http.ResponseWriter, r *http.Request) {
	build, err := h.actions.LastRelease(r.Context(), h.caller(r), chi.URLParam(r, "project"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, build)
}

// caller identifies the requester by proxy header, then basic auth.
func (h *releaseHandler) caller(r *http.Request) string {
	if user := strings.TrimSpace(r.Header.Get(h.identityHeader)); user != "" {
		return user
	}
	if user, _, ok := r.BasicAuth(); ok && user != "" {
		return user
	}
	return domain.AnonymousUser
}

func (h *releaseHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("release request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeError(w, h.logger, err, status)
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrProjectNotFound), errors.Is(err, repository.ErrBuildNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
