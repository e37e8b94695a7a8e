package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lanblog/apiserver/internal/verification"
)

// VerificationHandler provides the CAPTCHA and SMS code endpoints.
type VerificationHandler struct {
	workflow *verification.Workflow
}

func NewVerificationHandler(workflow *verification.Workflow) *VerificationHandler {
	return &VerificationHandler{workflow: workflow}
}

// VerificationRouter registers verification routes on the given router.
func VerificationRouter(r chi.Router, workflow *verification.Workflow) {
	handler := NewVerificationHandler(workflow)

	r.Get("/imagecode", handler.ImageCode)
	r.Get("/smscode", handler.SmsCode)
}

// ImageCode issues a CAPTCHA image for the client-supplied token.
func (h *VerificationHandler) ImageCode(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("uuid"))

	image, err := h.workflow.IssueImageCode(r.Context(), token)
	if err != nil {
		if errors.Is(err, verification.ErrMissingParameter) {
			writeError(w, http.StatusBadRequest, "uuid is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to issue image code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(image)
}

// SmsCode validates the CAPTCHA answer and dispatches an SMS code.
func (h *VerificationHandler) SmsCode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mobile := strings.TrimSpace(query.Get("mobile"))
	imageCode := strings.TrimSpace(query.Get("image_code"))
	token := strings.TrimSpace(query.Get("uuid"))

	err := h.workflow.RequestSmsCode(r.Context(), mobile, imageCode, token)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "sms code sent"})
	case errors.Is(err, verification.ErrMissingParameter):
		writeError(w, http.StatusBadRequest, "mobile, image_code and uuid are required")
	case errors.Is(err, verification.ErrImageCodeExpired):
		writeError(w, http.StatusBadRequest, "image code expired")
	case errors.Is(err, verification.ErrImageCodeMismatch):
		writeError(w, http.StatusBadRequest, "image code incorrect")
	default:
		writeError(w, http.StatusInternalServerError, "failed to send sms code, try again later")
	}
}
