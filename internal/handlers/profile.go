package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lanblog/apiserver/internal/services"
	"github.com/lanblog/apiserver/internal/sessions"
	"github.com/lanblog/apiserver/internal/storage"
	"github.com/lanblog/apiserver/internal/store"
)

// ProfileHandler provides the user-center endpoints.
type ProfileHandler struct {
	userService *services.UserService
	sessionMgr  *sessions.Manager
	media       *storage.Storage
}

func NewProfileHandler(userService *services.UserService, sessionMgr *sessions.Manager, media *storage.Storage) *ProfileHandler {
	return &ProfileHandler{
		userService: userService,
		sessionMgr:  sessionMgr,
		media:       media,
	}
}

// ProfileRouter registers profile routes on the given router. All of
// them require an authenticated session.
func ProfileRouter(r chi.Router, userService *services.UserService, sessionMgr *sessions.Manager, media *storage.Storage) {
	handler := NewProfileHandler(userService, sessionMgr, media)

	r.Use(RequireUser)
	r.Get("/", handler.GetProfile)
	r.Post("/", handler.UpdateProfile)
}

// GetProfile returns the signed-in user's profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	user, err := h.userService.GetByID(r.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "login required")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile applies username/bio changes and an optional avatar
// upload, then refreshes the cached username on the session and the
// username cookie.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	bio := strings.TrimSpace(r.FormValue("desc"))

	var avatarKey string
	if file, header, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		avatarKey = storage.AvatarKey(time.Now())
		if err := putImage(r, h.media, file, header, avatarKey); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	user, err := h.userService.UpdateProfile(r.Context(), session.UserID, username, bio, avatarKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update, try again later")
		return
	}

	session.Username = user.Username
	if err := h.sessionMgr.Refresh(r.Context(), session); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update, try again later")
		return
	}
	setCookie(w, usernameCookieName, user.Username, rememberedCookieAge)

	writeJSON(w, http.StatusOK, user)
}
