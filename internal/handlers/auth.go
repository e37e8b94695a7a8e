package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lanblog/apiserver/internal/auth"
	"github.com/lanblog/apiserver/internal/sessions"
	"github.com/lanblog/apiserver/internal/store"
	"github.com/lanblog/apiserver/internal/verification"
)

const (
	isLoginCookieName  = "is_login"
	usernameCookieName = "username"

	// Cookie lifetimes mirror the session policy: a remembered login
	// keeps its cookies for the full session window.
	rememberedCookieAge = 14 * 24 * 3600
	registerUsernameAge = 7 * 24 * 3600
)

// AuthHandler provides registration, login, logout, and password reset.
type AuthHandler struct {
	authService *auth.Service
	sessionMgr  *sessions.Manager
	codec       *sessions.TokenCodec
}

func NewAuthHandler(authService *auth.Service, sessionMgr *sessions.Manager, codec *sessions.TokenCodec) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessionMgr:  sessionMgr,
		codec:       codec,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, authService *auth.Service, sessionMgr *sessions.Manager, codec *sessions.TokenCodec) {
	handler := NewAuthHandler(authService, sessionMgr, codec)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Post("/logout", handler.Logout)
	r.Post("/forgetpassword", handler.ForgetPassword)
}

// Register creates an account and establishes a session.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	mobile := strings.TrimSpace(r.PostFormValue("mobile"))
	password := r.PostFormValue("password")
	password2 := r.PostFormValue("password2")
	smsCode := strings.TrimSpace(r.PostFormValue("sms_code"))

	user, err := h.authService.Register(r.Context(), mobile, password, password2, smsCode)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	session, err := h.sessionMgr.Create(r.Context(), user.ID, user.Username, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "registered but failed to sign in")
		return
	}
	token, err := h.codec.Issue(session)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "registered but failed to sign in")
		return
	}

	setSessionCookie(w, token, rememberedCookieAge)
	setCookie(w, isLoginCookieName, "true", 0)
	setCookie(w, usernameCookieName, user.Username, registerUsernameAge)

	writeJSON(w, http.StatusCreated, user)
}

// Login authenticates and establishes a session whose cookie lifetime
// depends on the remember flag: browser-session when unset, 14 days
// when set.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	mobile := strings.TrimSpace(r.PostFormValue("mobile"))
	password := r.PostFormValue("password")
	remember := r.PostFormValue("remember") == "on" || r.PostFormValue("remember") == "true"

	user, err := h.authService.Login(r.Context(), mobile, password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	session, err := h.sessionMgr.Create(r.Context(), user.ID, user.Username, remember)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}
	token, err := h.codec.Issue(session)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}

	if remember {
		setSessionCookie(w, token, rememberedCookieAge)
		setCookie(w, isLoginCookieName, "true", rememberedCookieAge)
	} else {
		setSessionCookie(w, token, 0)
		setCookie(w, isLoginCookieName, "true", 0)
	}
	setCookie(w, usernameCookieName, user.Username, rememberedCookieAge)

	writeJSON(w, http.StatusOK, user)
}

// Logout destroys the session. Calling it without one is fine.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session, ok := sessionFromContext(r.Context()); ok {
		_ = h.sessionMgr.Delete(r.Context(), session.ID)
	}

	clearCookie(w, sessionCookieName)
	clearCookie(w, isLoginCookieName)

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ForgetPassword resets the password after SMS verification. An
// unknown phone number gets a fresh account. No session is
// established; the caller logs in afterward.
func (h *AuthHandler) ForgetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	mobile := strings.TrimSpace(r.PostFormValue("mobile"))
	password := r.PostFormValue("password")
	password2 := r.PostFormValue("password2")
	smsCode := strings.TrimSpace(r.PostFormValue("sms_code"))

	if _, err := h.authService.ResetPassword(r.Context(), mobile, password, password2, smsCode); err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, verification.ErrSmsCodeExpired):
		writeError(w, http.StatusBadRequest, "sms code expired")
	case errors.Is(err, auth.ErrCodeMismatch):
		writeError(w, http.StatusBadRequest, "sms code incorrect")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid mobile or password")
	case errors.Is(err, store.ErrDuplicateMobile):
		writeError(w, http.StatusConflict, "mobile already registered")
	default:
		writeError(w, http.StatusInternalServerError, "failed, try again later")
	}
}

func setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:   name,
		Value:  value,
		Path:   "/",
		MaxAge: maxAge,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
