package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/service"
)

const SessionCookie = "token"

type userKey struct{}

func withUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// CurrentUser returns the user attached by RequireAuth.
func CurrentUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey{}).(models.User)
	return user, ok
}

type AuthHandler struct {
	authService   *service.AuthService
	secureCookies bool
	logger        *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, secureCookies bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

func (h *AuthHandler) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(service.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := decodeBody(r, &in, false); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, token, err := h.authService.Register(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setSession(w, token)
	writeJSON(w, h.logger, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if err := decodeBody(r, &in, false); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, token, err := h.authService.Login(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setSession(w, token)
	writeJSON(w, h.logger, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w)
	writeMessage(w, h.logger, http.StatusOK, "Logged out successfully")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	writeJSON(w, h.logger, http.StatusOK, user)
}

// RequireAuth rejects requests without a valid session cookie and attaches the
// session's user to the request context.
func (h *AuthHandler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie(SessionCookie); err == nil {
			token = c.Value
		}

		user, err := h.authService.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		next(w, r.WithContext(withUser(r.Context(), user)))
	}
}
