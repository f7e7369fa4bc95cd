package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sajal/inkpad/internal/apperror"
	"github.com/sajal/inkpad/internal/auth"
	"github.com/sajal/inkpad/internal/model"
	"github.com/sajal/inkpad/internal/service"
)

// AuthHandler exposes registration, login, auth-check, and logout.
type AuthHandler struct {
	auth       *service.AuthService
	production bool          // controls the Secure/SameSite cookie flags
	tokenTTL   time.Duration // cookie lifetime, kept equal to the token's
	logger     *slog.Logger
}

// NewAuthHandler creates an AuthHandler. production selects the
// cross-site cookie policy: Secure + SameSite=None behind HTTPS,
// SameSite=Lax for plain-HTTP local development. tokenTTL is the
// configured token lifetime; the login cookie expires with it so the
// browser does not keep sending a token the server will reject.
func NewAuthHandler(authSvc *service.AuthService, production bool, tokenTTL time.Duration, logger *slog.Logger) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = auth.DefaultTokenTTL
	}
	return &AuthHandler{
		auth:       authSvc,
		production: production,
		tokenTTL:   tokenTTL,
		logger:     logger,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse carries the token in the body alongside the cookie, for
// clients that attach it as a bearer header instead of storing cookies.
type loginResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/auth/register
// Body: {"username": "...", "email": "...", "password": "..."}
//
// The response is the created user; the model guarantees the password
// digest is never part of it.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleLogin verifies credentials and issues the session token.
//
// HTTP: POST /api/auth/login
// Body: {"username": "...", "password": "..."}
//
// The token is delivered twice: as an HttpOnly cookie (the browser
// client) and in the JSON body (bearer-header clients). Nothing is
// stored server-side; the token is self-contained.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, h.authCookie(result.Token, int(h.tokenTTL.Seconds())))
	writeJSON(w, http.StatusOK, loginResponse{
		User:  result.User,
		Token: result.Token,
	})
}

// HandleAuthCheck reports whether the caller holds a valid token and
// which user it identifies.
//
// HTTP: GET /api/auth/check
//
// This route is deliberately not behind the auth middleware: the two
// failure modes (no token at all vs. a bad token) return distinct
// messages the client shows differently.
func (h *AuthHandler) HandleAuthCheck(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.TokenFromRequest(r)
	if !ok {
		writeError(w, apperror.Auth("missing token"))
		return
	}

	userID, err := h.auth.ValidateToken(token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"userId": userID})
}

// HandleLogout clears the auth cookie.
//
// HTTP: POST /api/auth/logout
//
// The token itself stays valid until its natural expiry — there is no
// server-side session to revoke, so a copy kept by a bearer-header
// client keeps working. Accepted limitation of the stateless design.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	cookie := h.authCookie("", -1)
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// authCookie builds the session cookie. maxAge -1 deletes it.
func (h *AuthHandler) authCookie(value string, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if h.production {
		// The SPA is served from a different origin in production, so
		// the cookie must travel cross-site — which in turn requires
		// Secure (browsers refuse SameSite=None without it).
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: sameSite,
	}
}
