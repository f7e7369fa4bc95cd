package auth

import (
	"context"
	"net/http"
	"strings"
)

// CookieName is the cookie carrying the JWT. The login handler sets it,
// the logout handler clears it, and TokenFromRequest reads it.
const CookieName = "token"

// contextKey is an unexported type for context keys in this package, so
// no other package can read or shadow the userID value.
type contextKey string

const userIDKey contextKey = "userID"

// TokenFromRequest extracts the JWT from the request: the HttpOnly
// cookie is checked first, then the Authorization header as a bearer
// token for non-cookie clients. Returns ("", false) when neither is
// present.
func TokenFromRequest(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
		return token, true
	}

	return "", false
}

// RequireAuth enforces authentication on protected routes.
//
// It extracts and validates the token, stores the userID in the request
// context, and returns 401 without calling the next handler when the
// token is missing, expired, or tampered. Handlers behind this
// middleware read the identity with UserIDFromContext and scope every
// store query by it — that owner filter is the entirety of the
// authorization model.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := TokenFromRequest(r)
			if !ok {
				unauthorized(w, "authentication token required")
				return
			}

			userID, err := tokens.Validate(token)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID placed in the
// context by RequireAuth. Returns ("", false) on an unauthenticated
// request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// unauthorized writes a 401 in the handler package's error envelope.
// Written by hand here to keep the middleware free of a handler import
// cycle; the shape must stay in sync with handler.ErrorResponse.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"auth_error","message":"` + message + `"}`))
}
