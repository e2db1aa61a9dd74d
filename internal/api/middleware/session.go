package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/mkaradima/support-chat-backend/internal/service"
)

type contextKey string

const identityKey contextKey = "identity"

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session_token"

// Identity is the caller's identity decoded from the session token. It
// reflects the token contents only; handlers that need a live account
// re-resolve the user id against the store.
type Identity struct {
	UserID    uint
	Username  string
	SessionID uint
	LoggedIn  bool
}

// Session decodes the session cookie into the request context when present
// and valid. It never rejects the request: several endpoints answer
// anonymous callers, so the decision to require identity belongs to each
// handler.
func Session(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authService.ValidateToken(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			identity, ok := identityFromClaims(*claims)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity returns the caller's identity, if a valid session token was
// presented.
func GetIdentity(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return identity, ok
}

// SetSessionCookie attaches the signed session token to the response.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func identityFromClaims(claims map[string]interface{}) (*Identity, bool) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, false
	}

	userID, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return nil, false
	}

	identity := &Identity{UserID: uint(userID)}

	if username, ok := claims["username"].(string); ok {
		identity.Username = username
	}
	// JSON numbers decode as float64 in map claims.
	if sessionID, ok := claims["session_id"].(float64); ok {
		identity.SessionID = uint(sessionID)
	}
	if loggedIn, ok := claims["logged_in"].(bool); ok {
		identity.LoggedIn = loggedIn
	}

	return identity, true
}
