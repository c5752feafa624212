package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/jotsum/jotsum/internal/crypto"
	"github.com/jotsum/jotsum/internal/db"
	"github.com/jotsum/jotsum/internal/obs"
)

// Context keys for auth data
type contextKey string

const (
	userIDKey contextKey = "userID"
	userDBKey contextKey = "userDB"
)

// DevUserID is the fixed user when running with --no-auth.
const DevUserID = "dev-user-001"

// Middleware authenticates requests and opens the caller's database.
type Middleware struct {
	tokens    *TokenService
	masterKey string
	devUser   string
}

// NewMiddleware creates auth middleware. A non-empty devUser bypasses token
// resolution entirely (--no-auth development mode).
func NewMiddleware(tokens *TokenService, masterKey, devUser string) *Middleware {
	return &Middleware{tokens: tokens, masterKey: masterKey, devUser: devUser}
}

// RequireAuth resolves the bearer token, derives the user's database key,
// opens the row-scoped database, and stores both identity and database in
// the request context. Returns 401 when the token is missing or invalid.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := m.devUser
		if userID == "" {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "Unauthorized: missing bearer token", http.StatusUnauthorized)
				return
			}
			resolved, err := m.tokens.Resolve(r.Context(), token)
			if err != nil {
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}
			userID = resolved
		}

		dek, err := crypto.DeriveUserDEK(m.masterKey, userID)
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		userDB, err := db.OpenUserDBWithDEK(userID, dek)
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, userDBKey, userDB)
		ctx = obs.WithCorrelation(ctx, obs.Correlation{UserID: userID})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// UserIDFromContext returns the authenticated user ID, or "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// UserDBFromContext returns the authenticated user's database, or nil.
func UserDBFromContext(ctx context.Context) *db.UserDB {
	udb, _ := ctx.Value(userDBKey).(*db.UserDB)
	return udb
}

// WithTestUser injects identity and database into a context for tests.
func WithTestUser(ctx context.Context, userID string, userDB *db.UserDB) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, userDBKey, userDB)
}
