package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/FACorreiaa/go-todo-api/internal/api"
	"github.com/FACorreiaa/go-todo-api/internal/types"
)

type contextKey string

const UserKey contextKey = "user"

const (
	MsgNotAuthenticated   = "Not authenticated"
	MsgInvalidCredentials = "Не удалось подтвердить учетные данные"
	MsgTokenExpired       = "Срок действия токена истек"
)

// UserFinder resolves the subject of a token. It returns types.ErrNotFound
// for an unknown email, whatever the account state.
type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
}

// Authenticate validates the bearer token and loads the active user it names
// on every request. The user is stored in the request context.
func Authenticate(tokens TokenService, users UserFinder, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			scheme, tokenString, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
				l.DebugContext(ctx, "Missing or malformed Authorization header")
				unauthorized(w, r, MsgNotAuthenticated)
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				l.WarnContext(ctx, "Token verification failed", slog.Any("error", err))
				if errors.Is(err, types.ErrTokenExpired) {
					unauthorized(w, r, MsgTokenExpired)
					return
				}
				unauthorized(w, r, MsgInvalidCredentials)
				return
			}

			user, err := users.GetUserByEmail(ctx, claims.Subject)
			if err != nil {
				if !errors.Is(err, types.ErrNotFound) {
					l.ErrorContext(ctx, "Failed to load token subject", slog.Any("error", err))
					api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
					return
				}
				l.WarnContext(ctx, "Token subject not found", slog.String("email", claims.Subject))
				unauthorized(w, r, MsgInvalidCredentials)
				return
			}
			if !user.IsActive {
				l.WarnContext(ctx, "Token subject is inactive", slog.Int64("userID", user.ID))
				unauthorized(w, r, MsgInvalidCredentials)
				return
			}

			ctx = WithUser(ctx, user)
			l.DebugContext(ctx, "Authentication successful", slog.Int64("userID", user.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	api.ErrorResponse(w, r, http.StatusUnauthorized, detail)
}

func WithUser(ctx context.Context, user *types.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUserFromContext returns the user set by Authenticate.
func GetUserFromContext(ctx context.Context) (*types.User, bool) {
	user, ok := ctx.Value(UserKey).(*types.User)
	return user, ok && user != nil
}
