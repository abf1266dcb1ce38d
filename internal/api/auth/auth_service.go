package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-todo-api/app/observability/metrics"
	"github.com/FACorreiaa/go-todo-api/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

type AuthService interface {
	// Login exchanges credentials for an access token. Unknown email and
	// wrong password both return types.ErrUnauthenticated.
	Login(ctx context.Context, email, password string) (*types.TokenResponse, error)
}

type AuthServiceImpl struct {
	users   UserFinder
	hasher  PasswordHasher
	tokens  TokenService
	lockout *LoginLockout
	logger  *slog.Logger
}

func NewAuthService(users UserFinder, hasher PasswordHasher, tokens TokenService, lockout *LoginLockout, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		lockout: lockout,
		logger:  logger,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*types.TokenResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"))

	if s.lockout.Locked(email) {
		l.WarnContext(ctx, "Login rejected, too many failed attempts")
		metrics.RecordLogin(ctx, "locked")
		span.SetStatus(codes.Error, "Locked out")
		return nil, types.ErrTooManyAttempts
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		l.ErrorContext(ctx, "Failed to look up user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "User lookup failed")
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	if user == nil || !s.hasher.Verify(password, user.PasswordHash) {
		s.lockout.RegisterFailure(email)
		l.InfoContext(ctx, "Invalid credentials")
		metrics.RecordLogin(ctx, "invalid_credentials")
		span.SetStatus(codes.Error, "Invalid credentials")
		return nil, types.ErrUnauthenticated
	}

	token, err := s.tokens.Issue(types.TokenSubject{Email: user.Email, ID: user.ID})
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue token", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Token issue failed")
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	s.lockout.Reset(email)
	metrics.RecordLogin(ctx, "success")
	l.InfoContext(ctx, "User logged in", slog.Int64("userID", user.ID))
	span.SetStatus(codes.Ok, "Token issued")
	return &types.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}
