package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-todo-api/config"
	"github.com/FACorreiaa/go-todo-api/internal/types"
)

var _ TokenService = (*JWTTokenService)(nil)

type TokenService interface {
	Issue(subject types.TokenSubject) (string, error)
	Verify(tokenString string) (*types.Claims, error)
}

// JWTTokenService issues and verifies HMAC-signed access tokens. Secret,
// algorithm and lifetime are fixed at construction.
type JWTTokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTTokenService(cfg config.JWTConfig) (*JWTTokenService, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("jwt secret key cannot be empty")
	}
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported jwt signing algorithm %q", cfg.Algorithm)
	}
	if cfg.AccessTokenTTL() <= 0 {
		return nil, errors.New("jwt access token ttl must be positive")
	}
	return &JWTTokenService{
		secret: []byte(cfg.SecretKey),
		method: method,
		ttl:    cfg.AccessTokenTTL(),
		now:    time.Now,
	}, nil
}

// Issue signs a token whose exp is now + ttl.
func (s *JWTTokenService) Issue(subject types.TokenSubject) (string, error) {
	now := s.now()
	claims := &types.Claims{
		UserID: subject.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.Email,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Verify returns types.ErrTokenExpired only for a correctly signed token past
// its expiry. Every other failure is types.ErrTokenMalformed.
func (s *JWTTokenService) Verify(tokenString string) (*types.Claims, error) {
	claims := &types.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", types.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", types.ErrTokenMalformed, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", types.ErrTokenMalformed)
	}
	return claims, nil
}
