package types

import "github.com/golang-jwt/jwt/v5"

// LoginRequest is the JSON form of the credentials exchange. The OAuth2
// password form (username/password) is accepted as well.
type LoginRequest struct {
	Email    string `json:"email" validate:"required" example:"user_1@example.com"`
	Password string `json:"password" validate:"required" example:"12345678"`
}

// TokenResponse is returned by the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJI..."`
	TokenType   string `json:"token_type" example:"bearer"`
}

// TokenSubject is the identity encoded into an access token.
type TokenSubject struct {
	Email string
	ID    int64
}

// Claims are the JWT claims of an access token. Subject carries the email.
type Claims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail    string `json:"detail" example:"Активная задача с ID: 1000 не найдена"`
	RequestID string `json:"request_id,omitempty"`
}
