package types

import "errors"

var ErrNotFound = errors.New("requested item not found")
var ErrConflict = errors.New("item already exists or conflict")
var ErrUnauthenticated = errors.New("authentication required or invalid credentials")
var ErrForbidden = errors.New("action forbidden")

// Token verification failures. Both surface as 401 but carry different details.
var (
	ErrTokenMalformed = errors.New("token is malformed or its signature is invalid")
	ErrTokenExpired   = errors.New("token has expired")
)

var ErrEmptyUpdate = errors.New("update contains no fields")
var ErrValidation = errors.New("validation failed")
var ErrTooManyAttempts = errors.New("too many failed login attempts")
