package auth

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/FACorreiaa/go-todo-api/internal/api"
	"github.com/FACorreiaa/go-todo-api/internal/types"
)

const (
	MsgInvalidLogin    = "Неверный адрес электронной почты или пароль"
	MsgTooManyAttempts = "Слишком много неудачных попыток входа, повторите позже"
)

type AuthHandler struct {
	authService AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login godoc
// @Summary      Issue an access token
// @Description  Accepts the OAuth2 password form (username is the email) or a JSON body with email and password.
// @Tags         Users
// @Accept       x-www-form-urlencoded
// @Accept       json
// @Produce      json
// @Param        username formData string false "Email"
// @Param        password formData string false "Password"
// @Success      200 {object} types.TokenResponse
// @Failure      401 {object} types.ErrorResponse "Wrong email or password"
// @Failure      422 {object} types.ErrorResponse "Missing credentials"
// @Failure      429 {object} types.ErrorResponse "Too many attempts"
// @Router       /users/token [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))

	var req types.LoginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := api.DecodeJSONBody(w, r, &req); err != nil {
			l.WarnContext(ctx, "Failed to decode login body", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			l.WarnContext(ctx, "Failed to parse login form", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusUnprocessableEntity, "Invalid form body")
			return
		}
		req.Email = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	}
	if err := api.Validate(req); err != nil {
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	token, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrUnauthenticated):
			w.Header().Set("WWW-Authenticate", "Bearer")
			api.ErrorResponse(w, r, http.StatusUnauthorized, MsgInvalidLogin)
		case errors.Is(err, types.ErrTooManyAttempts):
			api.ErrorResponse(w, r, http.StatusTooManyRequests, MsgTooManyAttempts)
		default:
			l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, token)
}
