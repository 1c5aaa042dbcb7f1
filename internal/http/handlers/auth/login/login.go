// Package login реализует обработчик входа пользователя.
package login

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/response"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/lib/sl"
	authservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/auth"
)

// Request — входные данные для входа
type Request struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required"`
	RecaptchaValue string `json:"recaptchaValue" validate:"required"`
}

type Handler struct {
	log      *slog.Logger
	auth     Service
	validate *validator.Validate
}

func New(log *slog.Logger, auth Service) *Handler {
	return &Handler{
		log:      log,
		auth:     auth,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает POST /login. Неизвестный email и неверный пароль
// дают один и тот же ответ 401, различие остается только в логах.
//
// @Summary Вход пользователя
// @Tags auth
// @Accept json
// @Produce json
// @Param request body Request true "Учетные данные"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(response.MsgBadInputs))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(response.MsgBadInputs))
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password, req.RecaptchaValue)
	switch {
	case errors.Is(err, authservice.ErrInvalidCaptcha):
		log.Info("captcha rejected", slog.String("email", req.Email))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(response.MsgInvalidRecaptcha))
		return
	case errors.Is(err, authservice.ErrInvalidCredentials):
		log.Info("login rejected", slog.String("email", req.Email))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(response.MsgInvalidCredentials))
		return
	case err != nil:
		log.Error("login failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to login"))
		return
	}

	log.Info("user logged in", slog.String("user_uid", user.UID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"userId":  user.UID,
		"email":   user.Email,
		"name":    user.Name,
		"token":   token,
		"message": response.MsgLoginSuccess,
	}))
}
