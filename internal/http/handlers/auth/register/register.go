// Package register реализует обработчик регистрации пользователя.
package register

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
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/storage/repository"
)

// Request — входные данные для регистрации
type Request struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
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

// ServeHTTP обрабатывает POST /signup.
//
// @Summary Регистрация нового пользователя
// @Tags auth
// @Accept json
// @Produce json
// @Param request body Request true "Данные регистрации"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /signup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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

	user, token, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password, req.RecaptchaValue)
	switch {
	case errors.Is(err, authservice.ErrInvalidCaptcha):
		log.Info("captcha rejected", slog.String("email", req.Email))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(response.MsgInvalidRecaptcha))
		return
	case errors.Is(err, repository.ErrEmailTaken):
		log.Info("duplicate email", slog.String("email", req.Email))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(response.MsgUserExists))
		return
	case err != nil:
		log.Error("registration failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register user"))
		return
	}

	log.Info("user registered", slog.String("user_uid", user.UID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"userId":  user.UID,
		"email":   user.Email,
		"name":    user.Name,
		"token":   token,
		"message": response.MsgSignupSuccess,
	}))
}
