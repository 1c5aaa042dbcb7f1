// Package subupdate реализует смену тарифа подписки.
package subupdate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/response"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/lib/sl"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/models"
	billingservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/billing"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/storage/repository"
)

// Request — входные данные для смены тарифа
type Request struct {
	PriceID string `json:"priceId" validate:"required"`
}

// Service переводит подписку пользователя на другой тариф.
type Service interface {
	UpdateSubscription(ctx context.Context, userUID, priceID string) (*models.User, error)
}

type Handler struct {
	log      *slog.Logger
	billing  Service
	validate *validator.Validate
}

func New(log *slog.Logger, billing Service) *Handler {
	return &Handler{
		log:      log,
		billing:  billing,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает POST /update-subscription/{userId}.
//
// @Summary Смена тарифа подписки
// @Tags billing
// @Accept json
// @Produce json
// @Param userId path string true "UID пользователя"
// @Param request body Request true "Новый тариф"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /update-subscription/{userId} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.subupdate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "userId")

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

	user, err := h.billing.UpdateSubscription(r.Context(), userUID, req.PriceID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		log.Info("user not found", slog.String("user_uid", userUID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(response.MsgUserNotFound))
		return
	case errors.Is(err, billingservice.ErrNoSubscription):
		log.Info("no subscription to update", slog.String("user_uid", userUID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(response.MsgNoSubscription))
		return
	case err != nil:
		log.Error("failed to update subscription", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update subscription"))
		return
	}

	log.Info("subscription updated",
		slog.String("user_uid", userUID), slog.String("price_id", user.PriceID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": response.MsgSubUpdated,
		"priceId": user.PriceID,
	}))
}
