// Package subcreate реализует создание подписки у биллинг-провайдера.
package subcreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/middlewarectx"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/response"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/lib/sl"
	billingservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/billing"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/stripeclient"
)

// Request — входные данные для создания подписки
type Request struct {
	Name          string               `json:"name" validate:"required"`
	Email         string               `json:"email" validate:"required,email"`
	Address       stripeclient.Address `json:"address" validate:"required"`
	PaymentMethod string               `json:"paymentMethod" validate:"required"`
	PriceID       string               `json:"priceId" validate:"required"`
}

// Service создает подписку для пользователя.
type Service interface {
	CreateSubscription(ctx context.Context, userUID string,
		in billingservice.CreateSubscriptionInput) (*billingservice.CreateSubscriptionResult, error)
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

// ServeHTTP обрабатывает POST /create-subscription. UID берется из токена.
//
// @Summary Создание подписки
// @Tags billing
// @Accept json
// @Produce json
// @Param request body Request true "Данные подписки"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /create-subscription [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.subcreate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	if userUID == "" {
		log.Error("user identification missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(response.MsgAuthFailed))
		return
	}

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

	result, err := h.billing.CreateSubscription(r.Context(), userUID, billingservice.CreateSubscriptionInput{
		Name:          req.Name,
		Email:         req.Email,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		PriceID:       req.PriceID,
	})
	if err != nil {
		log.Error("failed to create subscription", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create subscription"))
		return
	}

	log.Info("subscription created",
		slog.String("user_uid", userUID),
		slog.String("subscription_id", result.SubscriptionID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message":        response.MsgSubCreated,
		"customerId":     result.CustomerID,
		"subscriptionId": result.SubscriptionID,
		"clientSecret":   result.ClientSecret,
	}))
}
