// Package customerfetch реализует чтение клиента биллинга пользователя.
package customerfetch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/stripe/stripe-go/v78"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/response"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/lib/sl"
	billingservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/billing"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/storage/repository"
)

// Service возвращает клиента пользователя от провайдера.
type Service interface {
	FetchCustomer(ctx context.Context, userUID string) (*stripe.Customer, error)
}

type Handler struct {
	log     *slog.Logger
	billing Service
}

func New(log *slog.Logger, billing Service) *Handler {
	return &Handler{log: log, billing: billing}
}

// ServeHTTP обрабатывает GET /fetch-customer/{userId}.
//
// @Summary Клиент биллинга
// @Tags billing
// @Produce json
// @Param userId path string true "UID пользователя"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /fetch-customer/{userId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.customerfetch"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "userId")

	customer, err := h.billing.FetchCustomer(r.Context(), userUID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		log.Info("user not found", slog.String("user_uid", userUID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(response.MsgUserNotFound))
		return
	case errors.Is(err, billingservice.ErrNoCustomer):
		log.Info("no billing customer stored", slog.String("user_uid", userUID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(response.MsgUserNotFound))
		return
	case err != nil:
		log.Error("failed to fetch customer", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to fetch customer"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message":    response.MsgCustomerFetched,
		"customerId": customer.ID,
		"email":      customer.Email,
		"name":       customer.Name,
	}))
}
