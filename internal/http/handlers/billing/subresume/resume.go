// Package subresume реализует возобновление подписки.
package subresume

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/response"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/lib/sl"
	billingservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/billing"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/storage/repository"
)

// Service возобновляет подписку пользователя.
type Service interface {
	ResumeSubscription(ctx context.Context, userUID string) error
}

type Handler struct {
	log     *slog.Logger
	billing Service
}

func New(log *slog.Logger, billing Service) *Handler {
	return &Handler{log: log, billing: billing}
}

// ServeHTTP обрабатывает POST /resume-subscription/{userId}.
//
// @Summary Возобновление подписки
// @Tags billing
// @Produce json
// @Param userId path string true "UID пользователя"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /resume-subscription/{userId} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.subresume"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "userId")

	err := h.billing.ResumeSubscription(r.Context(), userUID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		log.Info("user not found", slog.String("user_uid", userUID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(response.MsgUserNotFound))
		return
	case errors.Is(err, billingservice.ErrNoSubscription):
		log.Info("no subscription to resume", slog.String("user_uid", userUID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(response.MsgNoSubscription))
		return
	case err != nil:
		log.Error("failed to resume subscription", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to resume subscription"))
		return
	}

	log.Info("subscription resumed", slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": response.MsgSubResumed,
	}))
}
