// Package details реализует обработчик чтения профиля пользователя.
package details

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/response"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/lib/sl"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/models"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/storage/repository"
)

// Service возвращает профиль пользователя.
type Service interface {
	GetProfile(ctx context.Context, userUID string) (*models.User, error)
}

type Handler struct {
	log   *slog.Logger
	users Service
}

func New(log *slog.Logger, users Service) *Handler {
	return &Handler{log: log, users: users}
}

// ServeHTTP обрабатывает GET /fetch-user-details/{userId}.
//
// @Summary Профиль пользователя
// @Tags user
// @Produce json
// @Param userId path string true "UID пользователя"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /fetch-user-details/{userId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.details"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "userId")

	user, err := h.users.GetProfile(r.Context(), userUID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		log.Info("user not found", slog.String("user_uid", userUID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(response.MsgUserNotFound))
		return
	case err != nil:
		log.Error("failed to fetch user", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to fetch user details"))
		return
	}

	data := map[string]any{
		"message":      response.MsgUserFetched,
		"userId":       user.UID,
		"email":        user.Email,
		"name":         user.Name,
		"priceId":      user.PriceID,
		"isSubscribed": user.IsSubscribed,
	}
	if user.SubscriptionExpiry != nil {
		data["expiryOfSubscription"] = user.SubscriptionExpiry.UTC().Format(time.RFC3339)
	}
	render.JSON(w, r, response.StatusOKWithData(data))
}
