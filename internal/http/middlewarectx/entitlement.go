package middlewarectx

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
	userservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/user"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/storage/repository"
)

// EntitlementService проверяет право пользователя на загрузку изображений.
type EntitlementService interface {
	CheckUploadEntitlement(ctx context.Context, userUID string, now time.Time) error
}

// EntitlementMiddleware создает middleware, пропускающий запрос только
// при действующем оплаченном периоде подписки. Право определяется датой
// истечения: отмененная, но еще оплаченная подписка проходит.
func EntitlementMiddleware(log *slog.Logger, svc EntitlementService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.EntitlementMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			userUID := chi.URLParam(r, "id")
			if userUID == "" {
				if uid, ok := r.Context().Value(UserUID).(string); ok {
					userUID = uid
				}
			}
			if userUID == "" {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(response.MsgAuthFailed))
				return
			}

			err := svc.CheckUploadEntitlement(r.Context(), userUID, time.Now())
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, userservice.ErrNotSubscribed):
				log.Info("upload denied: no subscription", slog.String("user_uid", userUID))
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(response.MsgNotSubscribed))
			case errors.Is(err, userservice.ErrSubscriptionExpired):
				log.Info("upload denied: subscription expired", slog.String("user_uid", userUID))
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(response.MsgSubscriptionExpired))
			case errors.Is(err, repository.ErrUserNotFound):
				log.Error("unknown user", slog.String("user_uid", userUID))
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(response.MsgUserNotFoundRetry))
			default:
				log.Error("failed to check upload entitlement", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
			}
		})
	}
}
