// Package list реализует обработчик чтения библиотеки изображений.
package list

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
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/models"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/storage/repository"
)

// Service возвращает библиотеку изображений пользователя.
type Service interface {
	List(ctx context.Context, userUID string) (*models.ImageLibrary, error)
}

type Handler struct {
	log     *slog.Logger
	library Service
}

func New(log *slog.Logger, library Service) *Handler {
	return &Handler{log: log, library: library}
}

// ServeHTTP обрабатывает GET /images/{userId}.
//
// @Summary Библиотека изображений пользователя
// @Tags library
// @Produce json
// @Param userId path string true "UID пользователя"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /images/{userId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.library.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "userId")

	library, err := h.library.List(r.Context(), userUID)
	switch {
	case errors.Is(err, repository.ErrLibraryNotFound):
		log.Info("library not found", slog.String("user_uid", userUID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(response.MsgLibraryNotFound))
		return
	case err != nil:
		log.Error("failed to fetch library", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to fetch image library"))
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"imageUrls": library.ImageURLs,
	}))
}
