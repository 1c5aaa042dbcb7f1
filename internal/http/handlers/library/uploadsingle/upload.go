// Package uploadsingle реализует загрузку одного изображения в библиотеку.
package uploadsingle

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
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/objectstore"
	libservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/library"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/storage/repository"
)

const (
	// UploadField имя поля формы, в котором фронтенд передает файлы.
	UploadField = "UploadFiles"
	// MaxFileBytes максимальный размер одного файла.
	MaxFileBytes = 2 << 20
)

// Service загружает файлы в хранилище и пополняет библиотеку.
type Service interface {
	Upload(ctx context.Context, userUID string, files []libservice.UploadFile) ([]*models.StoredFile, error)
}

type Handler struct {
	log     *slog.Logger
	library Service
}

func New(log *slog.Logger, library Service) *Handler {
	return &Handler{log: log, library: library}
}

// ServeHTTP обрабатывает POST /image-upload/{id}: ровно один файл в поле
// UploadFiles, не больше 2 МБ, только png/jpeg/jpg.
//
// @Summary Загрузка одного изображения
// @Tags library
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "UID пользователя"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /image-upload/{id} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.library.uploadsingle"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(MaxFileBytes); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(response.MsgBadInputs))
		return
	}

	headers := r.MultipartForm.File[UploadField]
	if len(headers) != 1 {
		log.Error("expected exactly one file", slog.Int("count", len(headers)))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(response.MsgBadInputs))
		return
	}
	header := headers[0]

	mimeType := header.Header.Get("Content-Type")
	if header.Size > MaxFileBytes || !objectstore.AllowedImageType(mimeType) {
		log.Error("file rejected",
			slog.String("filename", header.Filename),
			slog.String("mime", mimeType),
			slog.Int64("size", header.Size))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(response.MsgBadInputs))
		return
	}

	file, err := header.Open()
	if err != nil {
		log.Error("failed to open uploaded file", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read uploaded file"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	stored, err := h.library.Upload(r.Context(), userUID, []libservice.UploadFile{{
		Name:     header.Filename,
		MimeType: mimeType,
		Size:     header.Size,
		Reader:   file,
	}})
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		log.Info("unknown user", slog.String("user_uid", userUID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(response.MsgUserNotFoundRetry))
		return
	case err != nil:
		log.Error("upload failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to upload image"))
		return
	}

	result := stored[0]
	log.Info("image uploaded",
		slog.String("user_uid", userUID), slog.String("key", result.Key))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message":   response.MsgUploaded,
		"publicUrl": result.PublicURL,
		"name":      result.Key,
		"type":      result.MimeType,
		"size":      result.Size,
	}))
}
