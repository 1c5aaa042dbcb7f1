// Package uploadmultiple реализует пакетную загрузку изображений в библиотеку.
package uploadmultiple

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/handlers/library/uploadsingle"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/response"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/lib/sl"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/models"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/objectstore"
	libservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/library"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/storage/repository"
)

// MaxFiles максимальное количество файлов в одном запросе.
const MaxFiles = 5

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

// ServeHTTP обрабатывает POST /image-upload-multiple/{id}: до пяти файлов в
// поле UploadFiles. Право на пакетную загрузку проверяет middleware подписки,
// здесь проверяются только сами файлы.
//
// @Summary Пакетная загрузка изображений
// @Tags library
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "UID пользователя"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /image-upload-multiple/{id} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.library.uploadmultiple"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(uploadsingle.MaxFileBytes); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(response.MsgBadInputs))
		return
	}

	headers := r.MultipartForm.File[uploadsingle.UploadField]
	if len(headers) == 0 || len(headers) > MaxFiles {
		log.Error("invalid file count", slog.Int("count", len(headers)))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(response.MsgBadInputs))
		return
	}

	files := make([]libservice.UploadFile, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()

	for _, header := range headers {
		mimeType := header.Header.Get("Content-Type")
		if header.Size > uploadsingle.MaxFileBytes || !objectstore.AllowedImageType(mimeType) {
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
		opened = append(opened, file)
		files = append(files, libservice.UploadFile{
			Name:     header.Filename,
			MimeType: mimeType,
			Size:     header.Size,
			Reader:   file,
		})
	}

	stored, err := h.library.Upload(r.Context(), userUID, files)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		log.Info("unknown user", slog.String("user_uid", userUID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(response.MsgUserNotFoundRetry))
		return
	case err != nil:
		log.Error("upload failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to upload images"))
		return
	}

	publicURLs := make([]string, 0, len(stored))
	responseFiles := make([]map[string]any, 0, len(stored))
	for _, f := range stored {
		publicURLs = append(publicURLs, f.PublicURL)
		responseFiles = append(responseFiles, map[string]any{
			"name": f.Key,
			"type": f.MimeType,
			"size": f.Size,
		})
	}

	log.Info("images uploaded",
		slog.String("user_uid", userUID), slog.Int("count", len(stored)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message":    response.MsgUploaded,
		"publicUrls": publicURLs,
		"files":      responseFiles,
	}))
}
