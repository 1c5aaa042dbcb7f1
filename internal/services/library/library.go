// Package services содержит бизнес-логику библиотеки изображений: загрузка
// в объектное хранилище, пополнение библиотеки и чтение с кешированием.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/models"
)

// LibraryRepository определяет методы для работы с библиотекой в хранилище.
type LibraryRepository interface {
	// AppendImageURLs дописывает ссылки в конец библиотеки пользователя.
	AppendImageURLs(ctx context.Context, userUID string, urls []string) error
	// ListImageURLs возвращает все ссылки библиотеки в порядке добавления.
	ListImageURLs(ctx context.Context, userUID string) ([]string, error)
}

// ObjectStore загружает изображения и выдает их публичные URL.
type ObjectStore interface {
	UploadImage(ctx context.Context, userUID, filename, mimeType string,
		reader io.Reader, size int64) (*models.StoredFile, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// UploadFile один файл из multipart-запроса.
type UploadFile struct {
	Name     string
	MimeType string
	Size     int64
	Reader   io.Reader
}

// LibraryService реализует загрузку изображений и чтение библиотеки.
type LibraryService struct {
	repo  LibraryRepository
	store ObjectStore
	cache Cache
	log   *slog.Logger
}

// NewLibraryService создает новый экземпляр LibraryService.
func NewLibraryService(repo LibraryRepository, store ObjectStore, cache Cache, log *slog.Logger) *LibraryService {
	return &LibraryService{
		repo:  repo,
		store: store,
		cache: cache,
		log:   log,
	}
}

// LibraryCacheKey ключ библиотеки пользователя в кеше.
func LibraryCacheKey(userUID string) string {
	return fmt.Sprintf("library:%s", userUID)
}

// Upload загружает файлы в объектное хранилище и дописывает их публичные
// URL в библиотеку пользователя одним запросом. Кеш библиотеки
// инвалидируется после пополнения.
func (s *LibraryService) Upload(ctx context.Context, userUID string, files []UploadFile) ([]*models.StoredFile, error) {
	stored := make([]*models.StoredFile, 0, len(files))
	urls := make([]string, 0, len(files))
	for _, f := range files {
		file, err := s.store.UploadImage(ctx, userUID, f.Name, f.MimeType, f.Reader, f.Size)
		if err != nil {
			return nil, err
		}
		stored = append(stored, file)
		urls = append(urls, file.PublicURL)
	}

	if err := s.repo.AppendImageURLs(ctx, userUID, urls); err != nil {
		return nil, err
	}
	s.log.Info("images appended to library",
		slog.String("user_uid", userUID), slog.Int("count", len(urls)))

	cacheKey := LibraryCacheKey(userUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate library cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return stored, nil
}

// List возвращает библиотеку пользователя, используя кеш или репозиторий.
func (s *LibraryService) List(ctx context.Context, userUID string) (*models.ImageLibrary, error) {
	var result *models.ImageLibrary
	cacheKey := LibraryCacheKey(userUID)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}

	urls, err := s.repo.ListImageURLs(ctx, userUID)
	if err != nil {
		return nil, err
	}
	result = &models.ImageLibrary{
		UserUID:   userUID,
		ImageURLs: urls,
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache library", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}
