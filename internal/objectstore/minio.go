// Package objectstore реализует загрузку изображений в S3-совместимое
// хранилище (minio, R2) и вычисление публичных URL загруженных объектов.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/config"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/models"
)

// ClientMinio подмножество методов minio.Client, используемое хранилищем.
// Выделено в интерфейс ради подмены в тестах.
type ClientMinio interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader,
		objectSize int64, opts minio.PutObjectOptions) (info minio.UploadInfo, err error)
}

// mimeExtensions допустимые типы изображений. Всё остальное отклоняется
// до обращения к хранилищу.
var mimeExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// AllowedImageType сообщает, принимается ли данный mime-тип на загрузку.
func AllowedImageType(mimeType string) bool {
	_, ok := mimeExtensions[mimeType]
	return ok
}

// Store загружает объекты в один бакет и знает публичный базовый URL,
// по которому они затем раздаются.
type Store struct {
	client        ClientMinio
	bucket        string
	publicBaseURL string
}

// New создает Store поверх minio-клиента с статическими кредами.
func New(cfg config.ObjectStore) (*Store, error) {
	const op = "objectstore.New"

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{
		client:        minioClient,
		bucket:        cfg.Bucket,
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

// NewWithClient создает Store поверх готового клиента. Используется в тестах.
func NewWithClient(client ClientMinio, bucket, publicBaseURL string) *Store {
	return &Store{
		client:        client,
		bucket:        bucket,
		publicBaseURL: publicBaseURL,
	}
}

// ObjectKey строит ключ объекта: <userUID>/<timestamp>-<имя файла>.
// Timestamp в ключе исключает перезапись при повторной загрузке файла
// с тем же именем.
func ObjectKey(userUID, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%s-%s", userUID, now.UTC().Format("20060102150405"), filename)
}

// UploadImage кладет один объект в бакет и возвращает его метаданные
// вместе с публичным URL.
func (s *Store) UploadImage(ctx context.Context, userUID, filename, mimeType string,
	reader io.Reader, size int64) (*models.StoredFile, error) {
	const op = "objectstore.UploadImage"

	if !AllowedImageType(mimeType) {
		return nil, fmt.Errorf("%s: invalid mime type %q", op, mimeType)
	}

	key := ObjectKey(userUID, filename, time.Now())
	if _, err := s.client.PutObject(ctx, s.bucket, key, reader, size,
		minio.PutObjectOptions{ContentType: mimeType}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.StoredFile{
		Key:       key,
		MimeType:  mimeType,
		Size:      size,
		PublicURL: s.PublicURL(userUID, key),
	}, nil
}

// PublicURL вычисляет публичный URL объекта из последнего сегмента ключа:
// <base><userUID>/<последний сегмент>.
func (s *Store) PublicURL(userUID, key string) string {
	lastSegment := key
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' {
			lastSegment = key[i+1:]
			break
		}
	}
	return s.publicBaseURL + userUID + "/" + lastSegment
}
