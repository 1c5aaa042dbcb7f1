// Package services содержит бизнес-логику чтения профиля пользователя
// с кешированием и проверку права на загрузку изображений.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/models"
)

// Причины отказа в загрузке изображений.
var (
	// ErrNotSubscribed пользователь никогда не оформлял подписку.
	ErrNotSubscribed = errors.New("user is not subscribed")
	// ErrSubscriptionExpired оплаченный период закончился.
	ErrSubscriptionExpired = errors.New("user subscription expired")
)

// UserRepository определяет методы для чтения пользователей из хранилища.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// UserService реализует чтение профиля с кешированием.
type UserService struct {
	repo  UserRepository
	cache Cache
	log   *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, cache Cache, log *slog.Logger) *UserService {
	return &UserService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// UserCacheKey ключ профиля пользователя в кеше.
func UserCacheKey(userUID string) string {
	return fmt.Sprintf("user:%s", userUID)
}

// GetProfile возвращает профиль пользователя, используя кеш или репозиторий.
func (s *UserService) GetProfile(ctx context.Context, userUID string) (*models.User, error) {
	var result *models.User
	cacheKey := UserCacheKey(userUID)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}

	result, err = s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache user profile", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// CheckUploadEntitlement возвращает nil, если пользователю разрешена
// загрузка изображений, иначе причину отказа.
func (s *UserService) CheckUploadEntitlement(ctx context.Context, userUID string, now time.Time) error {
	user, err := s.GetProfile(ctx, userUID)
	if err != nil {
		return err
	}
	if user.UploadAllowed(now) {
		return nil
	}
	if user.SubscriptionExpiry == nil {
		return ErrNotSubscribed
	}
	return ErrSubscriptionExpired
}
