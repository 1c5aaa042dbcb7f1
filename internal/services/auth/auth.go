// Package services содержит логику бизнес-уровня для регистрации и аутентификации.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/lib/jwt"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/lib/password"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/models"
)

var (
	// ErrInvalidCaptcha возвращается, если сервис капчи не подтвердил токен
	// или оказался недоступен: для клиента обе причины равнозначны.
	ErrInvalidCaptcha = errors.New("invalid captcha")
	// ErrInvalidCredentials возвращается при любой ошибке входа: неизвестный
	// email и неверный пароль неразличимы для клиента.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его UID.
	CreateUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// CaptchaVerifier проверяет токен капчи из запроса.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// AuthService отвечает за регистрацию, вход и валидацию JWT.
type AuthService struct {
	users    UserRepository
	captcha  CaptchaVerifier
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, captcha CaptchaVerifier, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		captcha:  captcha,
		jwtMaker: jwtMaker,
	}
}

// normalizeEmail приводит email к каноническому виду, чтобы уникальность
// не зависела от регистра и пробелов по краям.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register проверяет капчу, хэширует пароль, сохраняет пользователя и
// выдает токен доступа. Дубликат email отдается как repository.ErrEmailTaken.
// Ошибка обращения к сервису капчи неотличима для клиента от невалидного
// токена: обе отдаются как ErrInvalidCaptcha.
func (s *AuthService) Register(ctx context.Context, name, email, rawPassword, captchaToken string) (*models.User, string, error) {
	const op = "services.auth.Register"

	email = normalizeEmail(email)

	human, err := s.captcha.Verify(ctx, captchaToken)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w: %v", op, ErrInvalidCaptcha, err)
	}
	if !human {
		return nil, "", ErrInvalidCaptcha
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
	}
	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, "", err
	}
	user.UID = uid

	token, err := s.jwtMaker.GenerateToken(uid, email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return &user, token, nil
}

// Login проверяет капчу и пароль и выдает токен доступа. Все причины
// отказа схлопываются в ErrInvalidCredentials, кроме невалидной капчи.
func (s *AuthService) Login(ctx context.Context, email, rawPassword, captchaToken string) (*models.User, string, error) {
	const op = "services.auth.Login"

	email = normalizeEmail(email)

	human, err := s.captcha.Verify(ctx, captchaToken)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w: %v", op, ErrInvalidCaptcha, err)
	}
	if !human {
		return nil, "", ErrInvalidCaptcha
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return user, token, nil
}

// ValidateToken проверяет JWT и возвращает claims для контекста запроса.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
