package register

import (
	"context"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/models"
)

// Service регистрирует пользователя и выдает токен доступа.
type Service interface {
	Register(ctx context.Context, name, email, password, captchaToken string) (*models.User, string, error)
}
