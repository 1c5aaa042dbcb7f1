package login

import (
	"context"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/models"
)

// Service проверяет учетные данные и выдает токен доступа.
type Service interface {
	Login(ctx context.Context, email, password, captchaToken string) (*models.User, string, error)
}
