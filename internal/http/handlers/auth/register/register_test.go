package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/response"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/models"
	authservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/auth"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/storage/repository"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Register(ctx context.Context, name, email, password, captchaToken string) (*models.User, string, error) {
	args := m.Called(ctx, name, email, password, captchaToken)
	user, _ := args.Get(0).(*models.User)
	return user, args.String(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	validBody := Request{
		Name:           "Test User",
		Email:          "test@example.com",
		Password:       "secret1",
		RecaptchaValue: "captcha-token",
	}

	tests := []struct {
		name           string
		requestBody    any
		mockUser       *models.User
		mockToken      string
		mockErr        error
		wantStatusCode int
		wantError      string
		wantMessage    string
	}{
		{
			name:        "valid signup",
			requestBody: validBody,
			mockUser: &models.User{
				UID:   "uid-1",
				Name:  "Test User",
				Email: "test@example.com",
			},
			mockToken:      "jwt-token",
			wantStatusCode: http.StatusCreated,
			wantMessage:    response.MsgSignupSuccess,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      response.MsgBadInputs,
		},
		{
			name: "validation error - bad email",
			requestBody: Request{
				Name: "Test User", Email: "nope", Password: "secret1", RecaptchaValue: "x",
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      response.MsgBadInputs,
		},
		{
			name: "validation error - short password",
			requestBody: Request{
				Name: "Test User", Email: "test@example.com", Password: "123", RecaptchaValue: "x",
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      response.MsgBadInputs,
		},
		{
			name:           "captcha rejected",
			requestBody:    validBody,
			mockErr:        authservice.ErrInvalidCaptcha,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      response.MsgInvalidRecaptcha,
		},
		{
			// сбой самого сервиса капчи тоже отдается как 401, не 500
			name:        "captcha service unreachable",
			requestBody: validBody,
			mockErr: fmt.Errorf("services.auth.Register: %w: %v",
				authservice.ErrInvalidCaptcha, errors.New("siteverify unreachable")),
			wantStatusCode: http.StatusUnauthorized,
			wantError:      response.MsgInvalidRecaptcha,
		},
		{
			name:           "duplicate email",
			requestBody:    validBody,
			mockErr:        repository.ErrEmailTaken,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      response.MsgUserExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			handler := New(newNoopLogger(), authMock)

			if tt.mockUser != nil || tt.mockErr != nil {
				authMock.On("Register", mock.Anything,
					validBody.Name, validBody.Email, validBody.Password, validBody.RecaptchaValue).
					Return(tt.mockUser, tt.mockToken, tt.mockErr).Once()
			}

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(v)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(bodyBytes))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatusCode, rr.Code)

			if tt.wantError != "" {
				var resp response.ErrorResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, response.StatusError, resp.Status)
				assert.Equal(t, tt.wantError, resp.Error)
			} else {
				var resp response.Response
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, response.StatusOK, resp.Status)
				data := resp.Data.(map[string]any)
				assert.Equal(t, "uid-1", data["userId"])
				assert.Equal(t, "jwt-token", data["token"])
				assert.Equal(t, tt.wantMessage, data["message"])
			}
			authMock.AssertExpectations(t)
		})
	}
}
