// Package captcha проверяет ответ капчи через сервис siteverify.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/config"
)

// Verifier проверяет токен капчи, полученный от клиента.
type Verifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

type Client struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
}

// NewClient создаёт клиент проверки капчи.
func NewClient(cfg config.Recaptcha) *Client {
	return &Client{
		secret:     cfg.Secret,
		verifyURL:  cfg.VerifyURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify отправляет токен на siteverify и возвращает вердикт сервиса.
// Пустой токен отклоняется без похода в сеть.
func (c *Client) Verify(ctx context.Context, token string) (bool, error) {
	const op = "captcha.Verify"

	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return body.Success, nil
}
