// Package services содержит бизнес-логику жизненного цикла подписки:
// создание клиента и подписки у биллинг-провайдера, смена тарифа,
// возобновление и отмена, публикация событий для воркера уведомлений.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v78"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/models"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/rabbitmq"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/stripeclient"
)

// subscriptionPeriodDays длительность оплаченного периода в днях.
const subscriptionPeriodDays = 30

var (
	// ErrNoSubscription у пользователя нет подписки.
	ErrNoSubscription = errors.New("user has no subscription")
	// ErrNoCustomer пользователь еще не заведен у биллинг-провайдера.
	ErrNoCustomer = errors.New("user has no billing customer")
)

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	UpdateSubscriptionFields(ctx context.Context, userUID string,
		customerID, subscriptionID, priceID string, isSubscribed bool, expiry *time.Time) error
	SetSubscribed(ctx context.Context, userUID string, isSubscribed bool) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// CreateSubscriptionInput данные запроса на создание подписки.
type CreateSubscriptionInput struct {
	Name          string
	Email         string
	Address       stripeclient.Address
	PaymentMethod string
	PriceID       string
}

// CreateSubscriptionResult идентификаторы новой подписки и секрет для
// подтверждения платежа на клиенте.
type CreateSubscriptionResult struct {
	CustomerID     string
	SubscriptionID string
	ClientSecret   string
	Expiry         time.Time
}

// BillingService оркестрирует провайдера, хранилище, кеш и брокер событий.
type BillingService struct {
	users     UserRepository
	provider  stripeclient.Client
	cache     Cache
	publisher rabbitmq.Publisher
	log       *slog.Logger
	now       func() time.Time
}

// NewBillingService создает новый экземпляр BillingService.
func NewBillingService(users UserRepository, provider stripeclient.Client,
	cache Cache, publisher rabbitmq.Publisher, log *slog.Logger) *BillingService {
	return &BillingService{
		users:     users,
		provider:  provider,
		cache:     cache,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

func userCacheKey(userUID string) string {
	return fmt.Sprintf("user:%s", userUID)
}

// CreateSubscription заводит клиента у провайдера, создает подписку и
// записывает идентификаторы и дату истечения на пользователя.
func (s *BillingService) CreateSubscription(ctx context.Context, userUID string,
	in CreateSubscriptionInput) (*CreateSubscriptionResult, error) {
	const op = "services.billing.CreateSubscription"

	customer, err := s.provider.CreateCustomer(ctx, stripeclient.CreateCustomerInput{
		Name:          in.Name,
		Email:         in.Email,
		Address:       in.Address,
		PaymentMethod: in.PaymentMethod,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sub, err := s.provider.CreateSubscription(ctx, customer.ID, in.PriceID, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	expiry := s.now().UTC().AddDate(0, 0, subscriptionPeriodDays)
	if err := s.users.UpdateSubscriptionFields(ctx, userUID,
		customer.ID, sub.ID, in.PriceID, true, &expiry); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateUser(userUID)
	s.publishEvent(userUID, in.Email, in.Name, rabbitmq.ActionCreated, sub.ID, &expiry)

	return &CreateSubscriptionResult{
		CustomerID:     customer.ID,
		SubscriptionID: sub.ID,
		ClientSecret:   clientSecret(sub),
		Expiry:         expiry,
	}, nil
}

// UpdateSubscription переводит подписку пользователя на другой тариф и
// продлевает оплаченный период.
func (s *BillingService) UpdateSubscription(ctx context.Context, userUID, priceID string) (*models.User, error) {
	const op = "services.billing.UpdateSubscription"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if user.SubscriptionID == "" {
		return nil, ErrNoSubscription
	}

	if _, err := s.provider.UpdateSubscriptionPrice(ctx, user.SubscriptionID, priceID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	expiry := s.now().UTC().AddDate(0, 0, subscriptionPeriodDays)
	if err := s.users.UpdateSubscriptionFields(ctx, userUID,
		user.CustomerID, user.SubscriptionID, priceID, true, &expiry); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.PriceID = priceID
	user.IsSubscribed = true
	user.SubscriptionExpiry = &expiry

	s.invalidateUser(userUID)
	s.publishEvent(userUID, user.Email, user.Name, rabbitmq.ActionUpdated, user.SubscriptionID, &expiry)
	return user, nil
}

// ResumeSubscription снимает отмену в конце периода и включает флаг подписки.
func (s *BillingService) ResumeSubscription(ctx context.Context, userUID string) error {
	const op = "services.billing.ResumeSubscription"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return err
	}
	if user.SubscriptionID == "" {
		return ErrNoSubscription
	}

	if _, err := s.provider.SetCancelAtPeriodEnd(ctx, user.SubscriptionID, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.SetSubscribed(ctx, userUID, true); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateUser(userUID)
	s.publishEvent(userUID, user.Email, user.Name, rabbitmq.ActionResumed,
		user.SubscriptionID, user.SubscriptionExpiry)
	return nil
}

// CancelSubscription помечает подписку к отмене в конце оплаченного периода.
// Флаг подписки сбрасывается сразу, хотя период еще оплачен: право на
// загрузку до даты истечения сохраняется.
func (s *BillingService) CancelSubscription(ctx context.Context, userUID string) error {
	const op = "services.billing.CancelSubscription"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return err
	}
	if user.SubscriptionID == "" {
		return ErrNoSubscription
	}

	if _, err := s.provider.SetCancelAtPeriodEnd(ctx, user.SubscriptionID, true); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.SetSubscribed(ctx, userUID, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateUser(userUID)
	s.publishEvent(userUID, user.Email, user.Name, rabbitmq.ActionCancelled,
		user.SubscriptionID, user.SubscriptionExpiry)
	return nil
}

// FetchSubscription возвращает подписку пользователя от провайдера.
func (s *BillingService) FetchSubscription(ctx context.Context, userUID string) (*stripe.Subscription, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if user.SubscriptionID == "" {
		return nil, ErrNoSubscription
	}
	return s.provider.GetSubscription(ctx, user.SubscriptionID)
}

// FetchCustomer возвращает клиента пользователя от провайдера.
func (s *BillingService) FetchCustomer(ctx context.Context, userUID string) (*stripe.Customer, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if user.CustomerID == "" {
		return nil, ErrNoCustomer
	}
	return s.provider.GetCustomer(ctx, user.CustomerID)
}

func (s *BillingService) invalidateUser(userUID string) {
	key := userCacheKey(userUID)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to invalidate user cache", slog.String("key", key), slog.Any("err", err))
	}
}

func (s *BillingService) publishEvent(userUID, email, name, action, subscriptionID string, expiry *time.Time) {
	event := rabbitmq.SubscriptionEvent{
		UserUID:        userUID,
		Email:          email,
		Name:           name,
		Action:         action,
		SubscriptionID: subscriptionID,
		Expiry:         expiry,
	}
	if err := s.publisher.Publish("subscription", event); err != nil {
		s.log.Warn("failed to publish subscription event",
			slog.String("action", action), slog.Any("err", err))
	}
}

func clientSecret(sub *stripe.Subscription) string {
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		return sub.LatestInvoice.PaymentIntent.ClientSecret
	}
	return ""
}
