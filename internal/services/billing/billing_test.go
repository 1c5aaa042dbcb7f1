package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/models"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/rabbitmq"
	services "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/billing"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/storage/repository"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/stripeclient"
)

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdateSubscriptionFields(ctx context.Context, userUID string,
	customerID, subscriptionID, priceID string, isSubscribed bool, expiry *time.Time) error {
	return m.Called(ctx, userUID, customerID, subscriptionID, priceID, isSubscribed, expiry).Error(0)
}

func (m *UserRepoMock) SetSubscribed(ctx context.Context, userUID string, isSubscribed bool) error {
	return m.Called(ctx, userUID, isSubscribed).Error(0)
}

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) CreateCustomer(ctx context.Context, in stripeclient.CreateCustomerInput) (*stripe.Customer, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Customer), args.Error(1)
}

func (m *ProviderMock) GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Customer), args.Error(1)
}

func (m *ProviderMock) CreateSubscription(ctx context.Context, customerID, priceID, idempotencyKey string) (*stripe.Subscription, error) {
	args := m.Called(ctx, customerID, priceID, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Subscription), args.Error(1)
}

func (m *ProviderMock) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Subscription), args.Error(1)
}

func (m *ProviderMock) UpdateSubscriptionPrice(ctx context.Context, subscriptionID, priceID string) (*stripe.Subscription, error) {
	args := m.Called(ctx, subscriptionID, priceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Subscription), args.Error(1)
}

func (m *ProviderMock) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*stripe.Subscription, error) {
	args := m.Called(ctx, subscriptionID, cancel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Subscription), args.Error(1)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(routingKey string, message any) error {
	return m.Called(routingKey, message).Error(0)
}

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newService(t *testing.T) (*services.BillingService, *UserRepoMock, *ProviderMock, *CacheMock, *PublisherMock) {
	t.Helper()
	repo := new(UserRepoMock)
	provider := new(ProviderMock)
	cacheMock := new(CacheMock)
	publisher := new(PublisherMock)
	svc := services.NewBillingService(repo, provider, cacheMock, publisher, NewNoopLogger())
	return svc, repo, provider, cacheMock, publisher
}

func TestBillingService_CreateSubscription(t *testing.T) {
	svc, repo, provider, cacheMock, publisher := newService(t)

	in := services.CreateSubscriptionInput{
		Name:          "Test User",
		Email:         "test@example.com",
		Address:       stripeclient.Address{Line1: "1 Main St", PostalCode: "751001", City: "BBSR", Country: "IN"},
		PaymentMethod: "pm_123",
		PriceID:       "price_pro",
	}

	provider.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(got stripeclient.CreateCustomerInput) bool {
		return got.Email == in.Email && got.PaymentMethod == "pm_123"
	})).Return(&stripe.Customer{ID: "cus_1"}, nil).Once()

	sub := &stripe.Subscription{
		ID: "sub_1",
		LatestInvoice: &stripe.Invoice{
			PaymentIntent: &stripe.PaymentIntent{ClientSecret: "pi_secret"},
		},
	}
	provider.On("CreateSubscription", mock.Anything, "cus_1", "price_pro", mock.Anything).Return(sub, nil).Once()

	repo.On("UpdateSubscriptionFields", mock.Anything, "uid-1",
		"cus_1", "sub_1", "price_pro", true, mock.MatchedBy(func(expiry *time.Time) bool {
			// срок действия примерно через 30 дней
			want := time.Now().UTC().AddDate(0, 0, 30)
			return expiry != nil && expiry.Sub(want).Abs() < time.Minute
		})).Return(nil).Once()
	cacheMock.On("Invalidate", "user:uid-1").Return(nil).Once()
	publisher.On("Publish", "subscription", mock.MatchedBy(func(msg any) bool {
		event, ok := msg.(rabbitmq.SubscriptionEvent)
		return ok && event.Action == rabbitmq.ActionCreated && event.SubscriptionID == "sub_1"
	})).Return(nil).Once()

	result, err := svc.CreateSubscription(context.Background(), "uid-1", in)
	require.NoError(t, err)
	assert.Equal(t, "cus_1", result.CustomerID)
	assert.Equal(t, "sub_1", result.SubscriptionID)
	assert.Equal(t, "pi_secret", result.ClientSecret)

	repo.AssertExpectations(t)
	provider.AssertExpectations(t)
	cacheMock.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestBillingService_CreateSubscription_ProviderFailure(t *testing.T) {
	svc, repo, provider, cacheMock, _ := newService(t)

	provider.On("CreateCustomer", mock.Anything, mock.Anything).
		Return(nil, errors.New("card declined")).Once()

	_, err := svc.CreateSubscription(context.Background(), "uid-1", services.CreateSubscriptionInput{})
	require.Error(t, err)

	repo.AssertNotCalled(t, "UpdateSubscriptionFields",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	cacheMock.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestBillingService_UpdateSubscription(t *testing.T) {
	svc, repo, provider, cacheMock, publisher := newService(t)

	user := &models.User{
		UID: "uid-1", Name: "Test User", Email: "test@example.com",
		CustomerID: "cus_1", SubscriptionID: "sub_1", PriceID: "price_basic",
	}
	repo.On("GetUser", mock.Anything, "uid-1").Return(user, nil).Once()
	provider.On("UpdateSubscriptionPrice", mock.Anything, "sub_1", "price_pro").
		Return(&stripe.Subscription{ID: "sub_1"}, nil).Once()
	repo.On("UpdateSubscriptionFields", mock.Anything, "uid-1",
		"cus_1", "sub_1", "price_pro", true, mock.Anything).Return(nil).Once()
	cacheMock.On("Invalidate", "user:uid-1").Return(nil).Once()
	publisher.On("Publish", "subscription", mock.MatchedBy(func(msg any) bool {
		event, ok := msg.(rabbitmq.SubscriptionEvent)
		return ok && event.Action == rabbitmq.ActionUpdated
	})).Return(nil).Once()

	got, err := svc.UpdateSubscription(context.Background(), "uid-1", "price_pro")
	require.NoError(t, err)
	assert.Equal(t, "price_pro", got.PriceID)
	assert.True(t, got.IsSubscribed)
	require.NotNil(t, got.SubscriptionExpiry)
}

func TestBillingService_ResumeAndCancel(t *testing.T) {
	expiry := time.Now().UTC().AddDate(0, 0, 15)
	user := &models.User{
		UID: "uid-1", Name: "Test User", Email: "test@example.com",
		CustomerID: "cus_1", SubscriptionID: "sub_1",
		IsSubscribed: true, SubscriptionExpiry: &expiry,
	}

	t.Run("resume clears cancellation and sets the flag", func(t *testing.T) {
		svc, repo, provider, cacheMock, publisher := newService(t)

		repo.On("GetUser", mock.Anything, "uid-1").Return(user, nil).Once()
		provider.On("SetCancelAtPeriodEnd", mock.Anything, "sub_1", false).
			Return(&stripe.Subscription{ID: "sub_1"}, nil).Once()
		repo.On("SetSubscribed", mock.Anything, "uid-1", true).Return(nil).Once()
		cacheMock.On("Invalidate", "user:uid-1").Return(nil).Once()
		publisher.On("Publish", "subscription", mock.MatchedBy(func(msg any) bool {
			event, ok := msg.(rabbitmq.SubscriptionEvent)
			return ok && event.Action == rabbitmq.ActionResumed
		})).Return(nil).Once()

		require.NoError(t, svc.ResumeSubscription(context.Background(), "uid-1"))
		repo.AssertExpectations(t)
	})

	t.Run("cancel flags period end and drops the flag", func(t *testing.T) {
		svc, repo, provider, cacheMock, publisher := newService(t)

		repo.On("GetUser", mock.Anything, "uid-1").Return(user, nil).Once()
		provider.On("SetCancelAtPeriodEnd", mock.Anything, "sub_1", true).
			Return(&stripe.Subscription{ID: "sub_1"}, nil).Once()
		repo.On("SetSubscribed", mock.Anything, "uid-1", false).Return(nil).Once()
		cacheMock.On("Invalidate", "user:uid-1").Return(nil).Once()
		publisher.On("Publish", "subscription", mock.MatchedBy(func(msg any) bool {
			event, ok := msg.(rabbitmq.SubscriptionEvent)
			return ok && event.Action == rabbitmq.ActionCancelled
		})).Return(nil).Once()

		require.NoError(t, svc.CancelSubscription(context.Background(), "uid-1"))
		repo.AssertExpectations(t)
	})

	t.Run("cancel without subscription does not touch the provider", func(t *testing.T) {
		svc, repo, provider, _, _ := newService(t)

		repo.On("GetUser", mock.Anything, "uid-1").
			Return(&models.User{UID: "uid-1"}, nil).Once()

		err := svc.CancelSubscription(context.Background(), "uid-1")
		require.ErrorIs(t, err, services.ErrNoSubscription)
		provider.AssertNotCalled(t, "SetCancelAtPeriodEnd", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBillingService_Fetch(t *testing.T) {
	t.Run("subscription", func(t *testing.T) {
		svc, repo, provider, _, _ := newService(t)

		repo.On("GetUser", mock.Anything, "uid-1").
			Return(&models.User{UID: "uid-1", SubscriptionID: "sub_1"}, nil).Once()
		provider.On("GetSubscription", mock.Anything, "sub_1").
			Return(&stripe.Subscription{ID: "sub_1", Status: stripe.SubscriptionStatusActive}, nil).Once()

		sub, err := svc.FetchSubscription(context.Background(), "uid-1")
		require.NoError(t, err)
		assert.Equal(t, "sub_1", sub.ID)
	})

	t.Run("customer missing", func(t *testing.T) {
		svc, repo, provider, _, _ := newService(t)

		repo.On("GetUser", mock.Anything, "uid-1").
			Return(&models.User{UID: "uid-1"}, nil).Once()

		_, err := svc.FetchCustomer(context.Background(), "uid-1")
		require.ErrorIs(t, err, services.ErrNoCustomer)
		provider.AssertNotCalled(t, "GetCustomer", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, repo, _, _, _ := newService(t)

		repo.On("GetUser", mock.Anything, "missing").
			Return(nil, repository.ErrUserNotFound).Once()

		_, err := svc.FetchSubscription(context.Background(), "missing")
		require.ErrorIs(t, err, repository.ErrUserNotFound)
	})
}
