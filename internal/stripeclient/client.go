// Package stripeclient оборачивает SDK биллинг-провайдера в узкий интерфейс,
// достаточный для жизненного цикла подписки: клиент, подписка, отмена в конце
// периода. Сырые ошибки SDK наружу не отдаются, только обёрнутые.
package stripeclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/lib/sl"
)

// Address почтовый адрес плательщика, приходит из запроса создания подписки.
type Address struct {
	Line1      string `json:"line1" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state"`
	Country    string `json:"country" validate:"required"`
}

// CreateCustomerInput данные для создания клиента у провайдера.
type CreateCustomerInput struct {
	Name          string
	Email         string
	Address       Address
	PaymentMethod string
}

// Client описывает операции с биллинг-провайдером.
type Client interface {
	// CreateCustomer создает клиента с платёжным методом по умолчанию.
	CreateCustomer(ctx context.Context, in CreateCustomerInput) (*stripe.Customer, error)
	// GetCustomer возвращает клиента по его идентификатору.
	GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error)
	// CreateSubscription создает подписку клиента на тариф.
	CreateSubscription(ctx context.Context, customerID, priceID, idempotencyKey string) (*stripe.Subscription, error)
	// GetSubscription возвращает подписку по её идентификатору.
	GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
	// UpdateSubscriptionPrice переводит подписку на другой тариф.
	UpdateSubscriptionPrice(ctx context.Context, subscriptionID, priceID string) (*stripe.Subscription, error)
	// SetCancelAtPeriodEnd помечает (или снимает пометку) отмены подписки
	// в конце оплаченного периода.
	SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*stripe.Subscription, error)
}

type stripeClient struct {
	api *client.API
	log *slog.Logger
}

// New создает клиент поверх официального SDK.
func New(apiKey string, log *slog.Logger) Client {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &stripeClient{
		api: api,
		log: log,
	}
}

func (c *stripeClient) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*stripe.Customer, error) {
	const op = "stripeclient.CreateCustomer"

	address := &stripe.AddressParams{
		Line1:      stripe.String(in.Address.Line1),
		PostalCode: stripe.String(in.Address.PostalCode),
		City:       stripe.String(in.Address.City),
		State:      stripe.String(in.Address.State),
		Country:    stripe.String(in.Address.Country),
	}
	params := &stripe.CustomerParams{
		Name:    stripe.String(in.Name),
		Email:   stripe.String(in.Email),
		Address: address,
		Shipping: &stripe.CustomerShippingParams{
			Name:    stripe.String(in.Name),
			Address: address,
		},
		PaymentMethod: stripe.String(in.PaymentMethod),
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(in.PaymentMethod),
		},
	}
	params.Context = ctx

	cus, err := c.api.Customers.New(params)
	if err != nil {
		c.logStripeError("CreateCustomer", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.log.Info("billing customer created", slog.String("customer_id", cus.ID))
	return cus, nil
}

func (c *stripeClient) GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error) {
	const op = "stripeclient.GetCustomer"

	params := &stripe.CustomerParams{}
	params.Context = ctx

	cus, err := c.api.Customers.Get(customerID, params)
	if err != nil {
		c.logStripeError("GetCustomer", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cus, nil
}

func (c *stripeClient) CreateSubscription(ctx context.Context, customerID, priceID, idempotencyKey string) (*stripe.Subscription, error) {
	const op = "stripeclient.CreateSubscription"

	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{
				Price: stripe.String(priceID),
			},
		},
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			PaymentMethodOptions: &stripe.SubscriptionPaymentSettingsPaymentMethodOptionsParams{
				Card: &stripe.SubscriptionPaymentSettingsPaymentMethodOptionsCardParams{
					RequestThreeDSecure: stripe.String("any"),
				},
			},
			PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
		Params: stripe.Params{
			IdempotencyKey: stripe.String(idempotencyKey),
			Context:        ctx,
		},
	}
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := c.api.Subscriptions.New(params)
	if err != nil {
		c.logStripeError("CreateSubscription", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.log.Info("billing subscription created",
		slog.String("subscription_id", sub.ID),
		slog.String("status", string(sub.Status)))
	return sub, nil
}

func (c *stripeClient) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	const op = "stripeclient.GetSubscription"

	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := c.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		c.logStripeError("GetSubscription", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

func (c *stripeClient) UpdateSubscriptionPrice(ctx context.Context, subscriptionID, priceID string) (*stripe.Subscription, error) {
	const op = "stripeclient.UpdateSubscriptionPrice"

	current, err := c.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(current.Items.Data) == 0 {
		return nil, fmt.Errorf("%s: subscription has no items", op)
	}

	params := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(current.Items.Data[0].ID),
				Price: stripe.String(priceID),
			},
		},
		ProrationBehavior: stripe.String("create_prorations"),
	}
	params.Context = ctx

	sub, err := c.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		c.logStripeError("UpdateSubscriptionPrice", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.log.Info("billing subscription price updated",
		slog.String("subscription_id", sub.ID),
		slog.String("price_id", priceID))
	return sub, nil
}

func (c *stripeClient) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*stripe.Subscription, error) {
	const op = "stripeclient.SetCancelAtPeriodEnd"

	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(cancel),
	}
	params.Context = ctx

	sub, err := c.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		c.logStripeError("SetCancelAtPeriodEnd", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.log.Info("billing subscription cancel flag updated",
		slog.String("subscription_id", sub.ID),
		slog.Bool("cancel_at_period_end", cancel))
	return sub, nil
}

// logStripeError логирует детали ошибки SDK, если это ошибка API провайдера.
func (c *stripeClient) logStripeError(operation string, err error) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		c.log.Error("billing provider error",
			slog.String("operation", operation),
			slog.String("type", string(stripeErr.Type)),
			slog.String("code", string(stripeErr.Code)),
			slog.String("request_id", stripeErr.RequestID),
			slog.Int("status_code", stripeErr.HTTPStatusCode))
		return
	}
	c.log.Error("billing provider call failed", slog.String("operation", operation), sl.Err(err))
}
