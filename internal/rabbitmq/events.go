package rabbitmq

import "time"

// Действия жизненного цикла подписки, попадающие в уведомления.
const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionResumed   = "resumed"
	ActionCancelled = "cancelled"
)

// SubscriptionEvent событие жизненного цикла подписки пользователя.
// Публикуется сервисом биллинга, потребляется воркером рассылки.
type SubscriptionEvent struct {
	UserUID        string     `json:"user_uid"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Action         string     `json:"action"`
	SubscriptionID string     `json:"subscription_id"`
	Expiry         *time.Time `json:"expiry,omitempty"`
}
