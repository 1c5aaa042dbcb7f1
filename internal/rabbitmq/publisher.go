package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// Publisher публикует сообщения в exchange уведомлений.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// ChannelPublisher публикует через живой канал AMQP.
type ChannelPublisher struct {
	Ch *amqp.Channel
}

func (p *ChannelPublisher) Publish(routingKey string, message any) error {
	return PublishMessage(p.Ch, NotificationsExchange, routingKey, message)
}

// PublishMessage сериализует сообщение в JSON и публикует его в брокер.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
