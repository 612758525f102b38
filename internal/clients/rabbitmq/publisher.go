package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/kurtarapp/kurtar-backend/internal/logger"
)

const exchange = "kurtar.events"

// Routing keys for the events this service emits. Order events carry the
// canonical order JSON; that shape is the wire contract for every consumer.
const (
	RouteOrderCreated  = "order.created"
	RouteOrderUpdated  = "order.updated"
	RouteRatingCreated = "rating.created"
	RoutePush          = "notification.push"
)

type EventPublisher interface {
	Publish(routingKey string, payload any) error
	Close() error
}

type publisher struct {
	conn *amqp.Connection
	log  *logger.Logger
}

func NewPublisher(url string, baseLog *logger.Logger) (EventPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &publisher{conn: conn, log: baseLog.With("client", "EventPublisher")}, nil
}

func (p *publisher) Publish(routingKey string, payload any) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return ch.Publish(exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (p *publisher) Close() error {
	return p.conn.Close()
}
