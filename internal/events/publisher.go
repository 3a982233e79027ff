package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	ItemAdded   = "cart.item.added"
	ItemRemoved = "cart.item.removed"
	ItemUpdated = "cart.item.updated"
)

// ItemEvent is the payload of every cart activity event.
type ItemEvent struct {
	ProductID      string   `json:"product_id"`
	Quantity       int      `json:"quantity,omitempty"`
	CartItemsCount int      `json:"cart_items_count"`
	CartTotal      *float64 `json:"cart_total,omitempty"`
}

type envelope struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

func encode(eventType string, payload any, now time.Time) ([]byte, error) {
	return json.Marshal(envelope{Type: eventType, Timestamp: now.UTC(), Payload: payload})
}

// Publisher sends cart activity to a topic exchange. The zero value (and a nil
// pointer) is a valid publisher that drops everything.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      zerolog.Logger
}

func NewPublisher(url, exchange string, log zerolog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, channel: ch, exchange: exchange, log: log}, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) error {
	if p == nil || p.channel == nil {
		return nil
	}
	body, err := encode(eventType, payload, time.Now())
	if err != nil {
		return err
	}
	p.log.Debug().Str("type", eventType).Msg("publish event")
	return p.channel.PublishWithContext(ctx,
		p.exchange, eventType, false, false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
}
