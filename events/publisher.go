package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sanyogjadhav24/Krushi-Sarjana/models"
)

const (
	TypeCreated       = "order.created"
	TypeStatusUpdated = "order.status_updated"
	TypeCancelled     = "order.cancelled"
	TypePaid          = "order.paid"
)

// OrderEvent is the message published after every successful order write.
type OrderEvent struct {
	OrderID       string               `json:"orderId"`
	Type          string               `json:"type"`
	OrderStatus   models.OrderStatus   `json:"orderStatus"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	TotalAmount   float64              `json:"totalAmount"`
	Occurred      time.Time            `json:"occurred"`
}

// Publisher pushes order events to a durable direct exchange. Callers
// treat a nil *Publisher as "events disabled" and skip publishing.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := channel.ExchangeDeclare(
		exchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// Publish sends the event with its type as routing key. Delivery is
// best-effort; the order write has already committed by the time this runs.
func (p *Publisher) Publish(ctx context.Context, event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx,
		p.exchange,
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Occurred,
			Body:         body,
		})
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
