/*
amqp.go - Optional AMQP confirmation publisher

When ROOMBOOK_AMQP_URL is set, booking confirmations are additionally
published to a durable topic exchange so downstream consumers (mailers,
dashboards) can react. Publishing stays best-effort like every other
confirmation path: a broker outage never fails a booking.
*/
package notify

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/campuskit/roombook/booking"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const confirmedRoutingKey = "booking.confirmed"

// AMQPPublisher publishes confirmation events to a topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// confirmationEvent is the wire shape consumers see.
type confirmationEvent struct {
	BookingID int    `json:"booking_id"`
	UserID    int    `json:"user_id"`
	RoomID    int    `json:"room_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	GroupSize int    `json:"group_size"`
}

// BookingConfirmed publishes one persistent JSON event.
func (p *AMQPPublisher) BookingConfirmed(ctx context.Context, b booking.Booking) error {
	body, err := json.Marshal(confirmationEvent{
		BookingID: b.ID,
		UserID:    b.UserID,
		RoomID:    b.RoomID,
		Start:     b.Start.Format(time.RFC3339),
		End:       b.End.Format(time.RFC3339),
		GroupSize: b.GroupSize,
	})
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, confirmedRoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
