package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/travel-booking/internal/queue"
)

// QueuePublisher publishes booking events to RabbitMQ. It implements
// Notifier. Publishing is best-effort: errors are returned so the
// coordinator can log them, but nothing here can affect a committed
// reservation. Messages are marked persistent.
type QueuePublisher struct {
	url string
}

// NewQueuePublisher returns a publisher for the given AMQP URL.
func NewQueuePublisher(url string) *QueuePublisher {
	return &QueuePublisher{url: url}
}

// BookingConfirmed publishes ev to the booking.confirmed queue.
func (p *QueuePublisher) BookingConfirmed(ctx context.Context, ev q.BookingConfirmedEvent) error {
	return p.publish(ctx, q.BookingConfirmedQueue, ev)
}

// BookingCancelled publishes ev to the booking.cancelled queue.
func (p *QueuePublisher) BookingCancelled(ctx context.Context, ev q.BookingCancelledEvent) error {
	return p.publish(ctx, q.BookingCancelledQueue, ev)
}

func (p *QueuePublisher) publish(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	return ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	)
}
