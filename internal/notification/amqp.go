package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"radruga/pkg/logger"
)

const publishAttempts = 3

// AMQPPublisher publishes events as persistent JSON messages to a durable
// queue on the default exchange.
type AMQPPublisher struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
	appID     string
}

// NewAMQPPublisher dials url, opens a channel and declares queue
func NewAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", queue, err)
	}
	logger.Infof("Notification publisher ready on queue %s", queue)
	return &AMQPPublisher{conn: conn, channel: ch, queueName: queue, appID: "radruga"}, nil
}

func (p *AMQPPublisher) Notify(ctx context.Context, event Event) error {
	if p.channel == nil {
		return errors.New("rabbitmq channel is not initialized")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for attempt := 1; attempt <= publishAttempts; attempt++ {
		err = p.channel.PublishWithContext(ctx,
			"",          // exchange
			p.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
				Timestamp:    event.CreatedAt,
				Type:         string(event.Type),
				AppId:        p.appID,
			},
		)
		if err == nil {
			return nil
		}
		logger.Warnf("Publish to %s failed (attempt %d): %v", p.queueName, attempt, err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("publish %s: %w", event.Type, ctx.Err())
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	return fmt.Errorf("publish %s after %d attempts: %w", event.Type, publishAttempts, err)
}

// Close closes the channel and the connection
func (p *AMQPPublisher) Close() error {
	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
