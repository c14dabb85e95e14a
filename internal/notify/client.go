package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 5 * time.Second

// GoalNotifier delivers goal notifications to external consumers
type GoalNotifier interface {
	NotifyGoalCompleted(ctx context.Context, msg *GoalCompletedMessage) error
}

// channel is the part of *amqp091.Channel the client needs
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Client publishes goal notifications to a durable direct exchange
type Client struct {
	conn         *amqp091.Connection
	channel      channel
	exchangeName string
	queueName    string
}

var _ GoalNotifier = (*Client)(nil)

// NewClient dials the broker and declares the exchange, queue and binding
func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      ch,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func newClientWithChannel(ch channel, exchangeName, queueName string) (*Client, error) {
	client := &Client{channel: ch, exchangeName: exchangeName, queueName: queueName}
	if err := client.setup(); err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Client) setup() error {
	if err := c.channel.ExchangeDeclare(c.exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := c.channel.QueueDeclare(c.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key is the queue name on a direct exchange
	if err := c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// NotifyGoalCompleted publishes a persistent goal-completed message
func (c *Client) NotifyGoalCompleted(ctx context.Context, msg *GoalCompletedMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		c.queueName,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Type:         "goal.completed",
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	log.Info().
		Str("account_id", msg.AccountID.String()).
		Int32("goal_id", msg.GoalID).
		Str("exchange", c.exchangeName).
		Msg("Published goal completed notification")

	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// NoOpNotifier drops notifications. Used when no broker is configured.
type NoOpNotifier struct{}

func (NoOpNotifier) NotifyGoalCompleted(ctx context.Context, msg *GoalCompletedMessage) error {
	log.Debug().Int32("goal_id", msg.GoalID).Msg("Goal notification skipped, no broker configured")
	return nil
}
