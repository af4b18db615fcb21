package rabbitmq

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"
)

const defaultNotificationsQueue = "oms.order.notifications"

// Client represents a RabbitMQ client.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Channel returns the underlying AMQP channel.
func (r *Client) Channel() *amqp.Channel {
	return r.channel
}

// Close closes the channel and connection for graceful shutdown.
func (r *Client) Close() error {
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			return err
		}
	}
	if r.conn != nil {
		return r.conn.Close()
	}

	return nil
}

// MustNewClient creates a new RabbitMQ client.
func MustNewClient() *Client {
	connStr := fmt.Sprintf(
		"amqp://%s:%s@%s:5672/",
		os.Getenv("RABBITMQ_DEFAULT_USER"),
		os.Getenv("RABBITMQ_DEFAULT_PASS"),
		os.Getenv("RABBITMQ_HOST"),
	)

	conn, err := amqp.Dial(connStr)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to RabbitMQ: %v", err))
	}

	channel, err := conn.Channel()
	if err != nil {
		err := conn.Close()
		if err != nil {
			panic(fmt.Sprintf("Failed to close a connection: %v", err))
		}
		panic(fmt.Sprintf("Failed to open a channel: %v", err))
	}

	slog.Info("RabbitMQ connected")

	return &Client{
		conn:    conn,
		channel: channel,
	}
}

// NotificationsQueueName resolves the customer notification queue from
// config, falling back to the service default.
func NotificationsQueueName() string {
	if name := viper.GetString("rabbitmq.notifications.queue"); name != "" {
		return name
	}

	return defaultNotificationsQueue
}

// DeclareNotificationsQueue declares the durable queue customer
// notifications are published to. Publishing goes through the default
// exchange, so the queue name doubles as the routing key.
func (r *Client) DeclareNotificationsQueue() (amqp.Queue, error) {
	return r.channel.QueueDeclare(
		NotificationsQueueName(),
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
}
