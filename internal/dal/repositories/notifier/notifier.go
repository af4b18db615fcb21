package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"

	"github.com/commercekit/oms/internal/dal/interfaces/ioutboxrepo"
	"github.com/commercekit/oms/internal/dal/rabbitmq"
	"github.com/commercekit/oms/internal/service/models/notification"
	"github.com/commercekit/oms/internal/service/models/outbox"
)

// RabbitMQNotifier publishes customer notifications. A failed publish lands
// in the outbox table and is retried by the outbox worker, so the caller's
// operation never depends on the broker being up.
type RabbitMQNotifier struct {
	client     *rabbitmq.Client
	outboxRepo ioutboxrepo.IOutboxRepository
	queue      amqp.Queue
}

func NewRabbitMQNotifier(
	client *rabbitmq.Client,
	outboxRepo ioutboxrepo.IOutboxRepository,
) *RabbitMQNotifier {
	queue, err := client.DeclareNotificationsQueue()
	if err != nil {
		panic(err)
	}

	return &RabbitMQNotifier{
		client:     client,
		outboxRepo: outboxRepo,
		queue:      queue,
	}
}

// Notify publishes one notification. On broker failure the message is parked
// in the outbox; only a failure to park is returned to the caller.
func (n *RabbitMQNotifier) Notify(ctx context.Context, msg notification.Notification) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = n.client.Channel().Publish(
		"",
		n.queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   msg.ID.String(),
			Body:        payload,
		},
	)
	if err == nil {
		return nil
	}

	slog.Warn("Failed to publish notification, parking in outbox",
		"notification_id", msg.ID.String(),
		"order_id", msg.OrderID,
		"error", err,
	)

	maxRetries := viper.GetInt("rabbitmq.outbox.max_retries")
	if maxRetries == 0 {
		maxRetries = 5
	}

	now := time.Now()
	if err := n.outboxRepo.Insert(ctx, outbox.Message{
		QueueName:   n.queue.Name,
		RoutingKey:  n.queue.Name,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  maxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	}); err != nil {
		return fmt.Errorf("failed to park notification in outbox: %w", err)
	}

	return nil
}
