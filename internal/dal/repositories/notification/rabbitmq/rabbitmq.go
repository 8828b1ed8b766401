package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"

	"github.com/feastline/order-svc/internal/dal/rabbitmq"
	"github.com/feastline/order-svc/internal/service/models/notification"
)

// NotificationRabbitMQRepository publishes composed notifications to the
// queue the external mailer consumes.
type NotificationRabbitMQRepository struct {
	client *rabbitmq.Client
	queue  amqp.Queue
}

func NewNotificationRabbitMQRepository(client *rabbitmq.Client) *NotificationRabbitMQRepository {
	queueName := viper.GetString("rabbitmq.notifications.queue")
	if queueName == "" {
		queueName = "orders.notifications"
	}

	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       queueName,
		Durable:    true,
		Exclusive:  false,
		AutoDelete: false,
	})
	if err != nil {
		panic(err)
	}

	return &NotificationRabbitMQRepository{
		client: client,
		queue:  queue,
	}
}

// Publish sends one notification message. Delivery failures bubble up so the
// notifier worker can reschedule the attempt.
func (r *NotificationRabbitMQRepository) Publish(_ context.Context, msg notification.Email) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return r.client.Channel().Publish(
		"",
		r.queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        data,
		},
	)
}
