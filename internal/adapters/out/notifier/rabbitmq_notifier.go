package notifier

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dingdongdog/supabase-activity-tracker/internal/config"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/domain"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/ports/out"
)

// RabbitMqNotifier публикует уведомления о событиях сессии в topic exchange.
// Доставка best-effort: вызывающая сторона ошибки только логирует
type RabbitMqNotifier struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	// Префикс routing key, например dingdongdog.notifications
	keyPrefix string
	logger    out.LoggerPort
}

func NewRabbitMqNotifier(cfg *config.Config, logger out.LoggerPort) (*RabbitMqNotifier, error) {
	if !cfg.RabbitMq.Enabled {
		logger.Info("notifier.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, notifications will not be published",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMq.AmqpUri)
	if err != nil {
		logger.Error("notifier.connect.failed", out.LogFields{
			"error": err.Error(),
			"url":   cfg.RabbitMq.AmqpUri,
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("notifier.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	err = channel.ExchangeDeclare(
		cfg.RabbitMq.NotificationsExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		logger.Error("notifier.exchange.failed", out.LogFields{
			"error":    err.Error(),
			"exchange": cfg.RabbitMq.NotificationsExchange,
		})
		return nil, err
	}

	return &RabbitMqNotifier{
		conn:      conn,
		channel:   channel,
		exchange:  cfg.RabbitMq.NotificationsExchange,
		keyPrefix: cfg.RabbitMq.NotificationsKeyPrefix,
		logger:    logger.WithModule("RabbitMqNotifier"),
	}, nil
}

func (n *RabbitMqNotifier) Broadcast(ctx context.Context, notification domain.Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	routingKey := n.keyPrefix + "." + notification.Event

	err = n.channel.PublishWithContext(ctx,
		n.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		n.logger.Error("notifier.publish.failed", out.LogFields{
			"error":      err.Error(),
			"routingKey": routingKey,
		})
		return err
	}

	n.logger.Debug("notifier.publish.success", out.LogFields{
		"routingKey": routingKey,
		"event":      notification.Event,
	})

	return nil
}

func (n *RabbitMqNotifier) Stop() error {
	if n == nil || n.channel == nil {
		return nil
	}

	if err := n.channel.Close(); err != nil {
		return err
	}
	return n.conn.Close()
}
