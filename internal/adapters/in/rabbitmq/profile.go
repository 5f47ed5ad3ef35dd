package rabbitmq

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dingdongdog/supabase-activity-tracker/internal/core/ports/out"
)

func (l *CacheHitListener) startProfileQueue(ctx context.Context) error {
	queue, err := l.channel.QueueDeclare(
		l.cfg.RabbitMq.QueueConfig.ProfileQueueName,
		true,  // durable
		true,  // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}
	err = l.channel.QueueBind(
		queue.Name,
		l.cfg.RabbitMq.QueueConfig.ProfileQueueBind,
		l.cfg.RabbitMq.QueueConfig.ProfileQueueExchange,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	msgs, err := l.channel.Consume(
		queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				if err := l.processProfileMessage(ctx, msg); err != nil {
					msg.Nack(false, true) // requeue message
					continue
				}
				msg.Ack(false)
			}
		}
	}()

	return nil
}

func (l *CacheHitListener) processProfileMessage(ctx context.Context, msg amqp.Delivery) error {
	cacheMessageRoutingKey, err := l.parseCacheMessageRoutingKey(ctx, msg)
	if err != nil {
		return err
	}

	if cacheMessageRoutingKey.ResourceType != CacheHitResourceTypeProfile {
		return nil
	}

	l.logger.Info("profile.message.received", out.LogFields{
		"sessionCode": cacheMessageRoutingKey.SessionCode,
		"hitType":     cacheMessageRoutingKey.CacheHitType,
	})

	// Ростер входит в снапшот сессии, любое изменение профиля сбрасывает его целиком
	go l.useCase.InvalidateSessionCache(ctx, cacheMessageRoutingKey.SessionCode)

	l.logger.Info("profile.message.invalidated", out.LogFields{
		"sessionCode": cacheMessageRoutingKey.SessionCode,
	})

	return nil
}
