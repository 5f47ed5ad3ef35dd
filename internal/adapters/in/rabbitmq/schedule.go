package rabbitmq

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dingdongdog/supabase-activity-tracker/internal/core/ports/out"
)

func (l *CacheHitListener) startScheduleQueue(ctx context.Context) error {
	queue, err := l.channel.QueueDeclare(
		l.cfg.RabbitMq.QueueConfig.ScheduleQueueName,
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
		l.cfg.RabbitMq.QueueConfig.ScheduleQueueBind,
		l.cfg.RabbitMq.QueueConfig.ScheduleQueueExchange,
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
				if err := l.processScheduleMessage(ctx, msg); err != nil {
					msg.Nack(false, true) // requeue message
					continue
				}
				msg.Ack(false)
			}
		}
	}()

	return nil
}

func (l *CacheHitListener) processScheduleMessage(ctx context.Context, msg amqp.Delivery) error {
	cacheMessageRoutingKey, err := l.parseCacheMessageRoutingKey(ctx, msg)
	if err != nil {
		return err
	}

	// Очередь ловит и schedules, и schedule_times
	if cacheMessageRoutingKey.ResourceType != CacheHitResourceTypeSchedule &&
		cacheMessageRoutingKey.ResourceType != CacheHitResourceTypeScheduleTime {
		return nil
	}

	l.logger.Info("schedule.message.received", out.LogFields{
		"sessionCode":  cacheMessageRoutingKey.SessionCode,
		"resourceType": cacheMessageRoutingKey.ResourceType,
		"hitType":      cacheMessageRoutingKey.CacheHitType,
	})

	go l.useCase.InvalidateSessionCache(ctx, cacheMessageRoutingKey.SessionCode)

	l.logger.Info("schedule.message.invalidated", out.LogFields{
		"sessionCode": cacheMessageRoutingKey.SessionCode,
	})

	return nil
}
