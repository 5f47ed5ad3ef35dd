package rabbitmq

import (
	"context"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dingdongdog/supabase-activity-tracker/internal/config"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/ports/in"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/ports/out"
)

type CacheHitListener struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	useCase in.ActivityTrackerUseCase
	cfg     *config.Config
	logger  out.LoggerPort
}

type (
	CacheHitType         string
	CacheHitResourceType string
)

type CacheMessageRoutingKey struct {
	Source       string
	Receiver     string
	ResourceType CacheHitResourceType
	SessionCode  string
	CacheHitType CacheHitType
}

const (
	CacheHitResourceTypeAll          CacheHitResourceType = "_all_"
	CacheHitResourceTypeProfile      CacheHitResourceType = "profiles"
	CacheHitResourceTypeSchedule     CacheHitResourceType = "schedules"
	CacheHitResourceTypeScheduleTime CacheHitResourceType = "schedule_times"
	CacheHitResourceTypeActivity     CacheHitResourceType = "activities"
)

const (
	CacheHitTypeStore      CacheHitType = "store"
	CacheHitTypeInvalidate CacheHitType = "invalidate"
)

func NewCacheHitListener(useCase in.ActivityTrackerUseCase, cfg *config.Config, logger out.LoggerPort) (*CacheHitListener, error) {
	if !cfg.RabbitMq.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, listener will not be started",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMq.AmqpUri)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
			"url":   cfg.RabbitMq.AmqpUri,
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	return &CacheHitListener{
		conn:    conn,
		channel: channel,
		useCase: useCase,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func (l *CacheHitListener) Start(ctx context.Context) error {
	var err error
	err = l.startProfileQueue(ctx)
	if err != nil {
		return err
	}
	l.logger.Info("profile.queue.started", out.LogFields{
		"queue": l.cfg.RabbitMq.QueueConfig.ProfileQueueName,
	})
	err = l.startScheduleQueue(ctx)
	if err != nil {
		return err
	}
	l.logger.Info("schedule.queue.started", out.LogFields{
		"queue": l.cfg.RabbitMq.QueueConfig.ScheduleQueueName,
	})
	err = l.startActivityQueue(ctx)
	if err != nil {
		return err
	}
	l.logger.Info("activity.queue.started", out.LogFields{
		"queue": l.cfg.RabbitMq.QueueConfig.ActivityQueueName,
	})
	err = l.startAllQueue(ctx)
	if err != nil {
		return err
	}
	l.logger.Info("_all_.queue.started", out.LogFields{
		"queue": l.cfg.RabbitMq.QueueConfig.AllQueueName,
	})

	return nil
}

func (l *CacheHitListener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}

	if err := l.channel.Close(); err != nil {
		return err
	}
	return l.conn.Close()
}

// Пример routingKey:
// supabase.activity-tracker.profiles.ABC123.invalidate
// supabase.activity-tracker.schedules.ABC123.store
// supabase.activity-tracker._all_._all_.invalidate
func (l *CacheHitListener) parseCacheMessageRoutingKey(ctx context.Context, msg amqp.Delivery) (CacheMessageRoutingKey, error) {
	routingKey := msg.RoutingKey
	parts := strings.Split(routingKey, ".")

	if len(parts) < 5 {
		return CacheMessageRoutingKey{}, fmt.Errorf("invalid routing key: %s", routingKey)
	}

	return CacheMessageRoutingKey{
		Source:       parts[0],
		Receiver:     parts[1],
		ResourceType: CacheHitResourceType(parts[2]),
		SessionCode:  parts[3],
		CacheHitType: CacheHitType(parts[4]),
	}, nil
}
