package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/dingdongdog/supabase-activity-tracker/internal/adapters/in/http"
	"github.com/dingdongdog/supabase-activity-tracker/internal/adapters/in/rabbitmq"
	"github.com/dingdongdog/supabase-activity-tracker/internal/adapters/out/cache"
	"github.com/dingdongdog/supabase-activity-tracker/internal/adapters/out/logger"
	"github.com/dingdongdog/supabase-activity-tracker/internal/adapters/out/notifier"
	"github.com/dingdongdog/supabase-activity-tracker/internal/adapters/out/supabase"
	"github.com/dingdongdog/supabase-activity-tracker/internal/config"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/ports/out"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/services"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера с таймзоной
	mainLogger, err := logger.NewConsoleLogger(cfg.App.Timezone)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := mainLogger.WithModule("Main")

	logger.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"rabbitmqEnabled": cfg.RabbitMq.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
	})

	// Настройка Gin в зависимости от окружения
	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Инициализация адаптеров
	supabaseAdapter := supabase.NewSupabaseAdapter(cfg, logger.WithModule("SupabaseAdapter"))

	var cacheAdapter out.CachePort
	if cfg.Cache.Enabled {
		lruCacheAdapter, err := cache.NewCacheAdapter(cfg, logger)
		if err != nil {
			logger.Error("app.cache.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		cacheAdapter = lruCacheAdapter
	}

	var notifierAdapter out.NotifierPort
	if cfg.RabbitMq.Enabled {
		rabbitMqNotifier, err := notifier.NewRabbitMqNotifier(cfg, logger)
		if err != nil {
			logger.Error("app.notifier.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		notifierAdapter = rabbitMqNotifier

		defer func() {
			if err := rabbitMqNotifier.Stop(); err != nil {
				logger.Error("app.notifier.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	// Инициализация сервиса
	activityTrackerService := services.NewActivityTrackerService(
		supabaseAdapter,
		cacheAdapter,
		notifierAdapter,
		logger,
		cfg,
	)

	// Настройка HTTP сервера
	router := gin.Default()
	controller := http.NewActivityTrackerController(activityTrackerService, cfg)
	controller.RegisterRoutes(router)

	// Настройка RabbitMQ слушателя только если он включен
	if cfg.RabbitMq.Enabled {
		listener, err := rabbitmq.NewCacheHitListener(
			activityTrackerService,
			cfg,
			logger.WithModule("RabbitMqListener"),
		)
		if err != nil {
			logger.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := listener.Start(ctx); err != nil {
			logger.Error("app.rabbitmq.start_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		// Добавляем остановку RabbitMQ в defer
		defer func() {
			if err := listener.Stop(); err != nil {
				logger.Error("app.rabbitmq.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := router.Run(cfg.HTTP.Host + ":" + cfg.HTTP.Port); err != nil {
			logger.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	logger.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})

	// Дополнительное логирование для разработки
	if cfg.IsLocal() {
		logger.Debug("app.config.debug", out.LogFields{
			"config": map[string]interface{}{
				"http": map[string]string{
					"host": cfg.HTTP.Host,
					"port": cfg.HTTP.Port,
				},
				"supabase": map[string]string{
					"url": cfg.Supabase.URL,
				},
				"rabbitmq": map[string]interface{}{
					"enabled":  cfg.RabbitMq.Enabled,
					"exchange": cfg.RabbitMq.NotificationsExchange,
				},
				"cache": map[string]interface{}{
					"enabled":       cfg.Cache.Enabled,
					"sessions_size": cfg.Cache.SessionsSize,
				},
			},
		})
	}
}
