package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

// Таймзона сессии, единая для всех опекунов
// Заполняется в NewConfig из APP_TIMEZONE
var TimeZone *time.Location = time.UTC

type ConfigBasicClient struct {
	Username string
	Password string
}

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"America/New_York"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	Supabase struct {
		URL        string `env:"SUPABASE_URL"`
		ServiceKey string `env:"SUPABASE_SERVICE_KEY"`
	}

	Auth struct {
		BasicClientsString string `env:"AUTH_BASIC_CLIENTS" envDefault:"activity_tracker:activity_tracker"`
		BasicClients       []ConfigBasicClient
	}

	RabbitMq struct {
		Enabled bool   `env:"RABBITMQ_ENABLED"`
		AmqpUri string `env:"RABBITMQ_URL"`

		NotificationsExchange  string `env:"RABBITMQ_NOTIFICATIONS_EXCHANGE" envDefault:"dingdongdog.notifications"`
		NotificationsKeyPrefix string `env:"RABBITMQ_NOTIFICATIONS_KEY_PREFIX" envDefault:"dingdongdog.notifications"`

		QueueConfig struct {
			ProfileQueueName      string `env:"RABBITMQ_PROFILE_QUEUE" envDefault:"activity-tracker.profiles"`
			ProfileQueueBind      string `env:"RABBITMQ_PROFILE_QUEUE_BIND" envDefault:"supabase.activity-tracker.profiles.*.*"`
			ProfileQueueExchange  string `env:"RABBITMQ_CACHE_EXCHANGE" envDefault:"supabase.events"`
			ScheduleQueueName     string `env:"RABBITMQ_SCHEDULE_QUEUE" envDefault:"activity-tracker.schedules"`
			ScheduleQueueBind     string `env:"RABBITMQ_SCHEDULE_QUEUE_BIND" envDefault:"supabase.activity-tracker.schedule*.*.*"`
			ScheduleQueueExchange string `env:"RABBITMQ_SCHEDULE_EXCHANGE" envDefault:"supabase.events"`
			ActivityQueueName     string `env:"RABBITMQ_ACTIVITY_QUEUE" envDefault:"activity-tracker.activities"`
			ActivityQueueBind     string `env:"RABBITMQ_ACTIVITY_QUEUE_BIND" envDefault:"supabase.activity-tracker.activities.*.*"`
			ActivityQueueExchange string `env:"RABBITMQ_ACTIVITY_EXCHANGE" envDefault:"supabase.events"`
			AllQueueName          string `env:"RABBITMQ_ALL_QUEUE" envDefault:"activity-tracker._all_"`
			AllQueueBind          string `env:"RABBITMQ_ALL_QUEUE_BIND" envDefault:"supabase.activity-tracker._all_.*.*"`
			AllQueueExchange      string `env:"RABBITMQ_ALL_EXCHANGE" envDefault:"supabase.events"`
		}
	}

	Cache struct {
		Enabled      bool `env:"CACHE_ENABLED"`
		SessionsSize int  `env:"CACHE_SESSIONS_SIZE" envDefault:"1000"`
	}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Приведение окружения к нижнему регистру для унификации
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))

	// Единая таймзона сессии, если не удалось загрузить - остается UTC
	if loc, err := time.LoadLocation(cfg.App.Timezone); err == nil {
		TimeZone = loc
	}

	// Разбор клиентов basic-авторизации
	if cfg.Auth.BasicClients == nil {
		cfg.Auth.BasicClients = []ConfigBasicClient{}
	}
	clientPairs := strings.Split(cfg.Auth.BasicClientsString, ",")
	for _, pair := range clientPairs {
		parts := strings.Split(pair, ":")
		if len(parts) == 2 {
			cfg.Auth.BasicClients = append(cfg.Auth.BasicClients, ConfigBasicClient{
				Username: parts[0],
				Password: parts[1],
			})
		}
	}

	// Инвалидация кэша приходит через RabbitMQ, без него кэш не включаем
	if !cfg.RabbitMq.Enabled {
		cfg.Cache.Enabled = false
	}

	return cfg, nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}
