package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App      App      `yaml:"app"`
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Kafka    Kafka    `yaml:"kafka"`
	Blob     Blob     `yaml:"blob"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME" env-default:"order-ingest"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type HTTP struct {
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-required:"true"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-required:"true"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-required:"true"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-required:"true"`
}

// Redis is optional: with an empty Addr the read cache and the idempotency
// middleware are disabled.
type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR"`
}

type Kafka struct {
	Brokers     []string `yaml:"brokers" env:"KAFKA_BROKERS" env-required:"true"`
	Topic       string   `yaml:"topic" env:"KAFKA_TOPIC" env-required:"true"`
	GroupID     string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"order-ingest"`
	DLQTopic    string   `yaml:"dlq_topic" env:"KAFKA_DLQ_TOPIC"`
	StartOffset string   `yaml:"start_offset" env:"KAFKA_START_OFFSET" env-default:"earliest"`
	MetricsPort string   `yaml:"metrics_port" env:"METRICS_PORT" env-default:"9091"`
}

type Blob struct {
	Endpoint  string `yaml:"endpoint" env:"BLOB_ENDPOINT" env-required:"true"`
	AccessKey string `yaml:"access_key" env:"BLOB_ACCESS_KEY" env-required:"true"`
	SecretKey string `yaml:"secret_key" env:"BLOB_SECRET_KEY" env-required:"true"`
	Bucket    string `yaml:"bucket" env:"BLOB_BUCKET" env-default:"order-requests"`
	UseSSL    bool   `yaml:"use_ssl" env:"BLOB_USE_SSL" env-default:"false"`
}

// DLQ returns the dead-letter topic, derived from the main topic unless set
// explicitly.
func (k Kafka) DLQ() string {
	if k.DLQTopic != "" {
		return k.DLQTopic
	}
	return k.Topic + ".dlq"
}

func New() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// fallback to env vars if file not found
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		// Allow env vars to override config file
		cleanenv.ReadEnv(cfg)
	}

	return cfg, nil
}
