package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_DSN,required=true"`
	RabbitMQURL string `env:"RABBITMQ_URL,required=true"`
	RedisURL    string `env:"REDIS_URL,required=true"`

	APIPort  int    `env:"API_PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	IngestConcurrency int `env:"INGEST_CONCURRENCY,default=8"`
	IngestPrefetch    int `env:"INGEST_PREFETCH,default=32"`

	RedeliveryIntervalSec int `env:"REDELIVERY_INTERVAL_SEC,default=15"`
	RedeliveryBatch       int `env:"REDELIVERY_BATCH,default=50"`
	RedeliveryRatePerSec  int `env:"REDELIVERY_RATE_PER_SEC,default=10"`

	CacheTTLSec int `env:"CACHE_TTL_SEC,default=300"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
