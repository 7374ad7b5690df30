package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/zhipukit/pkg/log"
)

type BatchConfig struct {
	Concurrency int           `env:"ZHIPU_BATCH_CONCURRENCY" envDefault:"1"`
	Delay       time.Duration `env:"ZHIPU_BATCH_DELAY" envDefault:"0s"`
}

func NewBatchConfig(ctx context.Context) *BatchConfig {
	c := &BatchConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Batch config")
	}
	return c
}

func (c BatchConfig) GetConcurrency() int {
	return c.Concurrency
}

func (c BatchConfig) GetDelay() time.Duration {
	return c.Delay
}
