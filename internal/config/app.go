package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/zhipukit/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"ZHIPU_RUNTIME_PATH"`
	HTTPAddr    string `env:"ZHIPU_HTTP_ADDR" envDefault:":8080"`

	// Local guard applied before documents are sent for reranking.
	MaxDocumentTokens int `env:"ZHIPU_MAX_DOCUMENT_TOKENS" envDefault:"4096"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	if c.RuntimePath == "" {
		c.RuntimePath = GetRuntimePath()
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "zhipukit.db")
}

func (c AppConfig) GetOutputsPath() string {
	return filepath.Join(c.RuntimePath, "outputs")
}

func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}

func (c AppConfig) GetHTTPAddr() string {
	return c.HTTPAddr
}
