package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/zhipukit/internal/core"
)

const DefaultBaseURL = "https://open.bigmodel.cn/api/paas/v4"

type ZhipuConfig struct {
	APIKey     string        `env:"ZHIPU_API_KEY,required,notEmpty"`
	BaseURL    string        `env:"ZHIPU_BASE_URL" envDefault:"https://open.bigmodel.cn/api/paas/v4"`
	Timeout    time.Duration `env:"ZHIPU_TIMEOUT" envDefault:"30s"`
	MaxRetries int           `env:"ZHIPU_MAX_RETRIES" envDefault:"2"`
	RetryDelay time.Duration `env:"ZHIPU_RETRY_DELAY" envDefault:"1s"`

	RerankModel     string `env:"ZHIPU_RERANK_MODEL" envDefault:"rerank"`
	EmbeddingModel  string `env:"ZHIPU_EMBEDDING_MODEL" envDefault:"embedding-3"`
	ModerationModel string `env:"ZHIPU_MODERATION_MODEL" envDefault:"moderation"`
	SearchEngine    string `env:"ZHIPU_SEARCH_ENGINE" envDefault:"search_std"`
	TokenizerModel  string `env:"ZHIPU_TOKENIZER_MODEL" envDefault:"glm-4-plus"`
	SpeechModel     string `env:"ZHIPU_TTS_MODEL" envDefault:"cogtts"`
	ASRModel        string `env:"ZHIPU_ASR_MODEL" envDefault:"glm-asr"`
	ImageModel      string `env:"ZHIPU_IMAGE_MODEL" envDefault:"cogview-4"`
	VisionModel     string `env:"ZHIPU_VISION_MODEL" envDefault:"glm-4v"`
	VisionPlusModel string `env:"ZHIPU_VISION_PLUS_MODEL" envDefault:"glm-4v-plus"`

	// AgentID is used when a chat names no agent.
	AgentID string `env:"ZHIPU_AGENT_ID"`
}

var _ core.ClientConfig = (*ZhipuConfig)(nil)

// ParseZhipuConfig returns the error instead of exiting so commands that
// never call the vendor can run without a key.
func ParseZhipuConfig() (*ZhipuConfig, error) {
	c := &ZhipuConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c ZhipuConfig) GetCredential() core.Credential {
	return core.Credential(c.APIKey)
}

func (c ZhipuConfig) GetBaseURL() string {
	return c.BaseURL
}

func (c ZhipuConfig) GetTimeout() time.Duration {
	return c.Timeout
}

// GetMaxRetries is the number of retries after the first attempt.
func (c ZhipuConfig) GetMaxRetries() int {
	return c.MaxRetries
}

func (c ZhipuConfig) GetRetryDelay() time.Duration {
	return c.RetryDelay
}
