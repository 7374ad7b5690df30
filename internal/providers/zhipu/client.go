// Package zhipu is the vendor client: request construction, retrying
// transport and response parsing for every supported endpoint.
package zhipu

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sandevgo/zhipukit/internal/config"
	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/parser"
	"github.com/sandevgo/zhipukit/pkg/log"
	"github.com/sandevgo/zhipukit/pkg/retry"
)

const apiPrefix = "/api/paas/v4"

// Models names the vendor model per operation.
type Models struct {
	Rerank     string
	Embedding  string
	Moderation string
	Search     string
	Tokenizer  string
	Speech     string
	ASR        string
	Image      string
	// Vision serves images and documents, VisionPlus video and comparisons.
	Vision     string
	VisionPlus string
}

func ModelsFromConfig(c *config.ZhipuConfig) Models {
	return Models{
		Rerank:     c.RerankModel,
		Embedding:  c.EmbeddingModel,
		Moderation: c.ModerationModel,
		Search:     c.SearchEngine,
		Tokenizer:  c.TokenizerModel,
		Speech:     c.SpeechModel,
		ASR:        c.ASRModel,
		Image:      c.ImageModel,
		Vision:     c.VisionModel,
		VisionPlus: c.VisionPlusModel,
	}
}

func DefaultModels() Models {
	return Models{
		Rerank:     "rerank",
		Embedding:  "embedding-3",
		Moderation: "moderation",
		Search:     "search_std",
		Tokenizer:  "glm-4-plus",
		Speech:     "cogtts",
		ASR:        "glm-asr",
		Image:      "cogview-4",
		Vision:     "glm-4v",
		VisionPlus: "glm-4v-plus",
	}
}

var _ core.Executor = (*Client)(nil)

type Client struct {
	sender     *RetryingSender
	credential core.Credential
	apiBase    string
	host       string
	models     Models
}

type clientOptions struct {
	sender  core.Sender
	sleeper retry.Sleeper
	models  *Models
}

type ClientOption func(*clientOptions)

// WithSender replaces the HTTP transport.
func WithSender(s core.Sender) ClientOption {
	return func(o *clientOptions) {
		o.sender = s
	}
}

func WithSleeper(s retry.Sleeper) ClientOption {
	return func(o *clientOptions) {
		o.sleeper = s
	}
}

func WithModels(m Models) ClientOption {
	return func(o *clientOptions) {
		o.models = &m
	}
}

func NewClient(cfg core.ClientConfig, opts ...ClientOption) (*Client, error) {
	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}

	apiBase, host, err := NormalizeBaseURL(cfg.GetBaseURL())
	if err != nil {
		return nil, err
	}

	sender := o.sender
	if sender == nil {
		sender = NewHTTPTransport(apiBase)
	}

	maxRetries := cfg.GetMaxRetries()
	if maxRetries < 0 {
		maxRetries = 0
	}
	retryCfg := retry.NewDefaultConfig()
	retryCfg.MaxAttempts = maxRetries + 1
	if d := cfg.GetRetryDelay(); d > 0 {
		retryCfg.InitialDelay = d
	}
	var retryOpts []retry.Option
	if o.sleeper != nil {
		retryOpts = append(retryOpts, retry.WithSleeper(o.sleeper))
	}

	models := DefaultModels()
	if o.models != nil {
		models = *o.models
	}

	return &Client{
		sender:     NewRetryingSender(sender, retry.NewRetrier(retryCfg, retryOpts...), cfg.GetTimeout()),
		credential: cfg.GetCredential(),
		apiBase:    apiBase,
		host:       host,
		models:     models,
	}, nil
}

// NormalizeBaseURL accepts a base URL with or without the /api/paas/v4
// suffix and returns the API base plus the bare host URL.
func NormalizeBaseURL(raw string) (apiBase, host string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = config.DefaultBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", "", fmt.Errorf("invalid base url %q", raw)
	}
	host = strings.TrimRight(raw, "/")
	host = strings.TrimSuffix(host, apiPrefix)
	return host + apiPrefix, host, nil
}

func (c *Client) Models() Models {
	return c.models
}

func (c *Client) BaseURL() string {
	return c.apiBase
}

// Execute runs spec and parses the body according to spec.Kind. Rerank
// items built by RerankSpec come back indexed by the caller's documents.
func (c *Client) Execute(ctx context.Context, spec core.RequestSpec) (any, error) {
	body, contentType, err := c.send(ctx, spec)
	if err != nil {
		return nil, err
	}
	opts := parser.Options{NInputs: -1, ContentType: contentType}
	req, isRerank := spec.Payload.(RerankRequest)
	if isRerank {
		opts.NInputs = len(req.Documents)
	}
	parsed, err := parser.Parse(spec.Kind, body, opts)
	if err != nil {
		return nil, err
	}
	if resp, ok := parsed.(*parser.RerankResponse); ok && isRerank {
		remapRerank(resp, req)
	}
	return parsed, nil
}

// remapRerank fills omitted documents and restores input positions.
func remapRerank(resp *parser.RerankResponse, req RerankRequest) {
	for i, item := range resp.Items {
		if item.Document == "" {
			resp.Items[i].Document = req.Documents[item.Index]
		}
		if req.kept != nil {
			resp.Items[i].Index = req.kept[item.Index]
		}
	}
}

func (c *Client) send(ctx context.Context, spec core.RequestSpec) ([]byte, string, error) {
	if err := spec.Validate(); err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("kind", spec.Kind.String()).Msg("invalid request spec")
		return nil, "", err
	}

	started := time.Now()
	attempt := c.sender.Execute(ctx, spec, c.credential)
	if err := attempt.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
			return nil, "", &core.Error{Kind: core.KindCanceled, Cause: ctxErr}
		}
		log.FromCtx(ctx).Warn().
			Err(err).
			Str("kind", spec.Kind.String()).
			Int("attempts", attempt.Number).
			Msg("vendor request failed")
		return nil, "", err
	}

	ok := attempt.Outcome.(core.Success)
	log.FromCtx(ctx).Debug().
		Str("kind", spec.Kind.String()).
		Int("attempts", attempt.Number).
		Dur("elapsed", time.Since(started)).
		Int("bytes", len(ok.Body)).
		Msg("vendor request succeeded")
	return ok.Body, ok.ContentType, nil
}
