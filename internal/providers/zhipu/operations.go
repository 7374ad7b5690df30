package zhipu

import (
	"context"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/parser"
)

// Rerank scores docs against query. Item indices refer to docs, including
// any blank documents that were not sent.
func (c *Client) Rerank(ctx context.Context, query string, docs []string, topN int) (*parser.RerankResponse, error) {
	spec, _, err := c.RerankSpec(query, docs, topN)
	if err != nil {
		return nil, err
	}
	return execute[*parser.RerankResponse](ctx, c, spec)
}

// execute runs spec through Execute and asserts the parsed type.
func execute[T any](ctx context.Context, c *Client, spec core.RequestSpec) (T, error) {
	var zero T
	parsed, err := c.Execute(ctx, spec)
	if err != nil {
		return zero, err
	}
	v, ok := parsed.(T)
	if !ok {
		return zero, core.NewError(core.KindInconsistent, "%s parsed into %T", spec.Kind, parsed)
	}
	return v, nil
}

func (c *Client) Embed(ctx context.Context, inputs []string) (*parser.EmbeddingResponse, error) {
	spec, err := c.EmbedSpec(inputs)
	if err != nil {
		return nil, err
	}
	return execute[*parser.EmbeddingResponse](ctx, c, spec)
}

func (c *Client) Moderate(ctx context.Context, text string) (*parser.ModerationVerdict, error) {
	spec, err := c.ModerateSpec(text)
	if err != nil {
		return nil, err
	}
	return execute[*parser.ModerationVerdict](ctx, c, spec)
}

func (c *Client) Tokenize(ctx context.Context, messages []Message) (*parser.TokenizeResponse, error) {
	spec, err := c.TokenizeSpec(messages)
	if err != nil {
		return nil, err
	}
	return execute[*parser.TokenizeResponse](ctx, c, spec)
}

func (c *Client) Search(ctx context.Context, p SearchParams) (*parser.SearchResponse, error) {
	spec, err := c.SearchSpec(p)
	if err != nil {
		return nil, err
	}
	return execute[*parser.SearchResponse](ctx, c, spec)
}

func (c *Client) GenerateImage(ctx context.Context, p ImageParams) (*parser.ImageResponse, error) {
	spec, err := c.ImageSpec(p)
	if err != nil {
		return nil, err
	}
	return execute[*parser.ImageResponse](ctx, c, spec)
}

func (c *Client) Synthesize(ctx context.Context, p SpeechParams) (*parser.Speech, error) {
	spec, err := c.SpeechSpec(p)
	if err != nil {
		return nil, err
	}
	return execute[*parser.Speech](ctx, c, spec)
}

func (c *Client) Transcribe(ctx context.Context, p TranscribeParams) (*parser.Transcription, error) {
	spec, err := c.TranscribeSpec(p)
	if err != nil {
		return nil, err
	}
	return execute[*parser.Transcription](ctx, c, spec)
}

func (c *Client) AgentChat(ctx context.Context, p AgentParams) (*parser.AgentResponse, error) {
	spec, err := c.AgentSpec(p)
	if err != nil {
		return nil, err
	}
	return execute[*parser.AgentResponse](ctx, c, spec)
}

// Vision runs one multimodal chat completion.
func (c *Client) Vision(ctx context.Context, p VisionParams) (*parser.ChatCompletion, error) {
	spec, err := c.VisionSpec(p)
	if err != nil {
		return nil, err
	}
	return execute[*parser.ChatCompletion](ctx, c, spec)
}
