package parser

import (
	"encoding/json"

	"github.com/sandevgo/zhipukit/internal/core"
)

// ChatCompletion is the first choice of a chat completion response.
type ChatCompletion struct {
	core.Envelope
	Model        string `json:"model,omitempty"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
}

func ParseChatCompletion(body []byte) (*ChatCompletion, error) {
	var raw struct {
		envelope
		Model   string `json:"model"`
		Choices *[]struct {
			FinishReason string `json:"finish_reason"`
			Message      *struct {
				Content json.RawMessage `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := decode(body, &raw); err != nil {
		return nil, err
	}
	if raw.Choices == nil || len(*raw.Choices) == 0 {
		return nil, missing("choices")
	}
	first := (*raw.Choices)[0]
	if first.Message == nil {
		return nil, missing("choices[0].message")
	}
	return &ChatCompletion{
		Envelope:     raw.envelope.core(),
		Model:        raw.Model,
		Content:      AgentMessage{Content: first.Message.Content}.Text(),
		FinishReason: first.FinishReason,
	}, nil
}
