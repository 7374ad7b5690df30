package parser

import (
	"encoding/json"
	"strings"

	"github.com/sandevgo/zhipukit/internal/core"
)

type AgentMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// Text flattens string content or a list of {type,text} parts.
func (m AgentMessage) Text() string {
	if len(m.Content) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(m.Content, &s); err == nil {
		return s
	}

	var part struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(m.Content, &part); err == nil && part.Text != "" {
		return part.Text
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(m.Content, &parts); err != nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range parts {
		if p.Text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}

type AgentChoice struct {
	Index        int            `json:"index"`
	FinishReason string         `json:"finish_reason,omitempty"`
	Messages     []AgentMessage `json:"messages"`
}

type AgentResponse struct {
	core.Envelope
	AgentID        string        `json:"agent_id,omitempty"`
	ConversationID string        `json:"conversation_id,omitempty"`
	Status         string        `json:"status,omitempty"`
	Choices        []AgentChoice `json:"choices"`
}

// AssistantMessage returns the first assistant reply of the first choice.
func (r AgentResponse) AssistantMessage() string {
	if len(r.Choices) == 0 {
		return ""
	}
	for _, m := range r.Choices[0].Messages {
		if m.Role == "assistant" {
			return m.Text()
		}
	}
	return ""
}

func ParseAgentChat(body []byte) (*AgentResponse, error) {
	var raw struct {
		envelope
		AgentID        string         `json:"agent_id"`
		ConversationID string         `json:"conversation_id"`
		Status         string         `json:"status"`
		Choices        *[]AgentChoice `json:"choices"`
	}
	if err := decode(body, &raw); err != nil {
		return nil, err
	}
	if raw.Choices == nil {
		return nil, missing("choices")
	}
	return &AgentResponse{
		Envelope:       raw.envelope.core(),
		AgentID:        raw.AgentID,
		ConversationID: raw.ConversationID,
		Status:         raw.Status,
		Choices:        *raw.Choices,
	}, nil
}
