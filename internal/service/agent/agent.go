// Package agent talks to hosted vendor agents.
package agent

import (
	"context"
	"strings"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/parser"
	"github.com/sandevgo/zhipukit/internal/providers/zhipu"
	"github.com/sandevgo/zhipukit/pkg/conv"
	"github.com/sandevgo/zhipukit/pkg/log"
)

type Client interface {
	AgentChat(ctx context.Context, p zhipu.AgentParams) (*parser.AgentResponse, error)
}

// Reply is the assistant answer in raw markdown and sanitized HTML.
type Reply struct {
	AgentID        string          `json:"agent_id"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Status         string          `json:"status,omitempty"`
	Text           string          `json:"text"`
	HTML           string          `json:"html"`
	Usage          core.UsageStats `json:"usage"`
	RequestID      string          `json:"request_id,omitempty"`
}

type Agent struct {
	client         Client
	defaultAgentID string
}

func NewAgent(client Client, defaultAgentID string) *Agent {
	return &Agent{
		client:         client,
		defaultAgentID: defaultAgentID,
	}
}

// Chat sends one user message. Pass the returned ConversationID back to
// continue the same conversation.
func (a *Agent) Chat(ctx context.Context, agentID, message, conversationID string) (*Reply, error) {
	return a.send(ctx, zhipu.AgentParams{AgentID: agentID, Message: message, ConversationID: conversationID})
}

// ChatFile asks about a file uploaded to the vendor beforehand. message
// may be empty.
func (a *Agent) ChatFile(ctx context.Context, agentID, fileID, message, conversationID string) (*Reply, error) {
	return a.send(ctx, zhipu.AgentParams{AgentID: agentID, FileID: fileID, Message: message, ConversationID: conversationID})
}

func (a *Agent) send(ctx context.Context, p zhipu.AgentParams) (*Reply, error) {
	logger := log.FromCtx(ctx)

	if strings.TrimSpace(p.AgentID) == "" {
		p.AgentID = a.defaultAgentID
	}
	agentID, conversationID := p.AgentID, p.ConversationID

	resp, err := a.client.AgentChat(ctx, p)
	if err != nil {
		return nil, err
	}

	text := resp.AssistantMessage()
	if text == "" {
		logger.Warn().Str("agent_id", agentID).Str("status", resp.Status).Msg("agent returned no assistant message")
	}

	convID := resp.ConversationID
	if convID == "" {
		convID = conversationID
	}

	logger.Debug().
		Str("agent_id", agentID).
		Str("conversation_id", convID).
		Int("reply_len", len(text)).
		Msg("agent replied")

	return &Reply{
		AgentID:        agentID,
		ConversationID: convID,
		Status:         resp.Status,
		Text:           text,
		HTML:           conv.MarkdownToHTML([]byte(text)),
		Usage:          resp.Usage,
		RequestID:      resp.RequestID,
	}, nil
}
