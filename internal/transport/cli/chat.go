// Package cli runs an interactive agent conversation in the terminal.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/zhipukit/internal/service/agent"
	"github.com/sandevgo/zhipukit/pkg/log"
)

type Agent interface {
	Chat(ctx context.Context, agentID, message, conversationID string) (*agent.Reply, error)
}

// LineReader is the part of readline.Instance the loop needs.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

type Chat struct {
	agent          Agent
	agentID        string
	conversationID string
	rl             LineReader
	out            io.Writer
}

// NewChat opens a readline prompt with history kept under runtimePath.
func NewChat(a Agent, agentID, runtimePath string) (*Chat, error) {
	if err := os.MkdirAll(runtimePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(runtimePath, "chat_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return NewChatWithReader(a, agentID, rl, rl.Stdout()), nil
}

func NewChatWithReader(a Agent, agentID string, rl LineReader, out io.Writer) *Chat {
	return &Chat{agent: a, agentID: agentID, rl: rl, out: out}
}

// ConversationID is the conversation the session is continuing, if any.
func (c *Chat) ConversationID() string {
	return c.conversationID
}

// Start reads messages until exit, EOF or an empty ctrl+c. A failed turn is
// printed and the session continues.
func (c *Chat) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Debug().Str("agent_id", c.agentID).Msg("chat started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "/new":
			c.conversationID = ""
			fmt.Fprintln(c.out, "[new conversation]")
			continue
		}

		reply, err := c.agent.Chat(ctx, c.agentID, line, c.conversationID)
		if err != nil {
			logger.Error().Err(err).Msg("agent chat failed")
			fmt.Fprintf(c.out, "Error: %v\n", err)
			continue
		}
		c.conversationID = reply.ConversationID
		fmt.Fprintln(c.out, reply.Text)
	}
}

func (c *Chat) Shutdown(ctx context.Context) error {
	if c.rl != nil {
		return c.rl.Close()
	}
	return nil
}
