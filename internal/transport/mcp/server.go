// Package mcp serves the service tools over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/pkg/log"
)

type Server struct {
	mcp   *server.MCPServer
	names []string
}

// NewServer registers every tool of every provider. Duplicate names are an error.
func NewServer(providers ...core.ToolProvider) (*Server, error) {
	s := &Server{
		mcp: server.NewMCPServer(core.AppName, core.AppVersion,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	seen := make(map[string]struct{})
	for _, p := range providers {
		for name, def := range p.GetDefinitions() {
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("duplicate tool %q", name)
			}
			seen[name] = struct{}{}
			s.mcp.AddTool(mcp.NewToolWithRawSchema(name, def.Description, json.RawMessage(def.Schema)), handle(name, def.Handler))
			s.names = append(s.names, name)
		}
	}
	sort.Strings(s.names)
	return s, nil
}

// Tools lists the registered tool names in order.
func (s *Server) Tools() []string {
	return s.names
}

// HandleMessage processes one JSON-RPC message.
func (s *Server) HandleMessage(ctx context.Context, msg json.RawMessage) mcp.JSONRPCMessage {
	return s.mcp.HandleMessage(ctx, msg)
}

// Serve speaks MCP on in/out until ctx is done or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	logger := log.FromCtx(ctx)
	logger.Info().Int("tools", len(s.names)).Msg("mcp server listening on stdio")

	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.NewStdLogger(ctx))
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

func handle(name string, h core.ToolHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := log.FromCtx(ctx)

		args, err := json.Marshal(req.GetRawArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		logger.Debug().Str("tool", name).Msg("calling tool")
		out, err := h(ctx, args)
		if err != nil {
			logger.Warn().Err(err).Str("tool", name).Str("error_kind", string(core.KindOf(err))).Msg("tool failed")
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}
