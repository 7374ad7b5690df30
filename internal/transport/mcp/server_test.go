package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoTools struct{}

func (echoTools) GetDefinitions() map[string]core.ToolDefinition {
	return map[string]core.ToolDefinition{
		"echo": {
			Description: "Echo the text argument",
			Schema:      `{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`,
			Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
				var in struct {
					Text string `json:"text"`
				}
				if err := core.DecodeArgs(args, &in); err != nil {
					return "", err
				}
				if in.Text == "" {
					return "", core.NewError(core.KindEmptyInput, "text is empty")
				}
				return in.Text, nil
			},
		},
		"fail": {
			Description: "Always fails",
			Schema:      `{"type":"object","properties":{}}`,
			Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
				return "", errors.New("boom")
			},
		},
	}
}

type dupTools struct{}

func (dupTools) GetDefinitions() map[string]core.ToolDefinition {
	return map[string]core.ToolDefinition{"echo": {Description: "dup", Schema: `{"type":"object"}`}}
}

func call(t *testing.T, s *Server, method string, params any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": params})
	require.NoError(t, err)

	resp := s.HandleMessage(context.Background(), raw)
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestNewServer_RegistersTools(t *testing.T) {
	s, err := NewServer(echoTools{})
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "fail"}, s.Tools())

	out := call(t, s, "tools/list", map[string]any{})
	result := out["result"].(map[string]any)
	tools := result["tools"].([]any)
	require.Len(t, tools, 2)

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{"echo", "fail"}, names)
}

func TestNewServer_Duplicate(t *testing.T) {
	_, err := NewServer(echoTools{}, dupTools{})
	assert.ErrorContains(t, err, `duplicate tool "echo"`)
}

func TestServer_CallTool(t *testing.T) {
	s, err := NewServer(echoTools{})
	require.NoError(t, err)

	tests := []struct {
		name    string
		tool    string
		args    map[string]any
		isError bool
		text    string
	}{
		{name: "success", tool: "echo", args: map[string]any{"text": "你好"}, text: "你好"},
		{name: "validation error", tool: "echo", args: map[string]any{}, isError: true, text: "validation.empty-input: text is empty"},
		{name: "plain error", tool: "fail", args: map[string]any{}, isError: true, text: "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := call(t, s, "tools/call", map[string]any{"name": tt.tool, "arguments": tt.args})
			result := out["result"].(map[string]any)

			isError, _ := result["isError"].(bool)
			assert.Equal(t, tt.isError, isError)

			content := result["content"].([]any)
			require.Len(t, content, 1)
			assert.Equal(t, tt.text, content[0].(map[string]any)["text"])
		})
	}
}
