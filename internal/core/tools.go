package core

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
)

// ToolHandler receives raw JSON arguments and returns a JSON or text result.
type ToolHandler func(ctx context.Context, args json.RawMessage) (string, error)

// ToolDefinition is one callable operation shared by the MCP server and the
// HTTP API.
type ToolDefinition struct {
	Description string
	Schema      string
	Handler     ToolHandler
}

// ToolProvider is implemented by every service that exposes tools.
type ToolProvider interface {
	GetDefinitions() map[string]ToolDefinition
}

// DecodeArgs unmarshals tool arguments into v and checks v's validate
// tags when v points to a struct. Empty args decode as {}.
func DecodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &Error{Kind: KindInvalidArgument, Detail: "invalid arguments", Cause: err}
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.Elem().Kind() == reflect.Struct {
		return Validate(v)
	}
	return nil
}

// ToolJSON renders a tool result as indented JSON.
func ToolJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}
