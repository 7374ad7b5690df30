package agent

import (
	"context"
	"encoding/json"

	"github.com/sandevgo/zhipukit/internal/core"
)

const agentChatSchema = `
{
  "type": "object",
  "properties": {
    "agent_id": { "type": "string", "description": "Agent to talk to; the configured default is used when empty" },
    "message": { "type": "string", "description": "User message, optional when file_id is set" },
    "file_id": { "type": "string", "description": "Id of a file uploaded to the vendor" },
    "conversation_id": { "type": "string", "description": "Continue an existing conversation" }
  },
  "anyOf": [{ "required": ["message"] }, { "required": ["file_id"] }]
}
`

type chatInput struct {
	AgentID        string `json:"agent_id"`
	Message        string `json:"message" validate:"required_without=FileID"`
	FileID         string `json:"file_id"`
	ConversationID string `json:"conversation_id"`
}

func (a *Agent) chatTool(ctx context.Context, args json.RawMessage) (string, error) {
	var in chatInput
	if err := core.DecodeArgs(args, &in); err != nil {
		return "", err
	}
	reply, err := a.ChatFile(ctx, in.AgentID, in.FileID, in.Message, in.ConversationID)
	if err != nil {
		return "", err
	}
	return core.ToolJSON(reply)
}

func (a *Agent) GetDefinitions() map[string]core.ToolDefinition {
	return map[string]core.ToolDefinition{
		"agent_chat": {Description: "Send a message to a hosted agent and return its reply", Schema: agentChatSchema, Handler: a.chatTool},
	}
}
