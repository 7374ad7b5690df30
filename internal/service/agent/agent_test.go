package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/parser"
	"github.com/sandevgo/zhipukit/internal/providers/zhipu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	body string
	last zhipu.AgentParams
}

func (f *fakeClient) AgentChat(ctx context.Context, p zhipu.AgentParams) (*parser.AgentResponse, error) {
	f.last = p
	if p.AgentID == "" {
		return nil, core.NewError(core.KindEmptyInput, "agent id is empty")
	}
	return parser.ParseAgentChat([]byte(f.body))
}

const replyBody = `{
  "agent_id": "translator",
  "conversation_id": "conv-9",
  "status": "success",
  "request_id": "req-3",
  "choices": [{"index": 0, "messages": [{"role": "assistant", "content": {"type": "text", "text": "Hello **world**"}}]}]
}`

func TestAgent_Chat(t *testing.T) {
	client := &fakeClient{body: replyBody}
	a := NewAgent(client, "translator")

	reply, err := a.Chat(context.Background(), "", "你好", "")
	require.NoError(t, err)

	assert.Equal(t, "translator", client.last.AgentID)
	assert.Equal(t, "你好", client.last.Message)
	assert.Equal(t, "conv-9", reply.ConversationID)
	assert.Equal(t, "Hello **world**", reply.Text)
	assert.Contains(t, reply.HTML, "<strong>world</strong>")
	assert.Equal(t, "req-3", reply.RequestID)
}

func TestAgent_ChatKeepsConversation(t *testing.T) {
	client := &fakeClient{body: `{"choices":[{"messages":[{"role":"assistant","content":"ok"}]}]}`}
	a := NewAgent(client, "")

	reply, err := a.Chat(context.Background(), "helper", "again", "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", client.last.ConversationID)
	assert.Equal(t, "conv-1", reply.ConversationID)
	assert.Equal(t, "ok", reply.Text)
}

func TestAgent_ChatWithoutAgent(t *testing.T) {
	a := NewAgent(&fakeClient{body: replyBody}, "")

	_, err := a.Chat(context.Background(), "  ", "hi", "")
	assert.Equal(t, core.KindEmptyInput, core.KindOf(err))
}

func TestAgent_Tool(t *testing.T) {
	a := NewAgent(&fakeClient{body: replyBody}, "translator")
	def, ok := a.GetDefinitions()["agent_chat"]
	require.True(t, ok)

	out, err := def.Handler(context.Background(), json.RawMessage(`{"message":"hi"}`))
	require.NoError(t, err)

	var reply Reply
	require.NoError(t, json.Unmarshal([]byte(out), &reply))
	assert.Equal(t, "Hello **world**", reply.Text)
	assert.Equal(t, "translator", reply.AgentID)
}

func TestAgent_ChatFile(t *testing.T) {
	client := &fakeClient{body: replyBody}
	a := NewAgent(client, "translator")

	reply, err := a.ChatFile(context.Background(), "", "file-7", "", "conv-9")
	require.NoError(t, err)
	assert.Equal(t, zhipu.AgentParams{AgentID: "translator", FileID: "file-7", ConversationID: "conv-9"}, client.last)
	assert.Equal(t, "Hello **world**", reply.Text)
}

func TestAgent_ToolFileID(t *testing.T) {
	client := &fakeClient{body: replyBody}
	def := NewAgent(client, "translator").GetDefinitions()["agent_chat"]

	_, err := def.Handler(context.Background(), json.RawMessage(`{"file_id":"file-7"}`))
	require.NoError(t, err)
	assert.Equal(t, "file-7", client.last.FileID)

	_, err = def.Handler(context.Background(), json.RawMessage(`{"conversation_id":"c"}`))
	assert.Equal(t, core.KindEmptyInput, core.KindOf(err))
}
