package parser

import (
	"errors"
	"testing"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRerank(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		nInputs  int
		wantKind core.ErrorKind
		wantLen  int
	}{
		{
			name:    "valid response",
			body:    `{"id":"r1","created":1700000000,"request_id":"q1","results":[{"index":1,"relevance_score":0.9,"document":"b"},{"index":0,"relevance_score":0.2,"document":{"text":"a"}}],"usage":{"prompt_tokens":10,"total_tokens":10}}`,
			nInputs: 2,
			wantLen: 2,
		},
		{
			name:    "unknown fields are ignored",
			body:    `{"results":[{"index":0,"relevance_score":0.5,"extra":true}],"brand_new":{"x":1}}`,
			nInputs: 1,
			wantLen: 1,
		},
		{
			name:    "empty results list",
			body:    `{"results":[]}`,
			nInputs: 3,
			wantLen: 0,
		},
		{
			name:     "malformed body",
			body:     `{"results":[`,
			nInputs:  1,
			wantKind: core.KindMalformed,
		},
		{
			name:     "empty body",
			body:     ``,
			nInputs:  1,
			wantKind: core.KindMalformed,
		},
		{
			name:     "missing results",
			body:     `{"id":"x"}`,
			nInputs:  1,
			wantKind: core.KindMissingField,
		},
		{
			name:     "missing score",
			body:     `{"results":[{"index":0}]}`,
			nInputs:  1,
			wantKind: core.KindMissingField,
		},
		{
			name:     "missing index",
			body:     `{"results":[{"relevance_score":0.3}]}`,
			nInputs:  1,
			wantKind: core.KindMissingField,
		},
		{
			name:     "score is not a number",
			body:     `{"results":[{"index":0,"relevance_score":"high"}]}`,
			nInputs:  1,
			wantKind: core.KindInconsistent,
		},
		{
			name:     "score above one",
			body:     `{"results":[{"index":0,"relevance_score":1.5}]}`,
			nInputs:  1,
			wantKind: core.KindInconsistent,
		},
		{
			name:     "index out of range",
			body:     `{"results":[{"index":2,"relevance_score":0.1}]}`,
			nInputs:  2,
			wantKind: core.KindInconsistent,
		},
		{
			name:     "duplicate index",
			body:     `{"results":[{"index":0,"relevance_score":0.1},{"index":0,"relevance_score":0.2}]}`,
			nInputs:  2,
			wantKind: core.KindInconsistent,
		},
		{
			name:    "bounds check disabled",
			body:    `{"results":[{"index":7,"relevance_score":0.1}]}`,
			nInputs: -1,
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseRerank([]byte(tt.body), tt.nInputs)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, core.KindOf(err))
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.Len(t, resp.Items, tt.wantLen)
		})
	}
}

func TestParseRerank_Fields(t *testing.T) {
	body := `{"id":"r1","created":1700000000,"request_id":"q1","results":[{"index":1,"relevance_score":0.9,"document":"b"},{"index":0,"relevance_score":0.2,"document":{"text":"a"}}],"usage":{"prompt_tokens":10,"total_tokens":12,"search_units":1}}`

	resp, err := ParseRerank([]byte(body), 2)
	require.NoError(t, err)

	assert.Equal(t, "r1", resp.ID)
	assert.Equal(t, "q1", resp.RequestID)
	assert.Equal(t, int64(1700000000), resp.Created)
	assert.Equal(t, 10, resp.Usage.PromptTokens)
	assert.Equal(t, 12, resp.Usage.TotalTokens)
	assert.Equal(t, float64(1), resp.Usage.Extra["search_units"])

	// vendor order is preserved
	assert.Equal(t, []core.ScoredItem{
		{Index: 1, Document: "b", Score: 0.9},
		{Index: 0, Document: "a", Score: 0.2},
	}, resp.Items)
}

func TestParseModeration(t *testing.T) {
	body := `{"id":"m1","result_list":[
		{"content_type":"text","risk_level":"medium","risk_type":["porn"]},
		{"content_type":"text","risk_level":"high","risk_type":["violence","porn"]},
		{"content_type":"text","risk_level":"low","risk_type":[]}
	]}`

	verdict, err := ParseModeration([]byte(body))
	require.NoError(t, err)
	require.Len(t, verdict.Results, 3)
	assert.False(t, verdict.Safe())

	summary := verdict.Summary()
	assert.True(t, summary.Flagged)
	assert.Equal(t, 2, summary.RiskCount)
	assert.Equal(t, RiskHigh, summary.HighestLevel)
	assert.Equal(t, []string{"porn", "violence"}, summary.RiskTypes)
	assert.Len(t, summary.Details, 2)
}

func TestParseModeration_MediumOnlyStaysSafe(t *testing.T) {
	body := `{"result_list":[{"content_type":"text","risk_level":"中","risk_type":"politics"}]}`

	verdict, err := ParseModeration([]byte(body))
	require.NoError(t, err)
	assert.True(t, verdict.Safe())

	summary := verdict.Summary()
	assert.True(t, summary.Flagged)
	assert.Equal(t, RiskMedium, summary.HighestLevel)
	assert.Equal(t, []string{"politics"}, summary.RiskTypes)
}

func TestParseModeration_Errors(t *testing.T) {
	_, err := ParseModeration([]byte(`{"result_list":[{"content_type":"text"}]}`))
	assert.True(t, errors.Is(err, core.ErrMissingField))

	_, err = ParseModeration([]byte(`{}`))
	assert.True(t, errors.Is(err, core.ErrMissingField))

	_, err = ParseModeration([]byte(`not json`))
	assert.True(t, errors.Is(err, core.ErrMalformed))
}

func TestParseSearch(t *testing.T) {
	body := `{"id":"s1","search_intent":[{"query":"go","intent":"SEARCH_ALL","keywords":"go"}],
		"search_result":[
			{"title":"A","content":"first","link":"https://a"},
			{"title":"B","content":"","link":"https://b"}
		]}`

	resp, err := ParseSearch([]byte(body))
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	require.Len(t, resp.Intents, 1)
	assert.Equal(t, []core.ScoredItem{
		{Index: 0, Document: "first", Score: 1},
		{Index: 1, Document: "B", Score: 0.5},
	}, resp.Items)

	_, err = ParseSearch([]byte(`{"id":"s1"}`))
	assert.Equal(t, core.KindMissingField, core.KindOf(err))
}

func TestParseEmbedding(t *testing.T) {
	body := `{"model":"embedding-3","data":[{"index":1,"embedding":[0.3,0.4]},{"index":0,"embedding":[0.1,0.2]}],"usage":{"prompt_tokens":4}}`

	resp, err := ParseEmbedding([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.1, 0.2}, {0.3, 0.4}}, resp.Vectors)
	assert.Equal(t, 2, resp.Dimensions())
	assert.Equal(t, 4, resp.Usage.PromptTokens)

	_, err = ParseEmbedding([]byte(`{"data":[{"index":0,"embedding":[1]},{"index":0,"embedding":[2]}]}`))
	assert.Equal(t, core.KindInconsistent, core.KindOf(err))

	_, err = ParseEmbedding([]byte(`{"data":[{"index":0}]}`))
	assert.Equal(t, core.KindMissingField, core.KindOf(err))
}

func TestParseAgentChat(t *testing.T) {
	body := `{"conversation_id":"c1","choices":[{"index":0,"messages":[
		{"role":"user","content":"hi"},
		{"role":"assistant","content":[{"type":"text","text":"hello"},{"type":"text","text":"there"}]}
	]}]}`

	resp, err := ParseAgentChat([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "c1", resp.ConversationID)
	assert.Equal(t, "hello\nthere", resp.AssistantMessage())

	resp, err = ParseAgentChat([]byte(`{"choices":[{"messages":[{"role":"assistant","content":"plain"}]}]}`))
	require.NoError(t, err)
	assert.Equal(t, "plain", resp.AssistantMessage())

	resp, err = ParseAgentChat([]byte(`{"choices":[]}`))
	require.NoError(t, err)
	assert.Empty(t, resp.AssistantMessage())

	_, err = ParseAgentChat([]byte(`{}`))
	assert.Equal(t, core.KindMissingField, core.KindOf(err))
}

func TestParseImage(t *testing.T) {
	resp, err := ParseImage([]byte(`{"created":1755397896,"data":[{"url":"https://aigc-files.example/a.png"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://aigc-files.example/a.png"}, resp.URLs)

	_, err = ParseImage([]byte(`{"data":[]}`))
	assert.Equal(t, core.KindMissingField, core.KindOf(err))
}

func TestParseTokenize(t *testing.T) {
	resp, err := ParseTokenize([]byte(`{"id":"t1","usage":{"prompt_tokens":42}}`))
	require.NoError(t, err)
	assert.Equal(t, 42, resp.PromptTokens())
	assert.Equal(t, "t1", resp.ID)

	_, err = ParseTokenize([]byte(`{"usage":{}}`))
	assert.Equal(t, core.KindMissingField, core.KindOf(err))
}

func TestParseTranscription(t *testing.T) {
	resp, err := ParseTranscription([]byte(`{"text":"你好","language":"zh","segments":[{"id":0,"start":0,"end":1.2,"text":"你好"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "你好", resp.Text)
	assert.Len(t, resp.Segments, 1)

	_, err = ParseTranscription([]byte(`{"language":"zh"}`))
	assert.Equal(t, core.KindMissingField, core.KindOf(err))
}

func TestParseSpeech(t *testing.T) {
	speech, err := ParseSpeech([]byte("RIFF...."), "audio/wav")
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", speech.ContentType)

	_, err = ParseSpeech(nil, "audio/wav")
	assert.Equal(t, core.KindMissingField, core.KindOf(err))

	_, err = ParseSpeech([]byte(`{"error":{"code":"1214","message":"bad voice"}}`), "application/json")
	assert.Equal(t, core.KindInconsistent, core.KindOf(err))
}

func TestParseChatCompletion(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantKind    core.ErrorKind
		wantContent string
	}{
		{
			name:        "string content",
			body:        `{"id":"c1","model":"glm-4v","choices":[{"finish_reason":"stop","message":{"role":"assistant","content":"一只猫"}}],"usage":{"prompt_tokens":900,"completion_tokens":12}}`,
			wantContent: "一只猫",
		},
		{
			name:        "content parts",
			body:        `{"choices":[{"message":{"content":[{"type":"text","text":"first"},{"type":"text","text":"second"}]}}]}`,
			wantContent: "first\nsecond",
		},
		{name: "no choices", body: `{"choices":[]}`, wantKind: core.KindMissingField},
		{name: "choice without message", body: `{"choices":[{"finish_reason":"stop"}]}`, wantKind: core.KindMissingField},
		{name: "malformed", body: `{"choices":`, wantKind: core.KindMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseChatCompletion([]byte(tt.body))
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, core.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, resp.Content)
		})
	}

	resp, err := ParseChatCompletion([]byte(`{"model":"glm-4v","choices":[{"finish_reason":"stop","message":{"content":"ok"}}],"usage":{"completion_tokens":3}}`))
	require.NoError(t, err)
	assert.Equal(t, "glm-4v", resp.Model)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 3, resp.Usage.CompletionTokens)
}

func TestParse_Dispatch(t *testing.T) {
	v, err := Parse(core.KindRerank, []byte(`{"results":[{"index":0,"relevance_score":0.4}]}`), Options{NInputs: 1})
	require.NoError(t, err)
	assert.IsType(t, &RerankResponse{}, v)

	v, err = Parse(core.KindModerate, []byte(`{"result_list":[]}`), Options{})
	require.NoError(t, err)
	assert.IsType(t, &ModerationVerdict{}, v)

	v, err = Parse(core.KindVision, []byte(`{"choices":[{"message":{"content":"hi"}}]}`), Options{})
	require.NoError(t, err)
	assert.IsType(t, &ChatCompletion{}, v)

	_, err = Parse(core.KindUnknown, []byte(`{}`), Options{})
	assert.Error(t, err)
}

func TestParseVendorError(t *testing.T) {
	code, msg, ok := ParseVendorError([]byte(`{"error":{"code":"1301","message":"unsafe content"}}`))
	assert.True(t, ok)
	assert.Equal(t, "1301", code)
	assert.Equal(t, "unsafe content", msg)

	_, _, ok = ParseVendorError([]byte(`<html>bad gateway</html>`))
	assert.False(t, ok)
}
