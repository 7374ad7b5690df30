// Package parser turns raw vendor response bodies into typed results.
// Every function rejects malformed JSON before touching any field and
// ignores fields it does not know.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/zhipukit/internal/core"
)

// Options carries the request context some parsers need.
type Options struct {
	// NInputs is the number of documents sent for reranking; negative
	// disables the index bounds check.
	NInputs     int
	ContentType string
}

// Parse dispatches on kind.
func Parse(kind core.Kind, body []byte, opts Options) (any, error) {
	switch kind {
	case core.KindRerank:
		return ParseRerank(body, opts.NInputs)
	case core.KindEmbed:
		return ParseEmbedding(body)
	case core.KindModerate:
		return ParseModeration(body)
	case core.KindSearch:
		return ParseSearch(body)
	case core.KindSynthesize:
		return ParseSpeech(body, opts.ContentType)
	case core.KindTranscribe:
		return ParseTranscription(body)
	case core.KindAgentChat:
		return ParseAgentChat(body)
	case core.KindImage:
		return ParseImage(body)
	case core.KindTokenize:
		return ParseTokenize(body)
	case core.KindVision:
		return ParseChatCompletion(body)
	default:
		return nil, fmt.Errorf("no parser for kind %s", kind)
	}
}

type envelope struct {
	ID        string          `json:"id"`
	Created   int64           `json:"created"`
	RequestID string          `json:"request_id"`
	Usage     json.RawMessage `json:"usage"`
}

func (e envelope) core() core.Envelope {
	return core.Envelope{
		ID:        e.ID,
		Created:   e.Created,
		RequestID: e.RequestID,
		Usage:     decodeUsage(e.Usage),
	}
}

// decode unmarshals body into v, mapping syntax errors to parse.malformed.
func decode(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return &core.Error{Kind: core.KindMalformed, Detail: "empty body"}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &core.Error{Kind: core.KindMalformed, Detail: "invalid json", Cause: err}
	}
	return nil
}

func decodeUsage(raw json.RawMessage) core.UsageStats {
	var usage core.UsageStats
	if len(raw) == 0 {
		return usage
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return usage
	}
	for k, v := range fields {
		n, isNum := v.(float64)
		switch {
		case k == "prompt_tokens" && isNum:
			usage.PromptTokens = int(n)
		case k == "completion_tokens" && isNum:
			usage.CompletionTokens = int(n)
		case k == "total_tokens" && isNum:
			usage.TotalTokens = int(n)
		default:
			if usage.Extra == nil {
				usage.Extra = make(map[string]any)
			}
			usage.Extra[k] = v
		}
	}
	return usage
}

func missing(field string) error {
	return core.NewError(core.KindMissingField, "%s is required", field)
}

func inconsistent(format string, args ...any) error {
	return core.NewError(core.KindInconsistent, format, args...)
}

// ParseVendorError extracts code and message from a failure body.
func ParseVendorError(body []byte) (code, message string, ok bool) {
	e := core.NewHTTPError(0, body)
	if e.Code == "" && e.Detail == "" {
		return "", "", false
	}
	return e.Code, e.Detail, true
}
