package moderation

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sandevgo/zhipukit/internal/core"
)

const moderateSchema = `
{
  "type": "object",
  "properties": {
    "text": { "type": "string", "description": "Text to check, at most 10000 characters" },
    "save": { "type": "boolean", "description": "Persist the verdict as a snapshot" }
  },
  "required": ["text"]
}
`

const batchModerateSchema = `
{
  "type": "object",
  "properties": {
    "texts": { "type": "array", "items": { "type": "string" }, "description": "Texts to check independently" },
    "save": { "type": "boolean", "description": "Persist the report as a snapshot" }
  },
  "required": ["texts"]
}
`

type moderateInput struct {
	Text  string   `json:"text"`
	Texts []string `json:"texts"`
	Save  bool     `json:"save"`
}

type batchEntry struct {
	Index  int    `json:"index"`
	Result any    `json:"result,omitempty"`
	Kind   string `json:"error_kind,omitempty"`
	Detail string `json:"error,omitempty"`
}

func (s *Service) moderateTool(ctx context.Context, args json.RawMessage) (string, error) {
	var in moderateInput
	if err := core.DecodeArgs(args, &in); err != nil {
		return "", err
	}
	res, err := s.Moderate(ctx, in.Text)
	if err != nil {
		return "", err
	}
	out := struct {
		*Result
		SavedTo string `json:"saved_to,omitempty"`
	}{Result: res}
	if in.Save {
		if out.SavedTo, err = s.Save(ctx, in.Text, res, ""); err != nil {
			return "", err
		}
	}
	return core.ToolJSON(out)
}

func (s *Service) batchModerateTool(ctx context.Context, args json.RawMessage) (string, error) {
	var in moderateInput
	if err := core.DecodeArgs(args, &in); err != nil {
		return "", err
	}
	report, err := s.BatchModerate(ctx, in.Texts)
	if err != nil {
		return "", err
	}

	entries := make([]batchEntry, len(report.Entries))
	for i, e := range report.Entries {
		entries[i] = batchEntry{Index: e.Index}
		if e.Err != nil {
			entries[i].Kind = string(e.Err.Kind)
			entries[i].Detail = e.Err.Error()
			continue
		}
		entries[i].Result = e.Result
	}
	out := struct {
		Total     int          `json:"total"`
		Succeeded int          `json:"succeeded"`
		Failed    int          `json:"failed"`
		Entries   []batchEntry `json:"entries"`
		SavedTo   string       `json:"saved_to,omitempty"`
	}{Total: report.Len(), Succeeded: report.Succeeded(), Failed: report.Failed(), Entries: entries}

	if in.Save {
		input := strings.Join(in.Texts, "\n")
		if out.SavedTo, err = s.SaveBatch(ctx, input, report, ""); err != nil {
			return "", err
		}
	}
	return core.ToolJSON(out)
}

func (s *Service) GetDefinitions() map[string]core.ToolDefinition {
	return map[string]core.ToolDefinition{
		"moderate_content": {Description: "Check text for unsafe content and summarize the risks", Schema: moderateSchema, Handler: s.moderateTool},
		"batch_moderate":   {Description: "Check several texts for unsafe content in one call", Schema: batchModerateSchema, Handler: s.batchModerateTool},
	}
}
