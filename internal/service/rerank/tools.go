package rerank

import (
	"context"
	"encoding/json"

	"github.com/sandevgo/zhipukit/internal/core"
)

const rerankSchema = `
{
  "type": "object",
  "properties": {
    "query": { "type": "string", "description": "Query to rank documents against" },
    "documents": { "type": "array", "items": { "type": "string" }, "description": "Candidate documents" },
    "passage_tokens": { "type": "integer", "minimum": 1, "description": "Split long documents into passages of this many tokens and score each document by its best passage" },
    "overlap_tokens": { "type": "integer", "minimum": 0, "description": "Tokens shared by consecutive passages (default 50, capped below passage_tokens)" },
    "save": { "type": "boolean", "description": "Persist the result as a snapshot" }
  },
  "required": ["query", "documents"]
}
`

const topRelevantSchema = `
{
  "type": "object",
  "properties": {
    "query": { "type": "string", "description": "Query to rank documents against" },
    "documents": { "type": "array", "items": { "type": "string" }, "description": "Candidate documents" },
    "top_k": { "type": "integer", "minimum": 0, "description": "Number of documents to keep (default 5)" },
    "save": { "type": "boolean", "description": "Persist the result as a snapshot" }
  },
  "required": ["query", "documents"]
}
`

const thresholdSchema = `
{
  "type": "object",
  "properties": {
    "query": { "type": "string", "description": "Query to rank documents against" },
    "documents": { "type": "array", "items": { "type": "string" }, "description": "Candidate documents" },
    "threshold": { "type": "number", "minimum": 0, "maximum": 1, "description": "Minimum relevance score (default 0.5)" },
    "save": { "type": "boolean", "description": "Persist the result as a snapshot" }
  },
  "required": ["query", "documents"]
}
`

const modelsSchema = `{ "type": "object", "properties": {} }`

type rerankInput struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopK      *int     `json:"top_k"`
	Threshold *float64 `json:"threshold"`
	Save      bool     `json:"save"`

	PassageTokens int  `json:"passage_tokens" validate:"min=0"`
	OverlapTokens *int `json:"overlap_tokens" validate:"omitnil,min=0"`
}

type savedResult struct {
	*Result
	SavedTo string `json:"saved_to,omitempty"`
}

func (s *Service) respond(ctx context.Context, res *Result, save bool) (string, error) {
	out := savedResult{Result: res}
	if save {
		path, err := s.Save(ctx, res, "")
		if err != nil {
			return "", err
		}
		out.SavedTo = path
	}
	return core.ToolJSON(out)
}

func (s *Service) rerankTool(ctx context.Context, args json.RawMessage) (string, error) {
	var in rerankInput
	if err := core.DecodeArgs(args, &in); err != nil {
		return "", err
	}
	var (
		res *Result
		err error
	)
	if in.PassageTokens > 0 {
		cfg := ChunkConfig{MaxTokens: in.PassageTokens, OverlapTokens: min(DefaultOverlapTokens, in.PassageTokens/2)}
		if in.OverlapTokens != nil {
			cfg.OverlapTokens = *in.OverlapTokens
		}
		res, err = s.RerankPassages(ctx, in.Query, in.Documents, cfg)
	} else {
		res, err = s.Rerank(ctx, in.Query, in.Documents)
	}
	if err != nil {
		return "", err
	}
	return s.respond(ctx, res, in.Save)
}

func (s *Service) topRelevantTool(ctx context.Context, args json.RawMessage) (string, error) {
	var in rerankInput
	if err := core.DecodeArgs(args, &in); err != nil {
		return "", err
	}
	k := DefaultTopK
	if in.TopK != nil {
		k = *in.TopK
	}
	res, err := s.TopRelevant(ctx, in.Query, in.Documents, k)
	if err != nil {
		return "", err
	}
	return s.respond(ctx, res, in.Save)
}

func (s *Service) thresholdTool(ctx context.Context, args json.RawMessage) (string, error) {
	var in rerankInput
	if err := core.DecodeArgs(args, &in); err != nil {
		return "", err
	}
	t := DefaultThreshold
	if in.Threshold != nil {
		t = *in.Threshold
	}
	res, err := s.RelevantByThreshold(ctx, in.Query, in.Documents, t)
	if err != nil {
		return "", err
	}
	return s.respond(ctx, res, in.Save)
}

func (s *Service) modelsTool(ctx context.Context, args json.RawMessage) (string, error) {
	return core.ToolJSON(map[string]any{"models": s.Models()})
}

func (s *Service) GetDefinitions() map[string]core.ToolDefinition {
	return map[string]core.ToolDefinition{
		"rerank_documents":                {Description: "Rank documents by relevance to a query", Schema: rerankSchema, Handler: s.rerankTool},
		"top_relevant_documents":          {Description: "Return the k most relevant documents for a query", Schema: topRelevantSchema, Handler: s.topRelevantTool},
		"relevant_documents_by_threshold": {Description: "Return documents whose relevance score reaches a threshold", Schema: thresholdSchema, Handler: s.thresholdTool},
		"rerank_models":                   {Description: "List available rerank models", Schema: modelsSchema, Handler: s.modelsTool},
	}
}
