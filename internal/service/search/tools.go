package search

import (
	"context"
	"encoding/json"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/providers/zhipu"
)

const webSearchSchema = `
{
  "type": "object",
  "properties": {
    "query": { "type": "string", "description": "Search query" },
    "count": { "type": "integer", "minimum": 1, "maximum": 50, "description": "Number of results (default 10)" },
    "top_k": { "type": "integer", "minimum": 0, "description": "Keep only the k best results" },
    "recency": { "type": "string", "enum": ["noLimit", "day", "week", "month", "year"], "description": "Publication time filter" },
    "domain": { "type": "string", "description": "Restrict results to this domain" },
    "intent": { "type": "boolean", "description": "Run intent recognition on the query" }
  },
  "required": ["query"]
}
`

type searchInput struct {
	Query   string `json:"query"`
	Count   int    `json:"count" validate:"min=0"`
	TopK    *int   `json:"top_k"`
	Recency string `json:"recency"`
	Domain  string `json:"domain"`
	Intent  bool   `json:"intent"`
}

func (in searchInput) params() zhipu.SearchParams {
	return zhipu.SearchParams{
		Query:        in.Query,
		Count:        in.Count,
		Recency:      in.Recency,
		DomainFilter: in.Domain,
		Intent:       in.Intent,
	}
}

func (s *Service) webSearchTool(ctx context.Context, args json.RawMessage) (string, error) {
	var in searchInput
	if err := core.DecodeArgs(args, &in); err != nil {
		return "", err
	}

	var (
		res *Result
		err error
	)
	if in.TopK != nil {
		res, err = s.TopResults(ctx, in.params(), *in.TopK)
	} else {
		res, err = s.Search(ctx, in.params())
	}
	if err != nil {
		return "", err
	}
	return core.ToolJSON(res)
}

func (s *Service) GetDefinitions() map[string]core.ToolDefinition {
	return map[string]core.ToolDefinition{
		"web_search": {Description: "Search the web and return titles, links and content", Schema: webSearchSchema, Handler: s.webSearchTool},
	}
}
