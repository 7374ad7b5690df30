package vision

import (
	"context"
	"encoding/json"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/providers/zhipu"
)

const fileQuestionSchema = `
{
  "type": "object",
  "properties": {
    "path": { "type": "string", "description": "Local file path" },
    "question": { "type": "string", "description": "What to ask about the file" }
  },
  "required": ["path"]
}
`

const compareSchema = `
{
  "type": "object",
  "properties": {
    "paths": { "type": "array", "items": { "type": "string" }, "minItems": 2, "description": "Local files to compare" },
    "question": { "type": "string" }
  },
  "required": ["paths"]
}
`

const analyzeSchema = `
{
  "type": "object",
  "properties": {
    "text": { "type": "string", "description": "Question or instructions" },
    "paths": { "type": "array", "items": { "type": "string" }, "description": "Local images, videos or documents" },
    "urls": { "type": "array", "items": { "type": "string" }, "description": "Remote images or videos" },
    "model": { "type": "string", "description": "glm-4v or glm-4v-plus" },
    "temperature": { "type": "number", "minimum": 0, "maximum": 1 },
    "max_tokens": { "type": "integer", "minimum": 1, "maximum": 8192 }
  }
}
`

const emptySchema = `{"type": "object", "properties": {}}`

type fileQuestion struct {
	Path     string `json:"path" validate:"notblank"`
	Question string `json:"question"`
}

type analyzeInput struct {
	Text        string   `json:"text"`
	Paths       []string `json:"paths"`
	URLs        []string `json:"urls"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
}

func (s *Service) fileTool(ask func(ctx context.Context, path, question string) (*Answer, error)) core.ToolHandler {
	return func(ctx context.Context, args json.RawMessage) (string, error) {
		var in fileQuestion
		if err := core.DecodeArgs(args, &in); err != nil {
			return "", err
		}
		answer, err := ask(ctx, in.Path, in.Question)
		if err != nil {
			return "", err
		}
		return core.ToolJSON(answer)
	}
}

func (s *Service) compareTool(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Paths    []string `json:"paths"`
		Question string   `json:"question"`
	}
	if err := core.DecodeArgs(args, &in); err != nil {
		return "", err
	}
	answer, err := s.Compare(ctx, in.Paths, in.Question)
	if err != nil {
		return "", err
	}
	return core.ToolJSON(answer)
}

func (s *Service) analyzeTool(ctx context.Context, args json.RawMessage) (string, error) {
	var in analyzeInput
	if err := core.DecodeArgs(args, &in); err != nil {
		return "", err
	}
	files := make([]zhipu.MediaFile, 0, len(in.Paths))
	for _, path := range in.Paths {
		f, err := ReadMediaFile(path)
		if err != nil {
			return "", err
		}
		files = append(files, f)
	}
	answer, err := s.Analyze(ctx, zhipu.VisionParams{
		Text:        in.Text,
		Files:       files,
		URLs:        in.URLs,
		Model:       in.Model,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return core.ToolJSON(answer)
}

func (s *Service) formatsTool(ctx context.Context, args json.RawMessage) (string, error) {
	return core.ToolJSON(s.Formats())
}

func (s *Service) GetDefinitions() map[string]core.ToolDefinition {
	return map[string]core.ToolDefinition{
		"analyze_content":   {Description: "Ask a vision model about text, local files and URLs in one message", Schema: analyzeSchema, Handler: s.analyzeTool},
		"describe_image":    {Description: "Describe a local image", Schema: fileQuestionSchema, Handler: s.fileTool(s.DescribeImage)},
		"analyze_video":     {Description: "Analyze a local video with the plus model", Schema: fileQuestionSchema, Handler: s.fileTool(s.AnalyzeVideo)},
		"extract_document":  {Description: "Summarize or question a local document", Schema: fileQuestionSchema, Handler: s.fileTool(s.ExtractDocument)},
		"compare_contents":  {Description: "Compare several local files in one request", Schema: compareSchema, Handler: s.compareTool},
		"supported_formats": {Description: "List the file extensions and models vision tools accept", Schema: emptySchema, Handler: s.formatsTool},
	}
}
