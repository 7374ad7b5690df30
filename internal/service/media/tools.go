package media

import (
	"context"
	"encoding/json"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/providers/zhipu"
)

const embedSchema = `
{
  "type": "object",
  "properties": {
    "texts": { "type": "array", "items": { "type": "string" }, "description": "Texts to embed" }
  },
  "required": ["texts"]
}
`

const tokensSchema = `
{
  "type": "object",
  "properties": {
    "text": { "type": "string", "description": "Text to count tokens for" }
  },
  "required": ["text"]
}
`

const imageSchema = `
{
  "type": "object",
  "properties": {
    "prompt": { "type": "string", "description": "Image description" },
    "model": { "type": "string", "description": "Image model, e.g. cogview-4; the configured model when empty" },
    "size": { "type": "string", "enum": ["1024x1024", "1024x768", "768x1024", "512x512", "768x768"] },
    "quality": { "type": "string", "enum": ["standard", "hd"] }
  },
  "required": ["prompt"]
}
`

const speechSchema = `
{
  "type": "object",
  "properties": {
    "text": { "type": "string", "description": "Text to speak, at most 5000 characters" },
    "voice": { "type": "string", "enum": ["tongtong", "xiaoxiao", "xiaomo", "xiaobei", "xiaoxuan"] },
    "format": { "type": "string", "enum": ["wav", "mp3"] },
    "output_path": { "type": "string", "description": "Where to write the audio file" }
  },
  "required": ["text"]
}
`

const transcribeSchema = `
{
  "type": "object",
  "properties": {
    "path": { "type": "string", "description": "Local wav or mp3 file, at most 25MB" },
    "language": { "type": "string", "description": "Spoken language hint" },
    "prompt": { "type": "string", "description": "Context that helps recognition" }
  },
  "required": ["path"]
}
`

func (s *Service) embedTool(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Texts []string `json:"texts"`
	}
	if err := core.DecodeArgs(args, &in); err != nil {
		return "", err
	}
	resp, err := s.Embed(ctx, in.Texts)
	if err != nil {
		return "", err
	}
	return core.ToolJSON(map[string]any{
		"model":      resp.Model,
		"dimensions": resp.Dimensions(),
		"vectors":    resp.Vectors,
		"usage":      resp.Usage,
	})
}

func (s *Service) tokensTool(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Text string `json:"text"`
	}
	if err := core.DecodeArgs(args, &in); err != nil {
		return "", err
	}
	n, err := s.CountTokens(ctx, in.Text)
	if err != nil {
		return "", err
	}
	return core.ToolJSON(map[string]int{"prompt_tokens": n})
}

func (s *Service) imageTool(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Prompt  string `json:"prompt"`
		Model   string `json:"model"`
		Size    string `json:"size"`
		Quality string `json:"quality"`
	}
	if err := core.DecodeArgs(args, &in); err != nil {
		return "", err
	}
	resp, err := s.GenerateImage(ctx, zhipu.ImageParams{Prompt: in.Prompt, Model: in.Model, Size: in.Size, Quality: in.Quality})
	if err != nil {
		return "", err
	}
	return core.ToolJSON(resp)
}

func (s *Service) speechTool(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Text       string `json:"text"`
		Voice      string `json:"voice"`
		Format     string `json:"format"`
		OutputPath string `json:"output_path"`
	}
	if err := core.DecodeArgs(args, &in); err != nil {
		return "", err
	}
	file, err := s.Synthesize(ctx, zhipu.SpeechParams{Text: in.Text, Voice: in.Voice, Format: in.Format}, in.OutputPath)
	if err != nil {
		return "", err
	}
	return core.ToolJSON(file)
}

func (s *Service) transcribeTool(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Path     string `json:"path"`
		Language string `json:"language"`
		Prompt   string `json:"prompt"`
	}
	if err := core.DecodeArgs(args, &in); err != nil {
		return "", err
	}
	if in.Path == "" {
		return "", core.NewError(core.KindEmptyInput, "path is empty")
	}
	resp, err := s.TranscribeFile(ctx, in.Path, in.Language, in.Prompt)
	if err != nil {
		return "", err
	}
	return core.ToolJSON(resp)
}

func (s *Service) GetDefinitions() map[string]core.ToolDefinition {
	return map[string]core.ToolDefinition{
		"embed_texts":      {Description: "Compute embedding vectors for texts", Schema: embedSchema, Handler: s.embedTool},
		"count_tokens":     {Description: "Count prompt tokens with the vendor tokenizer", Schema: tokensSchema, Handler: s.tokensTool},
		"generate_image":   {Description: "Generate an image from a prompt and return its URL", Schema: imageSchema, Handler: s.imageTool},
		"text_to_speech":   {Description: "Synthesize speech and save it as an audio file", Schema: speechSchema, Handler: s.speechTool},
		"transcribe_audio": {Description: "Transcribe a local audio file to text", Schema: transcribeSchema, Handler: s.transcribeTool},
	}
}
