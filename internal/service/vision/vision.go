// Package vision asks the GLM-4V models about images, videos and documents.
package vision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/parser"
	"github.com/sandevgo/zhipukit/internal/providers/zhipu"
	"github.com/sandevgo/zhipukit/pkg/log"
)

const (
	DescribeQuestion = "Describe this image."
	VideoQuestion    = "Analyze the content of this video."
	DocumentQuestion = "Summarize the main points of this document."
	CompareQuestion  = "Compare these contents and list their similarities and differences."
)

type Client interface {
	Vision(ctx context.Context, p zhipu.VisionParams) (*parser.ChatCompletion, error)
}

// Answer is the model reply to one multimodal request.
type Answer struct {
	Model     string          `json:"model"`
	Content   string          `json:"content"`
	Usage     core.UsageStats `json:"usage"`
	RequestID string          `json:"request_id,omitempty"`
}

type Service struct {
	client    Client
	model     string
	plusModel string
}

func New(client Client, models zhipu.Models) *Service {
	return &Service{client: client, model: models.Vision, plusModel: models.VisionPlus}
}

// Analyze sends text, files and URLs in one message.
func (s *Service) Analyze(ctx context.Context, p zhipu.VisionParams) (*Answer, error) {
	if p.Model == "" {
		p.Model = s.model
	}
	resp, err := s.client.Vision(ctx, p)
	if err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().
		Str("model", p.Model).
		Int("files", len(p.Files)).
		Int("urls", len(p.URLs)).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("vision completed")

	model := resp.Model
	if model == "" {
		model = p.Model
	}
	return &Answer{Model: model, Content: resp.Content, Usage: resp.Usage, RequestID: resp.RequestID}, nil
}

// DescribeImage asks question about one image file.
func (s *Service) DescribeImage(ctx context.Context, path, question string) (*Answer, error) {
	return s.askFiles(ctx, []string{path}, zhipu.MediaImage, orDefault(question, DescribeQuestion), s.model)
}

// AnalyzeVideo uses the plus model, which accepts video.
func (s *Service) AnalyzeVideo(ctx context.Context, path, question string) (*Answer, error) {
	return s.askFiles(ctx, []string{path}, zhipu.MediaVideo, orDefault(question, VideoQuestion), s.plusModel)
}

func (s *Service) ExtractDocument(ctx context.Context, path, question string) (*Answer, error) {
	return s.askFiles(ctx, []string{path}, zhipu.MediaDocument, orDefault(question, DocumentQuestion), s.model)
}

// Compare sends every file in one message to the plus model.
func (s *Service) Compare(ctx context.Context, paths []string, question string) (*Answer, error) {
	if len(paths) < 2 {
		return nil, core.NewError(core.KindOutOfRange, "compare needs at least 2 files, got %d", len(paths))
	}
	return s.askFiles(ctx, paths, "", orDefault(question, CompareQuestion), s.plusModel)
}

// Formats lists the attachment extensions per media kind and the models.
func (s *Service) Formats() map[string]any {
	return map[string]any{
		"formats": zhipu.SupportedFormats(),
		"models":  []string{s.model, s.plusModel},
	}
}

// askFiles reads paths and checks each against want, unless want is empty.
func (s *Service) askFiles(ctx context.Context, paths []string, want zhipu.MediaKind, question, model string) (*Answer, error) {
	files := make([]zhipu.MediaFile, 0, len(paths))
	for _, path := range paths {
		if want != "" {
			if got := zhipu.MediaKindOf(path); got != want {
				return nil, core.NewError(core.KindInvalidArgument, "%q is not a supported %s file", filepath.Base(path), want)
			}
		}
		f, err := ReadMediaFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return s.Analyze(ctx, zhipu.VisionParams{Text: question, Files: files, Model: model})
}

// ReadMediaFile loads a local attachment.
func ReadMediaFile(path string) (zhipu.MediaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return zhipu.MediaFile{}, core.NewError(core.KindInvalidArgument, "file %q not found", path)
		}
		return zhipu.MediaFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return zhipu.MediaFile{Name: filepath.Base(path), Data: data}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
