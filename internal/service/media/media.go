// Package media wraps the vendor embedding, tokenizer, image and audio
// endpoints.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/parser"
	"github.com/sandevgo/zhipukit/internal/providers/zhipu"
	"github.com/sandevgo/zhipukit/pkg/log"
)

type Client interface {
	Embed(ctx context.Context, inputs []string) (*parser.EmbeddingResponse, error)
	Tokenize(ctx context.Context, messages []zhipu.Message) (*parser.TokenizeResponse, error)
	GenerateImage(ctx context.Context, p zhipu.ImageParams) (*parser.ImageResponse, error)
	Synthesize(ctx context.Context, p zhipu.SpeechParams) (*parser.Speech, error)
	Transcribe(ctx context.Context, p zhipu.TranscribeParams) (*parser.Transcription, error)
}

type Service struct {
	client    Client
	outputDir string
}

// New builds the service. Synthesized audio is written under outputDir.
func New(client Client, outputDir string) *Service {
	return &Service{client: client, outputDir: outputDir}
}

func (s *Service) Embed(ctx context.Context, inputs []string) (*parser.EmbeddingResponse, error) {
	return s.client.Embed(ctx, inputs)
}

// CountTokens asks the vendor tokenizer how many prompt tokens text uses.
func (s *Service) CountTokens(ctx context.Context, text string) (int, error) {
	resp, err := s.client.Tokenize(ctx, []zhipu.Message{{Role: "user", Content: text}})
	if err != nil {
		return 0, err
	}
	return resp.PromptTokens(), nil
}

func (s *Service) GenerateImage(ctx context.Context, p zhipu.ImageParams) (*parser.ImageResponse, error) {
	return s.client.GenerateImage(ctx, p)
}

// SpeechFile is synthesized audio saved to disk.
type SpeechFile struct {
	Path        string `json:"path"`
	Bytes       int    `json:"bytes"`
	ContentType string `json:"content_type,omitempty"`
}

// Synthesize writes the audio to path, or to a generated name in the
// output directory when path is empty.
func (s *Service) Synthesize(ctx context.Context, p zhipu.SpeechParams, path string) (*SpeechFile, error) {
	speech, err := s.client.Synthesize(ctx, p)
	if err != nil {
		return nil, err
	}

	if path == "" {
		format := p.Format
		if format == "" {
			format = zhipu.AudioFormats[0]
		}
		path = filepath.Join(s.outputDir, fmt.Sprintf("speech_%s.%s", uuid.NewString()[:8], format))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, speech.Audio, 0o644); err != nil {
		return nil, fmt.Errorf("write audio: %w", err)
	}

	log.FromCtx(ctx).Debug().Str("path", path).Int("bytes", len(speech.Audio)).Msg("speech saved")
	return &SpeechFile{Path: path, Bytes: len(speech.Audio), ContentType: speech.ContentType}, nil
}

// TranscribeFile reads an audio file and transcribes it.
func (s *Service) TranscribeFile(ctx context.Context, path, language, prompt string) (*parser.Transcription, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.NewError(core.KindInvalidArgument, "audio file %q not found", path)
		}
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return s.client.Transcribe(ctx, zhipu.TranscribeParams{
		FileName: filepath.Base(path),
		Audio:    audio,
		Language: language,
		Prompt:   prompt,
	})
}
