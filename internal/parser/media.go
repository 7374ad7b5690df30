package parser

import (
	"strings"

	"github.com/sandevgo/zhipukit/internal/core"
)

type ImageResponse struct {
	core.Envelope
	URLs []string `json:"urls"`
}

func ParseImage(body []byte) (*ImageResponse, error) {
	var raw struct {
		envelope
		Data *[]struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := decode(body, &raw); err != nil {
		return nil, err
	}
	if raw.Data == nil || len(*raw.Data) == 0 {
		return nil, missing("data")
	}
	urls := make([]string, 0, len(*raw.Data))
	for _, d := range *raw.Data {
		if d.URL == "" {
			return nil, missing("data[].url")
		}
		urls = append(urls, d.URL)
	}
	return &ImageResponse{Envelope: raw.envelope.core(), URLs: urls}, nil
}

type TokenizeResponse struct {
	core.Envelope
}

func (r TokenizeResponse) PromptTokens() int {
	return r.Usage.PromptTokens
}

func ParseTokenize(body []byte) (*TokenizeResponse, error) {
	var env envelope
	if err := decode(body, &env); err != nil {
		return nil, err
	}
	var check struct {
		Usage *struct {
			PromptTokens *int `json:"prompt_tokens"`
		} `json:"usage"`
	}
	if err := decode(body, &check); err != nil {
		return nil, err
	}
	if check.Usage == nil || check.Usage.PromptTokens == nil {
		return nil, missing("usage.prompt_tokens")
	}
	return &TokenizeResponse{Envelope: env.core()}, nil
}

type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type Transcription struct {
	core.Envelope
	Text     string    `json:"text"`
	Language string    `json:"language,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
}

func ParseTranscription(body []byte) (*Transcription, error) {
	var raw struct {
		envelope
		Text     *string   `json:"text"`
		Language string    `json:"language"`
		Duration float64   `json:"duration"`
		Segments []Segment `json:"segments"`
	}
	if err := decode(body, &raw); err != nil {
		return nil, err
	}
	if raw.Text == nil {
		return nil, missing("text")
	}
	return &Transcription{
		Envelope: raw.envelope.core(),
		Text:     *raw.Text,
		Language: raw.Language,
		Duration: raw.Duration,
		Segments: raw.Segments,
	}, nil
}

// Speech is synthesized audio. The body is binary and passed through.
type Speech struct {
	Audio       []byte
	ContentType string
}

func ParseSpeech(body []byte, contentType string) (*Speech, error) {
	if len(body) == 0 {
		return nil, missing("audio")
	}
	// a 2xx JSON body on the speech endpoint is an error envelope
	if strings.HasPrefix(strings.ToLower(contentType), "application/json") {
		if code, msg, ok := ParseVendorError(body); ok {
			return nil, inconsistent("expected audio, got vendor error %s: %s", code, msg)
		}
		return nil, inconsistent("expected audio, got json")
	}
	return &Speech{Audio: body, ContentType: contentType}, nil
}
