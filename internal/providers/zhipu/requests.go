package zhipu

import (
	"path/filepath"
	"strings"

	"github.com/sandevgo/zhipukit/internal/core"
)

const (
	MaxModerationInput = 10000
	MaxSpeechInput     = 5000
	MaxAudioBytes      = 25 << 20
	MaxSearchCount     = 50
	DefaultSearchCount = 10
)

// Allowed values, mirrored by the oneof rules on the request structs.
var (
	SearchRecencyFilters = []string{"noLimit", "day", "week", "month", "year"}
	Voices               = []string{"tongtong", "xiaoxiao", "xiaomo", "xiaobei", "xiaoxuan"}
	AudioFormats         = []string{"wav", "mp3"}
	ImageSizes           = []string{"1024x1024", "1024x768", "768x1024", "512x512", "768x768"}
	ImageQualities       = []string{"standard", "hd"}
)

type RerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query" validate:"notblank"`
	Documents []string `json:"documents" validate:"nonempty"`
	TopN      int      `json:"top_n,omitempty" validate:"min=0"`

	// kept maps Documents back to the caller's input positions.
	kept []int
}

type EmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input" validate:"nonempty,dive,notblank"`
}

type ModerationRequest struct {
	Model string `json:"model"`
	Input string `json:"input" validate:"notblank,max=10000"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content" validate:"notblank"`
}

type TokenizeRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages" validate:"nonempty,dive"`
}

type SearchParams struct {
	Query        string
	Engine       string
	Intent       bool
	Count        int
	Recency      string
	DomainFilter string
}

type SearchRequest struct {
	SearchEngine        string `json:"search_engine"`
	SearchQuery         string `json:"search_query" validate:"notblank"`
	SearchIntent        bool   `json:"search_intent"`
	Count               int    `json:"count" validate:"min=1,max=50"`
	SearchRecencyFilter string `json:"search_recency_filter" validate:"oneof=noLimit day week month year"`
	SearchDomainFilter  string `json:"search_domain_filter,omitempty"`
}

type ImageParams struct {
	Prompt  string
	Model   string
	Size    string
	Quality string
}

type ImageRequest struct {
	Model   string `json:"model" validate:"notblank"`
	Prompt  string `json:"prompt" validate:"notblank"`
	Size    string `json:"size" validate:"oneof=1024x1024 1024x768 768x1024 512x512 768x768"`
	Quality string `json:"quality" validate:"oneof=standard hd"`
}

type SpeechParams struct {
	Text   string
	Voice  string
	Format string
}

type SpeechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input" validate:"notblank,max=5000"`
	Voice          string `json:"voice" validate:"oneof=tongtong xiaoxiao xiaomo xiaobei xiaoxuan"`
	ResponseFormat string `json:"response_format" validate:"oneof=wav mp3"`
}

type TranscribeParams struct {
	FileName string
	Audio    []byte `validate:"nonempty,max=26214400"`
	Language string
	Prompt   string
	// Format is the audio container, derived from FileName.
	Format string `validate:"oneof=wav mp3"`
}

// AgentParams carries a text message or a previously uploaded file.
type AgentParams struct {
	AgentID        string `validate:"notblank"`
	Message        string `validate:"required_without=FileID"`
	FileID         string `validate:"required_without=Message"`
	ConversationID string
}

// AgentMessage content is a string or a list of ContentPart.
type AgentMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type AgentRequest struct {
	AgentID        string         `json:"agent_id"`
	Messages       []AgentMessage `json:"messages"`
	ConversationID string         `json:"conversation_id,omitempty"`
}

// spec validates payload and wraps it into a JSON request spec.
func spec(kind core.Kind, path string, payload any) (core.RequestSpec, error) {
	if err := core.Validate(payload); err != nil {
		return core.RequestSpec{}, err
	}
	return core.RequestSpec{Kind: kind, Path: path, Payload: payload}, nil
}

// RerankSpec drops blank documents. kept maps each sent document back to
// its position in docs.
func (c *Client) RerankSpec(query string, docs []string, topN int) (core.RequestSpec, []int, error) {
	sent := make([]string, 0, len(docs))
	var kept []int
	for i, d := range docs {
		if d = strings.TrimSpace(d); d != "" {
			sent = append(sent, d)
			kept = append(kept, i)
		}
	}
	req := RerankRequest{
		Model:     c.models.Rerank,
		Query:     strings.TrimSpace(query),
		Documents: sent,
		TopN:      topN,
		kept:      kept,
	}
	s, err := spec(core.KindRerank, "rerank", req)
	if err != nil {
		return core.RequestSpec{}, nil, err
	}
	return s, kept, nil
}

func (c *Client) EmbedSpec(inputs []string) (core.RequestSpec, error) {
	return spec(core.KindEmbed, "embeddings", EmbeddingRequest{Model: c.models.Embedding, Input: inputs})
}

func (c *Client) ModerateSpec(text string) (core.RequestSpec, error) {
	return spec(core.KindModerate, "moderations", ModerationRequest{
		Model: c.models.Moderation,
		Input: strings.TrimSpace(text),
	})
}

func (c *Client) TokenizeSpec(messages []Message) (core.RequestSpec, error) {
	msgs := make([]Message, len(messages))
	for i, m := range messages {
		if m.Role == "" {
			m.Role = "user"
		}
		msgs[i] = m
	}
	return spec(core.KindTokenize, "tokenizer", TokenizeRequest{Model: c.models.Tokenizer, Messages: msgs})
}

func (c *Client) SearchSpec(p SearchParams) (core.RequestSpec, error) {
	req := SearchRequest{
		SearchEngine:        p.Engine,
		SearchQuery:         strings.TrimSpace(p.Query),
		SearchIntent:        p.Intent,
		Count:               p.Count,
		SearchRecencyFilter: p.Recency,
		SearchDomainFilter:  p.DomainFilter,
	}
	if req.SearchEngine == "" {
		req.SearchEngine = c.models.Search
	}
	if req.Count == 0 {
		req.Count = DefaultSearchCount
	}
	if req.SearchRecencyFilter == "" {
		req.SearchRecencyFilter = SearchRecencyFilters[0]
	}
	return spec(core.KindSearch, "web_search", req)
}

// ImageSpec leaves the model name to the vendor; new models need no release.
func (c *Client) ImageSpec(p ImageParams) (core.RequestSpec, error) {
	req := ImageRequest{
		Model:   p.Model,
		Prompt:  strings.TrimSpace(p.Prompt),
		Size:    p.Size,
		Quality: p.Quality,
	}
	if req.Model == "" {
		req.Model = c.models.Image
	}
	if req.Size == "" {
		req.Size = ImageSizes[0]
	}
	if req.Quality == "" {
		req.Quality = ImageQualities[0]
	}
	s, err := spec(core.KindImage, "images/generations", req)
	// generation is slow
	s.Timeout = 2 * DefaultTimeout
	return s, err
}

func (c *Client) SpeechSpec(p SpeechParams) (core.RequestSpec, error) {
	req := SpeechRequest{
		Model:          c.models.Speech,
		Input:          strings.TrimSpace(p.Text),
		Voice:          p.Voice,
		ResponseFormat: p.Format,
	}
	if req.Voice == "" {
		req.Voice = Voices[0]
	}
	if req.ResponseFormat == "" {
		req.ResponseFormat = AudioFormats[0]
	}
	return spec(core.KindSynthesize, "audio/speech", req)
}

func (c *Client) TranscribeSpec(p TranscribeParams) (core.RequestSpec, error) {
	if p.FileName == "" {
		p.FileName = "audio.wav"
	}
	p.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(p.FileName)), ".")
	if err := core.Validate(p); err != nil {
		return core.RequestSpec{}, err
	}

	form := map[string]string{
		"model":           c.models.ASR,
		"response_format": "json",
	}
	if p.Language != "" {
		form["language"] = p.Language
	}
	if p.Prompt != "" {
		form["prompt"] = p.Prompt
	}
	return core.RequestSpec{
		Kind: core.KindTranscribe,
		Path: "audio/transcriptions",
		Form: form,
		File: &core.MultipartFile{
			Field:       "file",
			FileName:    p.FileName,
			ContentType: "audio/" + p.Format,
			Data:        p.Audio,
		},
		Timeout: 10 * DefaultTimeout,
	}, nil
}

// AgentSpec targets the agents API, which lives outside /api/paas/v4.
func (c *Client) AgentSpec(p AgentParams) (core.RequestSpec, error) {
	p.AgentID = strings.TrimSpace(p.AgentID)
	p.Message = strings.TrimSpace(p.Message)
	p.FileID = strings.TrimSpace(p.FileID)
	if err := core.Validate(p); err != nil {
		return core.RequestSpec{}, err
	}

	msg := AgentMessage{Role: "user", Content: p.Message}
	if p.FileID != "" {
		parts := []ContentPart{{Type: PartFileID, FileID: p.FileID}}
		if p.Message != "" {
			parts = append(parts, ContentPart{Type: PartText, Text: p.Message})
		}
		msg.Content = parts
	}
	return core.RequestSpec{
		Kind: core.KindAgentChat,
		Path: c.host + "/api/v1/agents",
		Payload: AgentRequest{
			AgentID:        p.AgentID,
			Messages:       []AgentMessage{msg},
			ConversationID: p.ConversationID,
		},
	}, nil
}
