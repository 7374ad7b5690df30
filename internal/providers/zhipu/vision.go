package zhipu

import (
	"encoding/base64"
	"mime"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sandevgo/zhipukit/internal/core"
)

// Content part types of multimodal and agent messages.
const (
	PartText     = "text"
	PartImageURL = "image_url"
	PartVideoURL = "video_url"
	PartFile     = "file"
	PartFileID   = "file_id"
)

// MaxVisionFileBytes caps one inline attachment; MediaFile.Data mirrors it.
const MaxVisionFileBytes = 20 << 20

// MediaKind classifies an attachment by extension.
type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "document"
	MediaOther    MediaKind = "file"
)

var mediaExtensions = map[MediaKind][]string{
	MediaImage:    {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"},
	MediaVideo:    {".mp4", ".avi", ".mov", ".mkv", ".webm"},
	MediaDocument: {".pdf", ".doc", ".docx", ".txt", ".md"},
}

// SupportedFormats lists the attachment extensions per kind.
func SupportedFormats() map[MediaKind][]string {
	out := make(map[MediaKind][]string, len(mediaExtensions))
	for k, exts := range mediaExtensions {
		out[k] = slices.Clone(exts)
	}
	return out
}

func MediaKindOf(name string) MediaKind {
	ext := strings.ToLower(filepath.Ext(name))
	for k, exts := range mediaExtensions {
		if slices.Contains(exts, ext) {
			return k
		}
	}
	return MediaOther
}

type MediaURL struct {
	URL string `json:"url"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *MediaURL `json:"image_url,omitempty"`
	VideoURL *MediaURL `json:"video_url,omitempty"`
	FileURL  *MediaURL `json:"file_url,omitempty"`
	FileID   string    `json:"file_id,omitempty"`
}

// MediaFile is an attachment sent inline as a base64 data URL.
type MediaFile struct {
	Name string `validate:"notblank"`
	Data []byte `validate:"nonempty,max=20971520"`
}

type VisionParams struct {
	Text  string
	Files []MediaFile `validate:"dive"`
	URLs  []string    `validate:"dive,url"`
	// Model defaults to the configured vision model.
	Model       string
	Temperature *float64 `validate:"omitnil,min=0,max=1"`
	MaxTokens   int      `validate:"min=0,max=8192"`
}

type VisionMessage struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

type VisionRequest struct {
	Model       string          `json:"model"`
	Messages    []VisionMessage `json:"messages"`
	Temperature *float64        `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

// VisionSpec builds one chat completion with text first, then files, then
// URLs. URLs that look like neither an image nor a video are passed as text.
func (c *Client) VisionSpec(p VisionParams) (core.RequestSpec, error) {
	if err := core.Validate(p); err != nil {
		return core.RequestSpec{}, err
	}

	var parts []ContentPart
	if text := strings.TrimSpace(p.Text); text != "" {
		parts = append(parts, ContentPart{Type: PartText, Text: text})
	}
	for _, f := range p.Files {
		parts = append(parts, filePart(f))
	}
	for _, u := range p.URLs {
		parts = append(parts, urlPart(u))
	}
	if len(parts) == 0 {
		return core.RequestSpec{}, core.NewError(core.KindEmptyInput, "no text, files or urls to analyze")
	}

	model := p.Model
	if model == "" {
		model = c.models.Vision
	}
	return core.RequestSpec{
		Kind: core.KindVision,
		Path: "chat/completions",
		Payload: VisionRequest{
			Model:       model,
			Messages:    []VisionMessage{{Role: "user", Content: parts}},
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
		},
		// inline video takes a while to upload and process
		Timeout: 2 * DefaultTimeout,
	}, nil
}

func filePart(f MediaFile) ContentPart {
	kind := MediaKindOf(f.Name)
	ext := strings.ToLower(filepath.Ext(f.Name))

	mimeType := mime.TypeByExtension(ext)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	if mimeType == "" {
		switch kind {
		case MediaImage, MediaVideo:
			mimeType = string(kind) + "/" + strings.TrimPrefix(ext, ".")
		default:
			mimeType = "application/octet-stream"
		}
	}

	media := &MediaURL{URL: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(f.Data)}
	switch kind {
	case MediaImage:
		return ContentPart{Type: PartImageURL, ImageURL: media}
	case MediaVideo:
		return ContentPart{Type: PartVideoURL, VideoURL: media}
	default:
		return ContentPart{Type: PartFile, FileURL: media}
	}
}

func urlPart(u string) ContentPart {
	path := u
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	switch MediaKindOf(path) {
	case MediaImage:
		return ContentPart{Type: PartImageURL, ImageURL: &MediaURL{URL: u}}
	case MediaVideo:
		return ContentPart{Type: PartVideoURL, VideoURL: &MediaURL{URL: u}}
	default:
		return ContentPart{Type: PartText, Text: "link: " + u}
	}
}
