package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	AppName       = "zhipukit"
	AppUserAgent  = "zhipukit/0.1"
	RepositoryURL = "https://github.com/sandevgo/zhipukit"
	AppVersion    = "0.1.0"
)

// Kind is the vendor operation a request targets.
type Kind int

const (
	KindUnknown Kind = iota
	KindRerank
	KindEmbed
	KindModerate
	KindSearch
	KindSynthesize
	KindTranscribe
	KindAgentChat
	KindImage
	KindTokenize
	KindVision
)

var kindNames = map[Kind]string{
	KindRerank:     "rerank",
	KindEmbed:      "embed",
	KindModerate:   "moderate",
	KindSearch:     "search",
	KindSynthesize: "synthesize",
	KindTranscribe: "transcribe",
	KindAgentChat:  "agent_chat",
	KindImage:      "image",
	KindTokenize:   "tokenize",
	KindVision:     "vision",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown operation kind: %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if k == KindUnknown {
		return nil, errors.New("cannot marshal unknown kind")
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Credential is the bearer token used for every vendor call.
type Credential string

// String redacts the token so a Credential is safe to log.
func (c Credential) String() string {
	if len(c) <= 8 {
		return "****"
	}
	return string(c[:4]) + "****" + string(c[len(c)-4:])
}

func (c Credential) Token() string {
	return string(c)
}

// MultipartFile is a file upload attached to a request (speech-to-text).
type MultipartFile struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

// RequestSpec describes a single vendor call. It is built per call and
// discarded once the Attempt completes.
type RequestSpec struct {
	Kind    Kind
	Path    string
	Payload any
	// Timeout overrides the client default when positive.
	Timeout time.Duration
	// Form and File switch the body to multipart/form-data.
	Form map[string]string
	File *MultipartFile
}

func (s RequestSpec) IsMultipart() bool {
	return s.File != nil
}

// Validate reports contract violations in how the spec was constructed.
func (s RequestSpec) Validate() error {
	if s.Kind == KindUnknown {
		return errors.New("request spec: kind is required")
	}
	if strings.TrimSpace(s.Path) == "" {
		return errors.New("request spec: path is required")
	}
	if s.Payload == nil && s.File == nil {
		return errors.New("request spec: payload is required")
	}
	if s.Timeout < 0 {
		return errors.New("request spec: timeout must not be negative")
	}
	return nil
}
