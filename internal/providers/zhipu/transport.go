package zhipu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"os"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/sandevgo/zhipukit/internal/core"
)

const (
	DefaultTimeout = 30 * time.Second
	maxBodyBytes   = 32 << 20
)

var _ core.Sender = (*HTTPTransport)(nil)

// HTTPTransport performs exactly one HTTP exchange per Send.
type HTTPTransport struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

type TransportOption func(*HTTPTransport)

func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		t.client = c
	}
}

func WithUserAgent(ua string) TransportOption {
	return func(t *HTTPTransport) {
		t.userAgent = ua
	}
}

func NewHTTPTransport(baseURL string, opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		// deadlines come from the per-attempt context
		client:    &http.Client{},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: core.AppUserAgent,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *HTTPTransport) Send(ctx context.Context, spec core.RequestSpec, cred core.Credential, timeout time.Duration) core.Attempt {
	if spec.Timeout > 0 {
		timeout = spec.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	attempt := core.Attempt{StartedAt: time.Now()}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := t.newRequest(ctx, spec, cred)
	if err != nil {
		attempt.Outcome = core.TransportFailure{Kind: core.FailureConnection, Cause: err}
		return finish(attempt)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		attempt.Outcome = core.TransportFailure{Kind: ClassifyTransport(ctx, err), Cause: err}
		return finish(attempt)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		attempt.Outcome = core.TransportFailure{Kind: ClassifyTransport(ctx, err), Cause: fmt.Errorf("read body: %w", err)}
		return finish(attempt)
	}
	if len(body) > maxBodyBytes {
		attempt.Outcome = core.TransportFailure{
			Kind:  core.FailureConnection,
			Cause: fmt.Errorf("response body exceeds %d bytes", maxBodyBytes),
		}
		return finish(attempt)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		attempt.Outcome = core.Success{
			Status:      resp.StatusCode,
			Body:        body,
			ContentType: resp.Header.Get("Content-Type"),
		}
	} else {
		attempt.Outcome = core.HTTPFailure{Status: resp.StatusCode, Body: body}
	}
	return finish(attempt)
}

func finish(a core.Attempt) core.Attempt {
	a.Duration = time.Since(a.StartedAt)
	return a
}

func (t *HTTPTransport) newRequest(ctx context.Context, spec core.RequestSpec, cred core.Credential) (*http.Request, error) {
	var (
		body        io.Reader
		contentType string
	)
	if spec.IsMultipart() {
		buf, ct, err := encodeMultipart(spec)
		if err != nil {
			return nil, fmt.Errorf("encode multipart: %w", err)
		}
		body, contentType = buf, ct
	} else {
		data, err := json.Marshal(spec.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.resolve(spec.Path), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.Token())
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", t.userAgent)
	return req, nil
}

// resolve joins a relative path to the base URL and leaves absolute URLs alone.
func (t *HTTPTransport) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return t.baseURL + "/" + strings.TrimLeft(path, "/")
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeMultipart(spec core.RequestSpec) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, k := range slices.Sorted(maps.Keys(spec.Form)) {
		if err := w.WriteField(k, spec.Form[k]); err != nil {
			return nil, "", err
		}
	}

	field := spec.File.Field
	if field == "" {
		field = "file"
	}
	contentType := spec.File.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(spec.File.FileName)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(spec.File.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// ClassifyTransport maps a client error onto a transport failure kind.
func ClassifyTransport(ctx context.Context, err error) core.TransportFailureKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return core.FailureTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return core.FailureTimeout
		}
		return core.FailureDNS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return core.FailureTimeout
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, io.ErrUnexpectedEOF) ||
		strings.Contains(err.Error(), "connection reset") {
		return core.FailureConnectionReset
	}
	return core.FailureConnection
}
