// Package tools holds helper tools exposed next to the vendor services.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/inbucket/html2text"
	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/providers/zhipu"
	"github.com/sandevgo/zhipukit/pkg/log"
	"github.com/sandevgo/zhipukit/pkg/retry"
)

const (
	maxResponseSize     = 1 << 20 // 1MB limit
	defaultFetchTimeout = 15 * time.Second
)

const fetchURLSchema = `
{
  "type": "object",
  "properties": {
    "url": { "type": "string", "description": "http(s) URL to fetch, e.g. a web_search result link" }
  },
  "required": ["url"]
}
`

// Fetch downloads a page and returns it as plain text.
type Fetch struct {
	client  *http.Client
	retrier *retry.Retrier
}

func NewFetchWithTimeout(timeout time.Duration, retryCfg *retry.Config) *Fetch {
	if retryCfg == nil {
		retryCfg = retry.NewDefaultConfig()
	}
	return &Fetch{
		client:  &http.Client{Timeout: timeout},
		retrier: retry.NewRetrier(retryCfg),
	}
}

func NewFetch() *Fetch {
	return NewFetchWithTimeout(defaultFetchTimeout, nil)
}

// Page retries transport failures and 5xx responses. HTML is converted to
// text, other bodies are returned as read.
func (f *Fetch) Page(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", core.NewError(core.KindInvalidArgument, "url must be an absolute http(s) URL, got %q", rawURL)
	}

	var (
		body    string
		lastErr error
	)
	attempts, sleepErr := f.retrier.Run(ctx, func(ctx context.Context, attempt int) bool {
		var retryable bool
		body, retryable, lastErr = f.get(ctx, u.String())
		return lastErr != nil && retryable
	})
	if sleepErr != nil {
		return "", &core.Error{Kind: core.KindCanceled, Detail: "fetch canceled", Cause: sleepErr}
	}
	if lastErr != nil {
		log.FromCtx(ctx).Debug().Err(lastErr).Str("url", u.String()).Int("attempts", attempts).Msg("fetch failed")
		return "", lastErr
	}
	return body, nil
}

func (f *Fetch) get(ctx context.Context, target string) (body string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", false, core.NewError(core.KindInvalidArgument, "bad request: %v", err)
	}
	req.Header.Set("User-Agent", core.AppUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", false, &core.Error{Kind: core.KindCanceled, Detail: "fetch canceled", Cause: ctx.Err()}
		}
		return "", true, core.NewTransportError(zhipu.ClassifyTransport(ctx, err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", resp.StatusCode >= 500, &core.Error{
			Kind:   core.KindHTTP,
			Status: resp.StatusCode,
			Detail: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, target),
		}
	}

	limited := io.LimitReader(resp.Body, maxResponseSize)
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		text, err := html2text.FromReader(limited, html2text.Options{PrettyTables: true})
		if err != nil {
			return "", false, &core.Error{Kind: core.KindMalformed, Detail: "convert html", Cause: err}
		}
		return text, false, nil
	}

	data, err := io.ReadAll(limited)
	if err != nil {
		return "", true, core.NewTransportError(zhipu.ClassifyTransport(ctx, err), err)
	}
	return string(data), false, nil
}

func (f *Fetch) fetchTool(ctx context.Context, args json.RawMessage) (string, error) {
	var input struct {
		URL string `json:"url"`
	}
	if err := core.DecodeArgs(args, &input); err != nil {
		return "", err
	}
	return f.Page(ctx, input.URL)
}

func (f *Fetch) GetDefinitions() map[string]core.ToolDefinition {
	return map[string]core.ToolDefinition{
		"fetch_url": {
			Description: "Fetch a web page (HTTP GET) and return it as plain text",
			Schema:      fetchURLSchema,
			Handler:     f.fetchTool,
		},
	}
}
