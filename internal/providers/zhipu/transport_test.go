package zhipu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_Send(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantBody   string
		wantOK     bool
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"ok":true}`)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"ok":true}`,
			wantOK:     true,
		},
		{
			name: "vendor error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprint(w, `{"error":{"code":"1302","message":"slow down"}}`)
			},
			wantStatus: http.StatusTooManyRequests,
			wantBody:   `{"error":{"code":"1302","message":"slow down"}}`,
		},
		{
			name: "server error without body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			tr := NewHTTPTransport(srv.URL)
			spec := core.RequestSpec{Kind: core.KindRerank, Path: "rerank", Payload: map[string]string{"q": "x"}}
			attempt := tr.Send(context.Background(), spec, core.Credential("secret-token"), time.Second)

			assert.Equal(t, tt.wantOK, attempt.Succeeded())
			switch o := attempt.Outcome.(type) {
			case core.Success:
				assert.Equal(t, tt.wantStatus, o.Status)
				assert.Equal(t, tt.wantBody, string(o.Body))
				assert.Equal(t, "application/json", o.ContentType)
			case core.HTTPFailure:
				assert.Equal(t, tt.wantStatus, o.Status)
				assert.Equal(t, tt.wantBody, string(o.Body))
			default:
				t.Fatalf("unexpected outcome %T", o)
			}
			assert.False(t, attempt.StartedAt.IsZero())
		})
	}
}

func TestHTTPTransport_Headers(t *testing.T) {
	var got *http.Request
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		body, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL+"/api/paas/v4/", WithUserAgent("zhipukit-test"))
	spec := core.RequestSpec{Kind: core.KindModerate, Path: "/moderations", Payload: ModerationRequest{Model: "moderation", Input: "hi"}}
	attempt := tr.Send(context.Background(), spec, core.Credential("secret-token"), 0)

	require.True(t, attempt.Succeeded())
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/paas/v4/moderations", got.URL.Path)
	assert.Equal(t, "Bearer secret-token", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "zhipukit-test", got.Header.Get("User-Agent"))
	assert.JSONEq(t, `{"model":"moderation","input":"hi"}`, string(body))
}

func TestHTTPTransport_Multipart(t *testing.T) {
	type upload struct {
		model, fileName, contentType string
		data                         []byte
	}
	var got upload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		got = upload{
			model:       r.FormValue("model"),
			fileName:    hdr.Filename,
			contentType: hdr.Header.Get("Content-Type"),
			data:        data,
		}
		fmt.Fprint(w, `{"text":"ok"}`)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL)
	tests := []struct {
		name string
		file core.MultipartFile
		want upload
	}{
		{
			name: "declared content type",
			file: core.MultipartFile{Field: "file", FileName: "clip.mp3", ContentType: "audio/mp3", Data: []byte("ID3data")},
			want: upload{model: "glm-asr", fileName: "clip.mp3", contentType: "audio/mp3", data: []byte("ID3data")},
		},
		{
			name: "default content type",
			file: core.MultipartFile{FileName: "clip.wav", Data: []byte("RIFFdata")},
			want: upload{model: "glm-asr", fileName: "clip.wav", contentType: "application/octet-stream", data: []byte("RIFFdata")},
		},
		{
			name: "quoted file name",
			file: core.MultipartFile{FileName: `say "hi".wav`, ContentType: "audio/wav", Data: []byte("RIFF")},
			want: upload{model: "glm-asr", fileName: `say "hi".wav`, contentType: "audio/wav", data: []byte("RIFF")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = upload{}
			spec := core.RequestSpec{
				Kind: core.KindTranscribe,
				Path: "audio/transcriptions",
				Form: map[string]string{"model": "glm-asr"},
				File: &tt.file,
			}
			attempt := tr.Send(context.Background(), spec, core.Credential("k"), time.Second)

			require.True(t, attempt.Succeeded())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPTransport_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL)
	spec := core.RequestSpec{Kind: core.KindRerank, Path: "rerank", Payload: struct{}{}, Timeout: 30 * time.Millisecond}
	attempt := tr.Send(context.Background(), spec, core.Credential("k"), time.Minute)

	failure, ok := attempt.Outcome.(core.TransportFailure)
	require.True(t, ok, "outcome %T", attempt.Outcome)
	assert.Equal(t, core.FailureTimeout, failure.Kind)
	assert.Less(t, attempt.Duration, time.Second)
}

func TestHTTPTransport_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	attempt := NewHTTPTransport(url).Send(context.Background(),
		core.RequestSpec{Kind: core.KindRerank, Path: "rerank", Payload: struct{}{}}, core.Credential("k"), time.Second)

	failure, ok := attempt.Outcome.(core.TransportFailure)
	require.True(t, ok, "outcome %T", attempt.Outcome)
	assert.Equal(t, core.FailureConnection, failure.Kind)
	assert.Equal(t, core.KindConnection, core.KindOf(attempt.Err()))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want core.TransportFailureKind
	}{
		{"deadline", fmt.Errorf("do: %w", context.DeadlineExceeded), core.FailureTimeout},
		{"os deadline", os.ErrDeadlineExceeded, core.FailureTimeout},
		{"net timeout", &net.OpError{Op: "read", Err: timeoutErr{}}, core.FailureTimeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.invalid"}, core.FailureDNS},
		{"dns timeout", &net.DNSError{Err: "timeout", Name: "api.invalid", IsTimeout: true}, core.FailureTimeout},
		{"reset", &net.OpError{Op: "read", Err: os.NewSyscallError("read", syscall.ECONNRESET)}, core.FailureConnectionReset},
		{"reset text", errors.New("read tcp: connection reset by peer"), core.FailureConnectionReset},
		{"refused", &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, core.FailureConnection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTransport(context.Background(), tt.err))
		})
	}
}
