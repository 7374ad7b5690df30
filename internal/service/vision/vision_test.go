package vision

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/parser"
	"github.com/sandevgo/zhipukit/internal/providers/zhipu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	got []zhipu.VisionParams
}

func (f *fakeClient) Vision(ctx context.Context, p zhipu.VisionParams) (*parser.ChatCompletion, error) {
	f.got = append(f.got, p)
	return &parser.ChatCompletion{
		Envelope: core.Envelope{RequestID: "req-v", Usage: core.UsageStats{CompletionTokens: 5}},
		Content:  "a cat on a mat",
	}, nil
}

func newService() (*Service, *fakeClient) {
	client := &fakeClient{}
	return New(client, zhipu.DefaultModels()), client
}

func writeFile(t *testing.T, name string, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestService_DescribeImage(t *testing.T) {
	svc, client := newService()
	path := writeFile(t, "cat.png", "png-bytes")

	answer, err := svc.DescribeImage(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, "a cat on a mat", answer.Content)
	assert.Equal(t, "glm-4v", answer.Model)
	assert.Equal(t, "req-v", answer.RequestID)

	require.Len(t, client.got, 1)
	p := client.got[0]
	assert.Equal(t, DescribeQuestion, p.Text)
	assert.Equal(t, "glm-4v", p.Model)
	require.Len(t, p.Files, 1)
	assert.Equal(t, "cat.png", p.Files[0].Name)
	assert.Equal(t, []byte("png-bytes"), p.Files[0].Data)
}

func TestService_ModelPerTask(t *testing.T) {
	svc, client := newService()
	ctx := context.Background()
	video := writeFile(t, "clip.mp4", "mp4")
	doc := writeFile(t, "notes.md", "# notes")

	_, err := svc.AnalyzeVideo(ctx, video, "what happens?")
	require.NoError(t, err)
	_, err = svc.ExtractDocument(ctx, doc, "")
	require.NoError(t, err)
	_, err = svc.Compare(ctx, []string{video, doc}, "")
	require.NoError(t, err)

	require.Len(t, client.got, 3)
	assert.Equal(t, "glm-4v-plus", client.got[0].Model)
	assert.Equal(t, "what happens?", client.got[0].Text)
	assert.Equal(t, "glm-4v", client.got[1].Model)
	assert.Equal(t, DocumentQuestion, client.got[1].Text)
	assert.Equal(t, "glm-4v-plus", client.got[2].Model)
	assert.Len(t, client.got[2].Files, 2)
}

func TestService_RejectsBadFiles(t *testing.T) {
	svc, client := newService()
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want core.ErrorKind
	}{
		{"missing file", func() error {
			_, err := svc.DescribeImage(ctx, filepath.Join(t.TempDir(), "nope.png"), "")
			return err
		}, core.KindInvalidArgument},
		{"video passed as image", func() error {
			_, err := svc.DescribeImage(ctx, writeFile(t, "clip.mp4", "x"), "")
			return err
		}, core.KindInvalidArgument},
		{"compare one file", func() error {
			_, err := svc.Compare(ctx, []string{writeFile(t, "a.png", "x")}, "")
			return err
		}, core.KindOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, core.KindOf(tt.call()))
		})
	}
	assert.Empty(t, client.got)
}

func TestService_Tools(t *testing.T) {
	svc, client := newService()
	defs := svc.GetDefinitions()
	ctx := context.Background()

	for name, def := range defs {
		assert.True(t, json.Valid([]byte(def.Schema)), name)
		assert.NotEmpty(t, def.Description, name)
	}

	path := writeFile(t, "cat.jpg", "jpg")
	args, err := json.Marshal(map[string]any{"path": path, "question": "colour?"})
	require.NoError(t, err)
	out, err := defs["describe_image"].Handler(ctx, args)
	require.NoError(t, err)
	assert.Contains(t, out, "a cat on a mat")

	_, err = defs["describe_image"].Handler(ctx, json.RawMessage(`{"path":"  "}`))
	assert.Equal(t, core.KindEmptyInput, core.KindOf(err))

	out, err = defs["analyze_content"].Handler(ctx, json.RawMessage(`{"text":"hi","urls":["https://example.com/a.png"],"model":"glm-4v-plus"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "glm-4v-plus")
	assert.Equal(t, []string{"https://example.com/a.png"}, client.got[len(client.got)-1].URLs)

	out, err = defs["supported_formats"].Handler(ctx, nil)
	require.NoError(t, err)
	var formats struct {
		Formats map[string][]string `json:"formats"`
		Models  []string            `json:"models"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &formats))
	assert.Contains(t, formats.Formats["image"], ".png")
	assert.Contains(t, formats.Formats["video"], ".mp4")
	assert.Equal(t, []string{"glm-4v", "glm-4v-plus"}, formats.Models)
}
