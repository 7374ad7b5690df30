// Package snapshot persists ranked results and batch reports as JSON files.
// Every Load re-reads the file; nothing is cached.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sandevgo/zhipukit/internal/core"
)

type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Dir() string {
	return s.dir
}

// UniqueName appends a short random suffix: "rerank" -> "rerank_1a2b3c4d.json".
func UniqueName(prefix string) string {
	prefix = strings.TrimSuffix(prefix, ".json")
	if prefix == "" {
		prefix = "result"
	}
	return fmt.Sprintf("%s_%s.json", prefix, uuid.NewString()[:8])
}

// Save writes snap under the store directory and returns the file path.
// An empty name gets a unique one derived from the snapshot kind.
func (s *FileStore) Save(snap *Snapshot, name string) (string, error) {
	if snap == nil {
		return "", errors.New("snapshot is nil")
	}
	if snap.Schema == "" {
		snap.Schema = SchemaV1
	}
	if err := snap.validate(); err != nil {
		return "", err
	}

	if name == "" {
		name = UniqueName(snap.Kind.String())
	}
	name = filepath.Base(name)
	if filepath.Ext(name) == "" {
		name += ".json"
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename snapshot: %w", err)
	}
	return path, nil
}

// Load reads a snapshot. A relative path that does not exist as given is
// looked up in the store directory.
func (s *FileStore) Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(s.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, &core.Error{Kind: core.KindSchemaMismatch, Detail: "decode snapshot", Cause: err}
	}
	if err := snap.validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *FileStore) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return filepath.Join(s.dir, path)
}
