package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/stevemurr/shoplist/schema"
)

// FileStore keeps the whole list as one serialized array in a single file.
// The encoding follows the file extension:
//
//	.yaml, .yml - YAML
//	anything else (.json, .txt, ...) - JSON
//
// Every Save rewrites the file through a temporary file and a rename.
type FileStore struct {
	mu    sync.Mutex
	path  string
	codec codec
}

type codec struct {
	name      string
	marshal   func(v any) ([]byte, error)
	unmarshal func(b []byte, v any) error
}

var (
	jsonCodec = codec{
		name: "json",
		marshal: func(v any) ([]byte, error) {
			b, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return nil, err
			}
			return append(b, '\n'), nil
		},
		unmarshal: json.Unmarshal,
	}
	yamlCodec = codec{
		name:      "yaml",
		marshal:   yaml.Marshal,
		unmarshal: yaml.Unmarshal,
	}
)

func codecFor(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlCodec
	default:
		return jsonCodec
	}
}

func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("file path is required")
	}
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{path: path, codec: codecFor(path)}, nil
}

// Path returns the file backing the store.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Item{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return []Item{}, nil
	}

	var doc any
	if err := s.codec.unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s %s unmarshal: %v", ErrCorrupt, s.path, s.codec.name, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}

	var items []Item
	if err := s.codec.unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("%w: %s %s unmarshal: %v", ErrCorrupt, s.path, s.codec.name, err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (s *FileStore) Save(ctx context.Context, items []Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if items == nil {
		items = []Item{}
	}
	b, err := s.codec.marshal(items)
	if err != nil {
		return fmt.Errorf("%s marshal: %w", s.codec.name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(s.path, b, 0o644)
}

func (s *FileStore) Close() error { return nil }

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
