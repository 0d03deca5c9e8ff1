package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/stahnma/gh-repometa/internal/format"
)

// FileSink writes indented JSON files into Dir.
type FileSink struct {
	Dir string
}

func (s *FileSink) Save(_ context.Context, name string, v any) error {
	data, err := format.MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriterSink writes indented JSON to W, ignoring the name.
type WriterSink struct {
	W io.Writer
}

func (s *WriterSink) Save(_ context.Context, _ string, v any) error {
	return format.WriteJSON(s.W, v, false)
}
