// Package sink persists collection results.
package sink

import (
	"context"
	"fmt"
	"io"

	"github.com/stahnma/gh-repometa/internal/config"
)

// Sink stores v under a destination name.
type Sink interface {
	Save(ctx context.Context, name string, v any) error
}

// Named is implemented by results that list the repositories they hold.
// SQLiteSink uses it to track when each repository was first seen.
type Named interface {
	RepositoryNames() []string
}

// New picks the sink configured in cfg. stdout receives output of the stdout sink.
func New(ctx context.Context, cfg config.Config, stdout io.Writer) (Sink, error) {
	switch cfg.Sink {
	case config.SinkFile, "":
		return &FileSink{Dir: cfg.OutputDir}, nil
	case config.SinkStdout:
		return &WriterSink{W: stdout}, nil
	case config.SinkS3:
		return NewS3Sink(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3ObjectKey)
	case config.SinkSQLite:
		return OpenSQLite(cfg.HistoryDB)
	}
	return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
}

// Close releases the sink's resources, if it holds any.
func Close(s Sink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
