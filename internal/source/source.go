// Package source fetches the raw text of the income schedule and the TyEL
// rate document from disk or over HTTP.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrStatus is returned when an HTTP source answers with a non-2xx status
var ErrStatus = errors.New("unexpected HTTP status")

// DefaultTimeout bounds a single HTTP fetch
const DefaultTimeout = 10 * time.Second

// Source yields the full text of one document
type Source interface {
	Fetch(ctx context.Context) (string, error)
	Name() string
}

// New returns an HTTPSource for http(s) locations and a FileSource otherwise
func New(location string, timeout time.Duration) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, timeout)
	}
	return NewFileSource(location)
}

// FileSource reads a document from the local filesystem
type FileSource struct {
	Path string
}

// NewFileSource creates a file source
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Fetch reads the whole file
func (fs *FileSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(fs.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", fs.Path, err)
	}
	return string(data), nil
}

// Name returns the file path
func (fs *FileSource) Name() string {
	return fs.Path
}

// FetchPair fetches both documents concurrently. Either failure fails the
// pair so callers never see half of a snapshot.
func FetchPair(ctx context.Context, first, second Source) (string, string, error) {
	var firstText, secondText string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := first.Fetch(gctx)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", first.Name(), err)
		}
		firstText = text
		return nil
	})
	g.Go(func() error {
		text, err := second.Fetch(gctx)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", second.Name(), err)
		}
		secondText = text
		return nil
	})

	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return firstText, secondText, nil
}
