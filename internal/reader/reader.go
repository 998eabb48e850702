// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reader is the boundary to the external text-extraction
// collaborator. It supplies raw page-marker-delimited text for a scanned
// document; the core never retries or recovers collaborator failures, it
// wraps them with path and page context and propagates.
// Implements: prd001-ingestion (R1, R2);
//
//	docs/ARCHITECTURE § Ingestion.
package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pdiddy/standards-engine/internal/container"
	"github.com/pdiddy/standards-engine/internal/pages"
	"github.com/pdiddy/standards-engine/pkg/types"
)

// DefaultImage is the extraction container image used when the config
// names none.
const DefaultImage = "pdftotext:latest"

// ErrClosed reports use of a reader after Close.
var ErrClosed = errors.New("reader is closed")

// PageReader supplies page-marker-delimited text for a document. Both
// extraction calls may fail with a wrapped extraction error; the caller
// treats that as fatal (R1.1-R1.3).
type PageReader interface {
	// ExtractPages returns marker-delimited text for the pages in spec
	// ("5" or "5-12").
	ExtractPages(ctx context.Context, path, spec string) (string, error)

	// ExtractAll returns marker-delimited text for the whole document.
	ExtractAll(ctx context.Context, path string) (string, error)

	// Close releases the collaborator's connection; idempotent when
	// already closed.
	Close() error
}

// ContainerReader pipes documents through an extraction container image
// and rewrites its form-feed page breaks into "Page <n>:" markers.
//
// Each reader holds one logical connection: the first caller to need it
// establishes the runtime (single-writer-establishes), and concurrent
// callers arriving while establishment is in flight await the same
// attempt instead of racing separate connections (R2.1, R2.2).
type ContainerReader struct {
	image string

	establishOnce sync.Once
	establishErr  error
	runtime       container.Runtime

	mu     sync.Mutex
	closed bool
}

// NewContainerReader creates a reader for the configured image. No
// connection is made until the first extraction call.
func NewContainerReader(cfg types.ReaderConfig) *ContainerReader {
	image := cfg.Image
	if image == "" {
		image = DefaultImage
	}
	return &ContainerReader{image: image}
}

// establish detects the container runtime and verifies the image exactly
// once per reader; every caller observes the same outcome.
func (r *ContainerReader) establish() error {
	r.establishOnce.Do(func() {
		rt, err := container.DetectRuntime()
		if err != nil {
			r.establishErr = err
			return
		}
		if err := rt.ImageExists(r.image); err != nil {
			r.establishErr = err
			return
		}
		r.runtime = rt
	})
	return r.establishErr
}

// ExtractPages extracts the given page span. The page spec is validated before
// any connection is made.
func (r *ContainerReader) ExtractPages(ctx context.Context, path, spec string) (string, error) {
	rng, err := pages.ParseRange(spec)
	if err != nil {
		return "", fmt.Errorf("extracting pages of %s: %w", path, err)
	}

	args := []string{"-", "-"}
	first := 1
	if !rng.All() {
		first = rng.First
		args = []string{
			"-f", strconv.Itoa(rng.First),
			"-l", strconv.Itoa(rng.Last),
			"-", "-",
		}
	}

	out, err := r.run(ctx, path, args)
	if err != nil {
		return "", fmt.Errorf("extracting pages %s of %s: %w", spec, path, err)
	}
	return markPages(out, first), nil
}

// ExtractAll extracts the whole document.
func (r *ContainerReader) ExtractAll(ctx context.Context, path string) (string, error) {
	out, err := r.run(ctx, path, []string{"-", "-"})
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", path, err)
	}
	return markPages(out, 1), nil
}

// Close releases the reader's connection. Closing an already-closed
// reader is a no-op (R1.4).
func (r *ContainerReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *ContainerReader) run(ctx context.Context, path string, args []string) (string, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return "", ErrClosed
	}

	if err := r.establish(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := r.runtime.Run(r.image, args, f, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

// markPages rewrites the extraction tool's form-feed page breaks into the
// literal "Page <n>:" markers the core consumes (R3.1), numbering from
// first.
func markPages(raw string, first int) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	for i, page := range strings.Split(raw, "\f") {
		trimmed := strings.TrimSpace(page)
		if trimmed == "" {
			continue
		}
		fmt.Fprintf(&b, "Page %d: %s\n\n", first+i, trimmed)
	}
	return b.String()
}
