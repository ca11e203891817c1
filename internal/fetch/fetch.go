// Package fetch downloads curriculum documents over HTTP into a local
// directory, skipping files that are already present.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Common errors
var (
	ErrUnfetched = errors.New("document could not be fetched")
)

const (
	// MaxAttempts bounds download retries for one URL.
	MaxAttempts = 3
	// RetryDelay is the fixed pause between attempts.
	RetryDelay = 2 * time.Second
)

// Fetcher downloads documents into a destination directory.
type Fetcher struct {
	destDir    string
	httpClient *http.Client
}

// New creates a Fetcher writing into destDir, creating it if needed.
func New(destDir string) (*Fetcher, error) {
	if destDir == "" {
		return nil, fmt.Errorf("download directory not set")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download directory: %w", err)
	}
	return &Fetcher{
		destDir: destDir,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Fetch downloads rawURL and returns the local file path. A file that
// already exists under the derived name is reused without a network call.
// Exhausting all attempts returns ErrUnfetched.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	name, err := fileNameFor(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnfetched, err)
	}
	dest := filepath.Join(f.destDir, name)

	if _, err := os.Stat(dest); err == nil {
		log.Printf("fetch: reusing existing %s", dest)
		return dest, nil
	}

	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if err := f.download(ctx, rawURL, dest); err == nil {
			return dest, nil
		} else {
			lastErr = err
			log.Printf("fetch: attempt %d/%d for %s failed: %v", attempt, MaxAttempts, rawURL, err)
		}

		if attempt < MaxAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(RetryDelay):
			}
		}
	}

	return "", fmt.Errorf("%w: %s: %v", ErrUnfetched, rawURL, lastErr)
}

// download streams the response body to a temp file and renames it into
// place, so an interrupted download never leaves a partial document behind.
func (f *Fetcher) download(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(f.destDir, ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("stream body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("move into place: %w", err)
	}
	return nil
}

// fileNameFor derives a local filename from the URL path.
func fileNameFor(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("no filename in URL %s", rawURL)
	}
	if !strings.Contains(name, ".") {
		name += ".pdf"
	}
	return name, nil
}
