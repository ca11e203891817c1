package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"

	"github.com/skillcrawl/skillcrawl/pkg/types"
)

// ErrDocumentUnreadable is returned when a PDF cannot be opened or decoded.
// Callers degrade to an empty extraction; the condition never propagates
// past the extraction boundary as a panic or fatal error.
var ErrDocumentUnreadable = errors.New("document unreadable")

const (
	// DefaultMemoSize is the number of extracted documents kept in memory.
	DefaultMemoSize = 64
)

// Extractor turns PDF bytes into ordered per-page plain text. Results are
// memoized by document identity (path plus content hash) so repeat
// extractions of an unchanged file are free.
type Extractor struct {
	workers int
	memo    *lru.Cache[string, []types.PageText]
}

// New creates an Extractor with the given page-decode worker count.
// A non-positive count falls back to runtime.NumCPU().
func New(workers int) *Extractor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	memo, err := lru.New[string, []types.PageText](DefaultMemoSize)
	if err != nil {
		// Only reachable with a non-positive size.
		panic(fmt.Sprintf("failed to create extraction memo: %v", err))
	}
	return &Extractor{
		workers: workers,
		memo:    memo,
	}
}

// Extract returns one plain-text string per page of the PDF at path.
// Image-only pages yield an empty string at their ordinal rather than
// aborting the document. An unreadable document yields a Document with no
// pages and ErrDocumentUnreadable.
func (e *Extractor) Extract(ctx context.Context, path string) (*types.Document, error) {
	doc := &types.Document{SourcePath: path}

	key, err := documentKey(path)
	if err != nil {
		return doc, fmt.Errorf("%w: %v", ErrDocumentUnreadable, err)
	}

	if pages, ok := e.memo.Get(key); ok {
		doc.Pages = clonePages(pages)
		return doc, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return doc, fmt.Errorf("%w: %v", ErrDocumentUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return doc, fmt.Errorf("%w: pdfcpu read: %v", ErrDocumentUnreadable, err)
	}

	pages, err := e.extractPages(ctx, pdfCtx)
	if err != nil {
		return doc, err
	}

	e.memo.Add(key, clonePages(pages))
	doc.Pages = pages
	return doc, nil
}

// extractPages decodes every page concurrently. Each worker writes only its
// own slice index; the assembled slice is returned in page order, so no
// shared container is mutated across workers.
func (e *Extractor) extractPages(ctx context.Context, pdfCtx *model.Context) ([]types.PageText, error) {
	pages := make([]types.PageText, pdfCtx.PageCount)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// A page that fails to decode contributes an empty string.
			pages[pageNr-1] = types.PageText{
				Ordinal: pageNr,
				Text:    extractPageText(pdfCtx, pageNr),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

// documentKey builds the memo key from the path and a content hash, so a
// rewritten file under the same name is re-extracted.
func documentKey(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return path + ":" + hex.EncodeToString(h.Sum(nil)), nil
}

// clonePages copies the page slice so memoized results cannot be mutated by
// callers.
func clonePages(src []types.PageText) []types.PageText {
	dst := make([]types.PageText, len(src))
	copy(dst, src)
	return dst
}
