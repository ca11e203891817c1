// Package pipeline coordinates the full crawl of one curriculum document:
// PDF text extraction, marker slicing, semester and lesson segmentation,
// optional skill attribution, and reconciliation with the cache store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skillcrawl/skillcrawl/internal/cachestore"
	"github.com/skillcrawl/skillcrawl/internal/extractor"
	"github.com/skillcrawl/skillcrawl/internal/segmenter"
	"github.com/skillcrawl/skillcrawl/internal/skills"
	"github.com/skillcrawl/skillcrawl/pkg/types"
)

// Common errors
var (
	ErrCrawlInProgress = errors.New("another crawl is already in progress")
	ErrNoLessons       = errors.New("no lessons found in document")
)

// Options controls a single document crawl.
type Options struct {
	// University overrides name detection when set.
	University string
	// Country overrides the country guess when set.
	Country string
	// Attribute runs skill attribution on every segmented lesson. When
	// false, lessons are stored unattributed and filled in lazily at query
	// time.
	Attribute bool
	// Force re-attributes lessons that already carry cached skill data.
	Force bool
	// Markers overrides the default outline markers.
	Markers []string
}

// Statistics summarizes one crawl.
type Statistics struct {
	University  string        `json:"university"`
	Country     string        `json:"country,omitempty"`
	Pages       int           `json:"pages"`
	MarkerFound bool          `json:"marker_found"`
	Semesters   int           `json:"semesters"`
	Lessons     int           `json:"lessons"`
	Attributed  int           `json:"attributed"`
	Duration    time.Duration `json:"duration"`
}

// Result is the outcome of a crawl: the merged index as persisted, plus
// run statistics.
type Result struct {
	Index *types.UniversityIndex
	Stats Statistics
}

// TextSource turns a document path into ordered page text.
// *extractor.Extractor is the production implementation.
type TextSource interface {
	Extract(ctx context.Context, path string) (*types.Document, error)
}

var _ TextSource = (*extractor.Extractor)(nil)

// Pipeline wires the crawl stages together. The attributor may be nil, in
// which case Options.Attribute is ignored.
type Pipeline struct {
	extractor  TextSource
	attributor *skills.Attributor
	store      *cachestore.Store
	lock       CrawlLock
}

// New creates a Pipeline over the given collaborators.
func New(ext TextSource, attributor *skills.Attributor, store *cachestore.Store) *Pipeline {
	return &Pipeline{
		extractor:  ext,
		attributor: attributor,
		store:      store,
	}
}

// ProcessDocument crawls the PDF at path end to end and persists the merged
// index. Only one crawl runs at a time; a second concurrent call fails fast
// with ErrCrawlInProgress.
func (p *Pipeline) ProcessDocument(ctx context.Context, path string, opts Options) (*Result, error) {
	if !p.lock.TryAcquire() {
		return nil, ErrCrawlInProgress
	}
	defer p.lock.Release()

	start := time.Now()

	doc, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	text := doc.FullText()

	markers := opts.Markers
	if len(markers) == 0 {
		markers = segmenter.DefaultMarkers
	}
	outline, markerFound := segmenter.SliceAfterMarker(text, markers)
	if !markerFound {
		log.Printf("pipeline: no outline marker in %s, scanning full text", path)
	}

	fresh := &types.UniversityIndex{Name: opts.University, Country: opts.Country}
	if fresh.Name == "" {
		fresh.Name = DetectUniversity(text, path)
	}
	if fresh.Country == "" {
		fresh.Country = CountryFor(fresh.Name)
	}

	blocks := segmenter.SplitSemesters(outline)
	if err := p.segmentBlocks(ctx, fresh, blocks); err != nil {
		return nil, err
	}
	if fresh.LessonCount() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoLessons, path)
	}

	attributed := 0
	if opts.Attribute && p.attributor != nil {
		attributed, err = p.attributor.AttributeAll(ctx, allLessons(fresh), opts.Force)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", fresh.Name, err)
		}
	}

	cached, err := p.store.Load(fresh.Name)
	if err != nil && !errors.Is(err, cachestore.ErrNotFound) {
		return nil, err
	}
	merged := cachestore.Merge(cached, fresh, opts.Force)
	if err := p.store.Save(merged); err != nil {
		return nil, err
	}

	return &Result{
		Index: merged,
		Stats: Statistics{
			University:  merged.Name,
			Country:     merged.Country,
			Pages:       doc.PageCount(),
			MarkerFound: markerFound,
			Semesters:   len(merged.Semesters),
			Lessons:     merged.LessonCount(),
			Attributed:  attributed,
			Duration:    time.Since(start),
		},
	}, nil
}

// segmentBlocks segments every semester block concurrently. Each worker
// fills only its own result slot; the slots are folded into the index
// sequentially afterwards so semester order follows document order.
func (p *Pipeline) segmentBlocks(ctx context.Context, u *types.UniversityIndex, blocks []types.SemesterBlock) error {
	results := make([][]*types.LessonRecord, len(blocks))

	g, gctx := errgroup.WithContext(ctx)
	for i, block := range blocks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = segmenter.SegmentLessons(block.Raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, block := range blocks {
		if len(results[i]) == 0 {
			continue
		}
		label := block.Label
		if label == "" {
			// Unlabeled fallback block from a document without semester
			// headings.
			label = "Curriculum"
		}
		sem := u.EnsureSemester(label)
		for _, rec := range results[i] {
			sem.Put(rec)
		}
	}
	return nil
}

func allLessons(u *types.UniversityIndex) []*types.LessonRecord {
	var recs []*types.LessonRecord
	for _, sem := range u.Semesters {
		recs = append(recs, sem.Lessons...)
	}
	return recs
}
