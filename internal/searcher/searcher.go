// Package searcher answers fuzzy lesson and skill queries over cached
// curricula, filling in missing skill data on demand.
package searcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/skillcrawl/skillcrawl/internal/cachestore"
	"github.com/skillcrawl/skillcrawl/internal/skills"
	"github.com/skillcrawl/skillcrawl/pkg/types"
)

// Common errors
var (
	ErrNoMatch           = errors.New("no match above threshold")
	ErrUnknownUniversity = errors.New("no university matches the query")
)

// Relevance tiers for skill matches. Tier bounds are fixed; only the
// admission thresholds below are configurable.
const (
	TierHigh   = "high"
	TierMedium = "medium"
	TierLow    = "low"

	tierHighMin   = 70
	tierMediumMin = 56
)

// Default admission thresholds (0-100 fuzzy scores).
const (
	DefaultLessonThreshold     = 80
	DefaultSkillThreshold      = 40
	DefaultUniversityThreshold = 70

	queryCacheSize = 1000
	queryCacheTTL  = 5 * time.Minute
)

// Config holds the admission thresholds for each query kind.
type Config struct {
	LessonThreshold     int
	SkillThreshold      int
	UniversityThreshold int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		LessonThreshold:     DefaultLessonThreshold,
		SkillThreshold:      DefaultSkillThreshold,
		UniversityThreshold: DefaultUniversityThreshold,
	}
}

// LessonMatch is one lesson-title hit.
type LessonMatch struct {
	University  string   `json:"university"`
	Semester    string   `json:"semester"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	SkillNames  []string `json:"skill_names"`
	Score       int      `json:"score"`
}

// SkillMatch is one skill-label hit, placed in a relevance tier.
type SkillMatch struct {
	University string `json:"university"`
	Semester   string `json:"semester"`
	Lesson     string `json:"lesson"`
	Skill      string `json:"skill"`
	Identifier string `json:"identifier,omitempty"`
	Score      int    `json:"score"`
	Tier       string `json:"tier"`
}

// SkillResponse groups skill matches by relevance tier, each tier sorted by
// score descending.
type SkillResponse struct {
	High   []SkillMatch `json:"high"`
	Medium []SkillMatch `json:"medium"`
	Low    []SkillMatch `json:"low"`
}

// Total returns the number of matches across all tiers.
func (r *SkillResponse) Total() int {
	return len(r.High) + len(r.Medium) + len(r.Low)
}

type cacheEntry struct {
	lessons   []LessonMatch
	skills    *SkillResponse
	expiresAt time.Time
}

// Engine runs fuzzy queries against the cache store. When a matched lesson
// has no skill data yet, the engine attributes it on the spot and writes the
// result back through the store.
type Engine struct {
	store      *cachestore.Store
	attributor *skills.Attributor
	config     Config

	cacheMu sync.Mutex
	cache   *lru.Cache[[32]byte, *cacheEntry]
}

// New creates an Engine. attributor may be nil, in which case unattributed
// lessons are returned as found.
func New(store *cachestore.Store, attributor *skills.Attributor, config Config) *Engine {
	cache, err := lru.New[[32]byte, *cacheEntry](queryCacheSize)
	if err != nil {
		panic(fmt.Sprintf("failed to create query cache: %v", err))
	}
	return &Engine{
		store:      store,
		attributor: attributor,
		config:     config,
		cache:      cache,
	}
}

// FindLesson returns the lessons whose titles fuzzily match query, sorted by
// score descending. An empty university searches every cached curriculum;
// otherwise the university itself is fuzzy-resolved first. A non-positive
// threshold falls back to the configured lesson threshold.
func (e *Engine) FindLesson(ctx context.Context, query, university string, threshold int) ([]LessonMatch, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if threshold <= 0 {
		threshold = e.config.LessonThreshold
	}

	key := queryHash("lesson", query, university, threshold)
	if entry := e.cacheGet(key); entry != nil {
		return entry.lessons, nil
	}

	indexes, err := e.resolveScope(ctx, university)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var matches []LessonMatch
	for _, u := range indexes {
		filled := false
		for _, sem := range u.Semesters {
			for _, rec := range sem.Lessons {
				score := fuzzy.PartialRatio(needle, strings.ToLower(rec.Title))
				if score < threshold {
					continue
				}
				if did, err := e.fillSkills(ctx, rec); err != nil {
					log.Printf("searcher: on-demand attribution for %q failed: %v", rec.Title, err)
				} else if did {
					filled = true
				}
				matches = append(matches, LessonMatch{
					University:  u.Name,
					Semester:    sem.Label,
					Title:       rec.Title,
					Description: rec.Description,
					Skills:      append([]string{}, rec.Skills...),
					SkillNames:  append([]string{}, rec.SkillNames...),
					Score:       score,
				})
			}
		}
		if filled {
			if err := e.store.Save(u); err != nil {
				log.Printf("searcher: write-back for %s failed: %v", u.Name, err)
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no lesson scored >= %d for %q",
			ErrNoMatch, threshold, query)
	}

	e.cachePut(key, &cacheEntry{lessons: matches})
	return matches, nil
}

// FindSkill returns skill-label matches grouped into relevance tiers. Scores
// below the skill threshold are excluded entirely, even when the threshold
// is lowered beneath the low-tier bound. A non-positive threshold falls back
// to the configured skill threshold.
func (e *Engine) FindSkill(ctx context.Context, query, university string, threshold int) (*SkillResponse, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if threshold <= 0 {
		threshold = e.config.SkillThreshold
	}

	key := queryHash("skill", query, university, threshold)
	if entry := e.cacheGet(key); entry != nil {
		return entry.skills, nil
	}

	indexes, err := e.resolveScope(ctx, university)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	resp := &SkillResponse{}
	for _, u := range indexes {
		filled := false
		for _, sem := range u.Semesters {
			for _, rec := range sem.Lessons {
				if did, err := e.fillSkills(ctx, rec); err != nil {
					log.Printf("searcher: on-demand attribution for %q failed: %v", rec.Title, err)
				} else if did {
					filled = true
				}
				for i, label := range rec.SkillNames {
					score := fuzzy.Ratio(needle, strings.ToLower(label))
					if score < threshold {
						continue
					}
					match := SkillMatch{
						University: u.Name,
						Semester:   sem.Label,
						Lesson:     rec.Title,
						Skill:      label,
						Score:      score,
						Tier:       tierFor(score),
					}
					if i < len(rec.Skills) {
						match.Identifier = rec.Skills[i]
					}
					switch match.Tier {
					case TierHigh:
						resp.High = append(resp.High, match)
					case TierMedium:
						resp.Medium = append(resp.Medium, match)
					default:
						resp.Low = append(resp.Low, match)
					}
				}
			}
		}
		if filled {
			if err := e.store.Save(u); err != nil {
				log.Printf("searcher: write-back for %s failed: %v", u.Name, err)
			}
		}
	}

	for _, tier := range [][]SkillMatch{resp.High, resp.Medium, resp.Low} {
		sort.SliceStable(tier, func(i, j int) bool {
			return tier[i].Score > tier[j].Score
		})
	}

	if resp.Total() == 0 {
		return nil, fmt.Errorf("%w: no skill scored >= %d for %q",
			ErrNoMatch, threshold, query)
	}

	e.cachePut(key, &cacheEntry{skills: resp})
	return resp, nil
}

// ResolveUniversity fuzzy-matches a university query against the cached
// curricula and returns the best-scoring name at or above the university
// threshold.
func (e *Engine) ResolveUniversity(query string) (string, error) {
	names, err := e.store.ListUniversities()
	if err != nil {
		return "", err
	}

	needle := strings.ToLower(query)
	best, bestScore := "", -1
	for _, name := range names {
		score := fuzzy.PartialRatio(needle, strings.ToLower(name))
		if score > bestScore {
			best, bestScore = name, score
		}
	}

	if best == "" || bestScore < e.config.UniversityThreshold {
		return "", fmt.Errorf("%w: %q", ErrUnknownUniversity, query)
	}
	return best, nil
}

// InvalidateCache drops every cached query result. Called after any write to
// the underlying store.
func (e *Engine) InvalidateCache() {
	e.cacheMu.Lock()
	e.cache.Purge()
	e.cacheMu.Unlock()
}

// resolveScope loads the curricula a query runs over.
func (e *Engine) resolveScope(ctx context.Context, university string) ([]*types.UniversityIndex, error) {
	if university != "" {
		name, err := e.ResolveUniversity(university)
		if err != nil {
			return nil, err
		}
		u, err := e.store.Load(name)
		if err != nil {
			return nil, err
		}
		return []*types.UniversityIndex{u}, nil
	}

	names, err := e.store.ListUniversities()
	if err != nil {
		return nil, err
	}
	var indexes []*types.UniversityIndex
	for _, name := range names {
		u, err := e.store.Load(name)
		if err != nil {
			log.Printf("searcher: skipping %s: %v", name, err)
			continue
		}
		indexes = append(indexes, u)
	}
	if len(indexes) == 0 {
		return nil, fmt.Errorf("%w: no curricula cached", cachestore.ErrNotFound)
	}
	return indexes, nil
}

// fillSkills attributes a lesson that has no skill data yet. Reports whether
// an attribution actually ran.
func (e *Engine) fillSkills(ctx context.Context, rec *types.LessonRecord) (bool, error) {
	if rec.Attributed() || e.attributor == nil {
		return false, nil
	}
	if err := e.attributor.Attribute(ctx, rec, false); err != nil {
		return false, err
	}
	return true, nil
}

func tierFor(score int) string {
	switch {
	case score >= tierHighMin:
		return TierHigh
	case score >= tierMediumMin:
		return TierMedium
	default:
		return TierLow
	}
}

func (e *Engine) cacheGet(key [32]byte) *cacheEntry {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	entry, ok := e.cache.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		e.cache.Remove(key)
		return nil
	}
	return entry
}

func (e *Engine) cachePut(key [32]byte, entry *cacheEntry) {
	entry.expiresAt = time.Now().Add(queryCacheTTL)
	e.cacheMu.Lock()
	e.cache.Add(key, entry)
	e.cacheMu.Unlock()
}

func queryHash(kind, query, university string, threshold int) [32]byte {
	var b strings.Builder
	b.WriteString(kind)
	b.WriteString("|")
	b.WriteString(strings.ToLower(query))
	b.WriteString("|")
	b.WriteString(strings.ToLower(university))
	b.WriteString("|")
	b.WriteString(fmt.Sprintf("%d", threshold))
	return sha256.Sum256([]byte(b.String()))
}
