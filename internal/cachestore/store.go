// Package cachestore persists attributed curricula as per-university JSON
// documents and reconciles fresh pipeline output against what is already on
// disk.
package cachestore

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/skillcrawl/skillcrawl/pkg/types"
)

// Common errors
var (
	ErrNotFound = errors.New("no cached document for university")
)

const cacheSuffix = "_cache.json"

var unsafeChars = regexp.MustCompile(`[^a-z0-9_]+`)

// Store reads and writes cache documents under a single directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory not set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the document path for a university name. Names differing only
// in case or whitespace map to the same file.
func (s *Store) Path(university string) string {
	return filepath.Join(s.dir, normalizeName(university)+cacheSuffix)
}

func normalizeName(university string) string {
	name := strings.ToLower(strings.TrimSpace(university))
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	if name == "" {
		name = "unknown_university"
	}
	return name
}

// Load reads the cached document for a university. A missing file returns
// ErrNotFound. A file that exists but fails to parse is treated as absent
// so a fresh crawl can replace it; the parse failure is logged.
func (s *Store) Load(university string) (*types.UniversityIndex, error) {
	path := s.Path(university)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, university)
		}
		return nil, fmt.Errorf("read cache %s: %w", path, err)
	}

	u, err := DecodeIndex(data)
	if err != nil {
		log.Printf("cachestore: unreadable cache %s, treating as absent: %v", path, err)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, university)
	}
	return u, nil
}

// Save writes the document atomically: encode to a temp file in the same
// directory, then rename over the destination.
func (s *Store) Save(u *types.UniversityIndex) error {
	data, err := EncodeIndex(u)
	if err != nil {
		return fmt.Errorf("encode cache for %s: %w", u.Name, err)
	}

	path := s.Path(u.Name)
	tmp, err := os.CreateTemp(s.dir, ".cache-*.json")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp cache: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace cache %s: %w", path, err)
	}
	return nil
}

// Merge reconciles a freshly crawled index against the cached one. Cached
// skill data wins: a lesson already attributed on disk keeps its record
// unless force is set. Lessons and semesters present only in the fresh
// index are added. The inputs are not mutated.
//
// Merge is idempotent: merging the same fresh index into its own merge
// result changes nothing.
func Merge(cached, fresh *types.UniversityIndex, force bool) *types.UniversityIndex {
	if cached == nil {
		return fresh.Clone()
	}

	merged := cached.Clone()
	if merged.Name == "" {
		merged.Name = fresh.Name
	}
	if merged.Country == "" {
		merged.Country = fresh.Country
	}

	for _, freshSem := range fresh.Semesters {
		sem := merged.EnsureSemester(freshSem.Label)
		for _, freshRec := range freshSem.Lessons {
			existing := sem.Lesson(freshRec.Title)
			switch {
			case existing == nil:
				sem.Put(freshRec.Clone())
			case force:
				sem.Put(freshRec.Clone())
			case !existing.Attributed() && freshRec.Attributed():
				sem.Put(freshRec.Clone())
			default:
				// Cached attribution survives a re-crawl.
			}
		}
	}
	return merged
}

// ListUniversities returns the university names of every cached document in
// the store, in directory order. Unreadable documents are skipped with a
// log line.
func (s *Store) ListUniversities() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("scan cache directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), cacheSuffix) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("cachestore: skipping unreadable %s: %v", path, err)
			continue
		}
		u, err := DecodeIndex(data)
		if err != nil {
			log.Printf("cachestore: skipping unparseable %s: %v", path, err)
			continue
		}
		name := u.Name
		if name == "" {
			name = strings.TrimSuffix(entry.Name(), cacheSuffix)
		}
		names = append(names, name)
	}
	return names, nil
}
