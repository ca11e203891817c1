package skills

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrExtractionFailed = errors.New("skill extraction failed")
	ErrLookupFailed     = errors.New("skill label lookup failed")
	ErrNoProvider       = errors.New("no skill extraction provider configured")
)

// Extractor is the external skill-extraction collaborator: one opaque
// identifier collection per input description, order preserving.
type Extractor interface {
	// Extract returns one skill-identifier collection per description.
	Extract(ctx context.Context, descriptions []string) ([][]string, error)

	// Provider returns the provider name.
	Provider() string

	// Close releases any resources held by the extractor.
	Close() error
}

// LabelResolver is the title-lookup collaborator resolving a skill
// identifier to its human-readable label.
type LabelResolver interface {
	// Resolve returns the label for an identifier. An empty label with a
	// nil error means the upstream record had no usable title.
	Resolve(ctx context.Context, identifier string) (string, error)

	// Close releases any resources held by the resolver.
	Close() error
}
