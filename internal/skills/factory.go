package skills

import (
	"fmt"
	"os"
	"strings"
)

// NewFromEnv builds an Attributor from environment configuration:
//
//	SKILLCRAWL_SKILL_PROVIDER  provider name (esco, static; default esco)
//	SKILLCRAWL_EXTRACTOR_URL   base URL of the extraction service
//	SKILLCRAWL_ESCO_API        label-lookup API base (default public ESCO)
func NewFromEnv() (*Attributor, error) {
	provider := strings.ToLower(os.Getenv("SKILLCRAWL_SKILL_PROVIDER"))
	if provider == "" {
		provider = ProviderESCO
	}

	switch provider {
	case ProviderESCO:
		extractor, err := NewESCOExtractor(os.Getenv("SKILLCRAWL_EXTRACTOR_URL"))
		if err != nil {
			return nil, err
		}
		resolver := NewESCOResolver(os.Getenv("SKILLCRAWL_ESCO_API"))
		return New(extractor, resolver), nil

	case ProviderStatic:
		return New(&StaticExtractor{Mapping: map[string][]string{}},
			&StaticResolver{Labels: map[string]string{}}), nil

	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrNoProvider, provider)
	}
}
