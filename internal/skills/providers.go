package skills

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Provider configuration
const (
	ProviderESCO   = "esco"
	ProviderStatic = "static"

	// DefaultESCOAPIBase is the public ESCO resource API used for label
	// lookup.
	DefaultESCOAPIBase = "https://ec.europa.eu/esco/api"

	// MaxBatchSize bounds a single extraction request.
	MaxBatchSize = 100
)

// ESCOExtractor calls the external skill-extraction service over HTTP.
// The service is opaque: it accepts a batch of descriptions and returns one
// identifier collection per input, order preserving.
type ESCOExtractor struct {
	baseURL    string
	httpClient *http.Client
}

// NewESCOExtractor creates an extractor against the given service base URL.
func NewESCOExtractor(baseURL string) (*ESCOExtractor, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: extractor URL not set", ErrNoProvider)
	}
	return &ESCOExtractor{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (e *ESCOExtractor) Extract(ctx context.Context, descriptions []string) ([][]string, error) {
	if len(descriptions) == 0 {
		return nil, fmt.Errorf("%w: no descriptions provided", ErrExtractionFailed)
	}
	if len(descriptions) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d descriptions allowed", ErrExtractionFailed, MaxBatchSize)
	}

	config := DefaultRetryConfig()
	collections, err := retryWithBackoff(ctx, config, func() ([][]string, error) {
		return e.callAPI(ctx, descriptions)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d retries: %v", ErrExtractionFailed, MaxRetries, err)
	}

	if len(collections) != len(descriptions) {
		return nil, fmt.Errorf("%w: %d collections for %d descriptions",
			ErrExtractionFailed, len(collections), len(descriptions))
	}
	return collections, nil
}

func (e *ESCOExtractor) callAPI(ctx context.Context, descriptions []string) ([][]string, error) {
	reqBody := map[string]interface{}{
		"descriptions": descriptions,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Skills [][]string `json:"skills"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return apiResp.Skills, nil
}

func (e *ESCOExtractor) Provider() string {
	return ProviderESCO
}

func (e *ESCOExtractor) Close() error {
	e.httpClient.CloseIdleConnections()
	return nil
}

// ESCOResolver resolves skill identifier URIs to labels via the ESCO
// resource API.
type ESCOResolver struct {
	apiBase    string
	httpClient *http.Client
}

// NewESCOResolver creates a resolver. An empty apiBase falls back to the
// public ESCO API.
func NewESCOResolver(apiBase string) *ESCOResolver {
	if apiBase == "" {
		apiBase = DefaultESCOAPIBase
	}
	return &ESCOResolver{
		apiBase: apiBase,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (r *ESCOResolver) Resolve(ctx context.Context, identifier string) (string, error) {
	config := DefaultRetryConfig()
	label, err := retryWithBackoff(ctx, config, func() (string, error) {
		return r.callAPI(ctx, identifier)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	return label, nil
}

func (r *ESCOResolver) callAPI(ctx context.Context, identifier string) (string, error) {
	lookupURL := fmt.Sprintf("%s/resource/skill?uri=%s", r.apiBase, url.QueryEscape(identifier))

	req, err := http.NewRequestWithContext(ctx, "GET", lookupURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		PreferredLabel map[string]string `json:"preferredLabel"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	// Prefer the en-us label, fall back to plain en.
	if label := apiResp.PreferredLabel["en-us"]; label != "" {
		return label, nil
	}
	return apiResp.PreferredLabel["en"], nil
}

func (r *ESCOResolver) Close() error {
	r.httpClient.CloseIdleConnections()
	return nil
}

// StaticExtractor is a deterministic in-process extractor for tests and
// offline runs. It maps exact descriptions to identifier collections and
// counts invocations.
type StaticExtractor struct {
	Mapping map[string][]string
	Calls   int
}

func (s *StaticExtractor) Extract(ctx context.Context, descriptions []string) ([][]string, error) {
	s.Calls++
	out := make([][]string, len(descriptions))
	for i, desc := range descriptions {
		out[i] = append([]string{}, s.Mapping[desc]...)
	}
	return out, nil
}

func (s *StaticExtractor) Provider() string {
	return ProviderStatic
}

func (s *StaticExtractor) Close() error {
	return nil
}

// StaticResolver resolves labels from a fixed table; unknown identifiers
// return an empty label. Counts invocations.
type StaticResolver struct {
	Labels map[string]string
	Calls  int
}

func (s *StaticResolver) Resolve(ctx context.Context, identifier string) (string, error) {
	s.Calls++
	return s.Labels[identifier], nil
}

func (s *StaticResolver) Close() error {
	return nil
}
