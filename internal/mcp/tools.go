package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/skillcrawl/skillcrawl/internal/cachestore"
	"github.com/skillcrawl/skillcrawl/internal/extractor"
	"github.com/skillcrawl/skillcrawl/internal/pipeline"
	"github.com/skillcrawl/skillcrawl/internal/searcher"
	"github.com/skillcrawl/skillcrawl/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams       = -32602 // Invalid method parameters
	ErrorCodeInternalError       = -32603 // Internal JSON-RPC error
	ErrorCodeCrawlInProgress     = -32001 // Another crawl is already running
	ErrorCodeUniversityNotFound  = -32002 // No cached university matches
	ErrorCodeDocumentUnreadable  = -32003 // PDF could not be fetched or decoded
	ErrorCodeEmptyQuery          = -32004 // Query parameter is empty
	ErrorCodeAttributionDisabled = -32005 // No skill provider configured
)

// handleProcessDocument handles the process_document tool invocation
func (s *Server) handleProcessDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	document, ok := args["document"].(string)
	if !ok || document == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "document parameter is required", map[string]interface{}{
			"param":  "document",
			"reason": "missing or empty",
		})
	}

	path := document
	if strings.HasPrefix(document, "http://") || strings.HasPrefix(document, "https://") {
		local, err := s.fetcher.Fetch(ctx, document)
		if err != nil {
			return nil, newMCPError(ErrorCodeDocumentUnreadable, "document fetch failed", map[string]interface{}{
				"url":   document,
				"error": err.Error(),
			})
		}
		path = local
	}

	opts := pipeline.Options{
		University: getStringDefault(args, "university", ""),
		Country:    getStringDefault(args, "country", ""),
		Attribute:  getBoolDefault(args, "attribute", false),
		Force:      getBoolDefault(args, "force_refresh", false),
	}

	result, err := s.pipeline.ProcessDocument(ctx, path, opts)
	switch {
	case errors.Is(err, pipeline.ErrCrawlInProgress):
		return nil, newMCPError(ErrorCodeCrawlInProgress, "another crawl is already running", nil)
	case errors.Is(err, extractor.ErrDocumentUnreadable):
		return nil, newMCPError(ErrorCodeDocumentUnreadable, "document could not be read", map[string]interface{}{
			"document": document,
			"error":    err.Error(),
		})
	case err != nil:
		return nil, newMCPError(ErrorCodeInternalError, "crawl failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Query answers may now be stale.
	s.engine.InvalidateCache()

	response := map[string]interface{}{
		"university":   result.Stats.University,
		"country":      result.Stats.Country,
		"pages":        result.Stats.Pages,
		"marker_found": result.Stats.MarkerFound,
		"semesters":    result.Stats.Semesters,
		"lessons":      result.Stats.Lessons,
		"attributed":   result.Stats.Attributed,
		"duration_ms":  result.Stats.Duration.Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleFindLesson handles the find_lesson tool invocation
func (s *Server) handleFindLesson(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}
	university := getStringDefault(args, "university", "")
	threshold := getIntDefault(args, "threshold", 0)

	matches, err := s.engine.FindLesson(ctx, query, university, threshold)
	switch {
	case errors.Is(err, searcher.ErrUnknownUniversity):
		return nil, newMCPError(ErrorCodeUniversityNotFound, "no cached university matches", map[string]interface{}{
			"university": university,
		})
	case errors.Is(err, searcher.ErrNoMatch), errors.Is(err, cachestore.ErrNotFound):
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"query":   query,
			"matches": []interface{}{},
		})), nil
	case err != nil:
		return nil, newMCPError(ErrorCodeInternalError, "lesson search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":   query,
		"matches": matches,
	})), nil
}

// handleFindSkill handles the find_skill tool invocation
func (s *Server) handleFindSkill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}
	university := getStringDefault(args, "university", "")
	threshold := getIntDefault(args, "threshold", 0)

	resp, err := s.engine.FindSkill(ctx, query, university, threshold)
	switch {
	case errors.Is(err, searcher.ErrUnknownUniversity):
		return nil, newMCPError(ErrorCodeUniversityNotFound, "no cached university matches", map[string]interface{}{
			"university": university,
		})
	case errors.Is(err, searcher.ErrNoMatch), errors.Is(err, cachestore.ErrNotFound):
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"query": query,
			"total": 0,
		})), nil
	case err != nil:
		return nil, newMCPError(ErrorCodeInternalError, "skill search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":  query,
		"total":  resp.Total(),
		"high":   resp.High,
		"medium": resp.Medium,
		"low":    resp.Low,
	})), nil
}

// handleAttributeSkills handles the attribute_skills tool invocation
func (s *Server) handleAttributeSkills(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	if s.attributor == nil {
		return nil, newMCPError(ErrorCodeAttributionDisabled, "no skill provider configured", nil)
	}

	university, ok := args["university"].(string)
	if !ok || university == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "university parameter is required", map[string]interface{}{
			"param":  "university",
			"reason": "missing or empty",
		})
	}
	force := getBoolDefault(args, "force", false)

	name, err := s.engine.ResolveUniversity(university)
	if err != nil {
		return nil, newMCPError(ErrorCodeUniversityNotFound, "no cached university matches", map[string]interface{}{
			"university": university,
		})
	}

	index, err := s.store.Load(name)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load cached curriculum", map[string]interface{}{
			"error": err.Error(),
		})
	}

	targets := collectLessons(index)
	if lesson := getStringDefault(args, "lesson", ""); lesson != "" {
		rec := findLesson(index, lesson)
		if rec == nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "lesson not found in cached curriculum", map[string]interface{}{
				"university": name,
				"lesson":     lesson,
			})
		}
		targets = []*types.LessonRecord{rec}
	}

	attributed, err := s.attributor.AttributeAll(ctx, targets, force)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "attribution failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := s.store.Save(index); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to persist attribution", map[string]interface{}{
			"error": err.Error(),
		})
	}
	s.engine.InvalidateCache()

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"university": name,
		"lessons":    len(targets),
		"attributed": attributed,
	})), nil
}

// handleListUniversities handles the list_universities tool invocation
func (s *Server) handleListUniversities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.store.ListUniversities()
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list universities", map[string]interface{}{
			"error": err.Error(),
		})
	}

	universities := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		entry := map[string]interface{}{"name": name}
		if index, err := s.store.Load(name); err == nil {
			entry["country"] = index.Country
			entry["semesters"] = len(index.Semesters)
			entry["lessons"] = index.LessonCount()
		}
		// Zero until sync_database has mirrored the curriculum.
		if mirrored, err := s.mirror.LessonCount(ctx, name); err == nil {
			entry["mirrored_lessons"] = mirrored
		}
		universities = append(universities, entry)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"count":        len(universities),
		"universities": universities,
	})), nil
}

// handleSyncDatabase handles the sync_database tool invocation
func (s *Server) handleSyncDatabase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	university := getStringDefault(args, "university", "")

	var names []string
	if university != "" {
		name, err := s.engine.ResolveUniversity(university)
		if err != nil {
			return nil, newMCPError(ErrorCodeUniversityNotFound, "no cached university matches", map[string]interface{}{
				"university": university,
			})
		}
		names = []string{name}
	} else {
		all, err := s.store.ListUniversities()
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to list universities", map[string]interface{}{
				"error": err.Error(),
			})
		}
		names = all
	}

	synced := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		index, err := s.store.Load(name)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to load cached curriculum", map[string]interface{}{
				"university": name,
				"error":      err.Error(),
			})
		}
		stats, err := s.mirror.Sync(ctx, index)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "mirror sync failed", map[string]interface{}{
				"university": name,
				"error":      err.Error(),
			})
		}
		synced = append(synced, map[string]interface{}{
			"university": stats.University,
			"lessons":    stats.Lessons,
			"skills":     stats.Skills,
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"synced": synced,
	})), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value. JSON
// numbers decode as float64.
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	switch val := args[key].(type) {
	case float64:
		return int(val)
	case int:
		return val
	}
	return defaultValue
}

// collectLessons flattens an index into one lesson slice for batch
// attribution.
func collectLessons(u *types.UniversityIndex) []*types.LessonRecord {
	var recs []*types.LessonRecord
	for _, sem := range u.Semesters {
		recs = append(recs, sem.Lessons...)
	}
	return recs
}

// findLesson looks up a lesson by exact title, case-insensitively.
func findLesson(u *types.UniversityIndex, title string) *types.LessonRecord {
	for _, sem := range u.Semesters {
		for _, rec := range sem.Lessons {
			if strings.EqualFold(rec.Title, title) {
				return rec
			}
		}
	}
	return nil
}
