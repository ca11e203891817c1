package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillcrawl/skillcrawl/pkg/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("SKILLCRAWL_SKILL_PROVIDER", "static")

	s, err := NewServer(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.mirror.Close() })
	return s
}

func seedServer(t *testing.T, s *Server) {
	t.Helper()
	u := &types.UniversityIndex{Name: "University of Patras", Country: "Greece"}
	rec := &types.LessonRecord{Title: "ALGORITHMS", Description: "Sorting and searching."}
	rec.SetSkills([]string{"esco:s1"}, []string{"algorithm design"}, nil, types.ProvenanceFresh)
	u.EnsureSemester("1st Semester").Put(rec)
	require.NoError(t, s.store.Save(u))
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestNewServer_WiresComponents(t *testing.T) {
	s := newTestServer(t)

	assert.NotNil(t, s.store)
	assert.NotNil(t, s.pipeline)
	assert.NotNil(t, s.engine)
	assert.NotNil(t, s.mirror)
	assert.NotNil(t, s.fetcher)
	assert.NotNil(t, s.attributor)
}

func TestHandleListUniversities_EmptyStore(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleListUniversities(context.Background(), callRequest(map[string]interface{}{}))

	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), `"count": 0`)
}

func TestHandleListUniversities_SeededStore(t *testing.T) {
	s := newTestServer(t)
	seedServer(t, s)

	result, err := s.handleListUniversities(context.Background(), callRequest(map[string]interface{}{}))

	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "University of Patras")
	assert.Contains(t, text, `"count": 1`)
}

func TestHandleListUniversities_ReportsMirroredLessons(t *testing.T) {
	s := newTestServer(t)
	seedServer(t, s)

	result, err := s.handleListUniversities(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), `"mirrored_lessons": 0`)

	_, err = s.handleSyncDatabase(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)

	result, err = s.handleListUniversities(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), `"mirrored_lessons": 1`)
}

func TestHandleFindLesson_ReturnsMatches(t *testing.T) {
	s := newTestServer(t)
	seedServer(t, s)

	result, err := s.handleFindLesson(context.Background(), callRequest(map[string]interface{}{
		"query": "algorithms",
	}))

	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "ALGORITHMS")
	assert.Contains(t, text, "algorithm design")
}

func TestHandleFindLesson_EmptyQueryRejected(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleFindLesson(context.Background(), callRequest(map[string]interface{}{}))

	require.Error(t, err)
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestHandleFindLesson_UnknownUniversity(t *testing.T) {
	s := newTestServer(t)
	seedServer(t, s)

	_, err := s.handleFindLesson(context.Background(), callRequest(map[string]interface{}{
		"query":      "algorithms",
		"university": "atlantis school of magic",
	}))

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeUniversityNotFound, mcpErr.Code)
}

func TestHandleFindLesson_ThresholdArgument(t *testing.T) {
	s := newTestServer(t)
	seedServer(t, s)

	// A strict threshold turns a hit into an empty match list, not an error.
	result, err := s.handleFindLesson(context.Background(), callRequest(map[string]interface{}{
		"query":     "algoritms",
		"threshold": float64(100),
	}))

	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), `"matches": []`)
}

func TestHandleFindSkill_TieredResponse(t *testing.T) {
	s := newTestServer(t)
	seedServer(t, s)

	result, err := s.handleFindSkill(context.Background(), callRequest(map[string]interface{}{
		"query": "algorithm design",
	}))

	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, `"high"`)
	assert.Contains(t, text, "algorithm design")
}

func TestHandleProcessDocument_MissingDocumentRejected(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleProcessDocument(context.Background(), callRequest(map[string]interface{}{}))

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleAttributeSkills_UnknownUniversity(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleAttributeSkills(context.Background(), callRequest(map[string]interface{}{
		"university": "nowhere",
	}))

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeUniversityNotFound, mcpErr.Code)
}

func TestHandleAttributeSkills_UnknownLessonRejected(t *testing.T) {
	s := newTestServer(t)
	seedServer(t, s)

	_, err := s.handleAttributeSkills(context.Background(), callRequest(map[string]interface{}{
		"university": "patras",
		"lesson":     "UNDERWATER BASKET WEAVING",
	}))

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleAttributeSkills_SingleLessonScope(t *testing.T) {
	s := newTestServer(t)
	seedServer(t, s)

	result, err := s.handleAttributeSkills(context.Background(), callRequest(map[string]interface{}{
		"university": "patras",
		"lesson":     "algorithms",
	}))

	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, `"lessons": 1`)
	assert.Contains(t, text, `"attributed": 0`, "already attributed lesson is left alone without force")
}

func TestHandleSyncDatabase_MirrorsSeededCurriculum(t *testing.T) {
	s := newTestServer(t)
	seedServer(t, s)

	result, err := s.handleSyncDatabase(context.Background(), callRequest(map[string]interface{}{}))

	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "University of Patras")

	count, err := s.mirror.LessonCount(context.Background(), "University of Patras")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
