package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// processDocumentTool returns the tool definition for process_document
func processDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "process_document",
		Description: "Crawl a curriculum PDF (local path or URL) into the skill cache",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document": map[string]interface{}{
					"type":        "string",
					"description": "Local path or http(s) URL of the curriculum PDF",
				},
				"university": map[string]interface{}{
					"type":        "string",
					"description": "University name, overriding detection from document text",
				},
				"country": map[string]interface{}{
					"type":        "string",
					"description": "Country, overriding the keyword guess",
				},
				"attribute": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, run skill attribution on every lesson during the crawl",
					"default":     false,
				},
				"force_refresh": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-attribute lessons that already carry cached skill data",
					"default":     false,
				},
			},
			Required: []string{"document"},
		},
	}
}

// findLessonTool returns the tool definition for find_lesson
func findLessonTool() mcp.Tool {
	return mcp.Tool{
		Name:        "find_lesson",
		Description: "Fuzzy-search cached curricula for lessons by title",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Lesson title query",
				},
				"university": map[string]interface{}{
					"type":        "string",
					"description": "Restrict the search to one university (fuzzy matched)",
				},
				"threshold": map[string]interface{}{
					"type":        "integer",
					"description": "Minimum fuzzy score (1-100) to admit a match; server default when omitted",
				},
			},
			Required: []string{"query"},
		},
	}
}

// findSkillTool returns the tool definition for find_skill
func findSkillTool() mcp.Tool {
	return mcp.Tool{
		Name:        "find_skill",
		Description: "Fuzzy-search attributed skills, grouped into relevance tiers",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Skill name query",
				},
				"university": map[string]interface{}{
					"type":        "string",
					"description": "Restrict the search to one university (fuzzy matched)",
				},
				"threshold": map[string]interface{}{
					"type":        "integer",
					"description": "Minimum fuzzy score (1-100) to admit a match; server default when omitted",
				},
			},
			Required: []string{"query"},
		},
	}
}

// attributeSkillsTool returns the tool definition for attribute_skills
func attributeSkillsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "attribute_skills",
		Description: "Attribute skills to a university's cached lessons, or just one lesson",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"university": map[string]interface{}{
					"type":        "string",
					"description": "University whose lessons to attribute (fuzzy matched)",
				},
				"lesson": map[string]interface{}{
					"type":        "string",
					"description": "Attribute only this lesson (exact title, case-insensitive)",
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-attribute lessons that already have skill data",
					"default":     false,
				},
			},
			Required: []string{"university"},
		},
	}
}

// listUniversitiesTool returns the tool definition for list_universities
func listUniversitiesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_universities",
		Description: "List every cached university with its lesson count",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// syncDatabaseTool returns the tool definition for sync_database
func syncDatabaseTool() mcp.Tool {
	return mcp.Tool{
		Name:        "sync_database",
		Description: "Mirror cached curricula into the relational SQLite database",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"university": map[string]interface{}{
					"type":        "string",
					"description": "Sync only this university (fuzzy matched); all when omitted",
				},
			},
		},
	}
}
