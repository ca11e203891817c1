// Package mcp exposes the crawl, query, and sync operations as MCP tools
// served over stdio.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/skillcrawl/skillcrawl/internal/cachestore"
	"github.com/skillcrawl/skillcrawl/internal/extractor"
	"github.com/skillcrawl/skillcrawl/internal/fetch"
	"github.com/skillcrawl/skillcrawl/internal/mirror"
	"github.com/skillcrawl/skillcrawl/internal/pipeline"
	"github.com/skillcrawl/skillcrawl/internal/searcher"
	"github.com/skillcrawl/skillcrawl/internal/skills"
)

const (
	// ServerName is the MCP server name
	ServerName = "skillcrawl-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDataDir is the default location for caches and the mirror
	DefaultDataDir = "~/.skillcrawl"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp        *server.MCPServer
	store      *cachestore.Store
	pipeline   *pipeline.Pipeline
	engine     *searcher.Engine
	mirror     *mirror.Mirror
	fetcher    *fetch.Fetcher
	attributor *skills.Attributor
}

// NewServer creates a new MCP server instance rooted at dataDir.
func NewServer(dataDir string) (*Server, error) {
	if dataDir == "" || dataDir == DefaultDataDir {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".skillcrawl")
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := cachestore.NewStore(filepath.Join(dataDir, "cache"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache store: %w", err)
	}

	fetcher, err := fetch.New(filepath.Join(dataDir, "downloads"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fetcher: %w", err)
	}

	mir, err := mirror.Open(filepath.Join(dataDir, "skillcrawl.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror database: %w", err)
	}

	// Attribution is optional: without a configured provider the server
	// still crawls and serves cached data.
	attributor, err := skills.NewFromEnv()
	if err != nil {
		log.Printf("mcp: skill attribution disabled: %v", err)
		attributor = nil
	}

	pipe := pipeline.New(extractor.New(0), attributor, store)
	engine := searcher.New(store, attributor, searcher.DefaultConfig())

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:        mcpServer,
		store:      store,
		pipeline:   pipe,
		engine:     engine,
		mirror:     mir,
		fetcher:    fetcher,
		attributor: attributor,
	}

	if err := s.registerTools(); err != nil {
		_ = mir.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.mirror.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(processDocumentTool(), s.handleProcessDocument)
	s.mcp.AddTool(findLessonTool(), s.handleFindLesson)
	s.mcp.AddTool(findSkillTool(), s.handleFindSkill)
	s.mcp.AddTool(attributeSkillsTool(), s.handleAttributeSkills)
	s.mcp.AddTool(listUniversitiesTool(), s.handleListUniversities)
	s.mcp.AddTool(syncDatabaseTool(), s.handleSyncDatabase)
	return nil
}
