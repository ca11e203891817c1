package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/skillcrawl/skillcrawl/internal/mcp"
	"github.com/skillcrawl/skillcrawl/internal/mirror"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("SkillCrawl MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", mirror.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", mirror.DriverName)
		os.Exit(0)
	}

	// Log startup info to stderr (stdout reserved for MCP protocol)
	log.SetOutput(os.Stderr)

	// Optional .env file for provider configuration
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	log.Printf("SkillCrawl MCP Server v%s starting...", version)
	log.Printf("Build Mode: %s, Driver: %s", mirror.BuildMode, mirror.DriverName)

	// Get data directory from environment or use default
	dataDir := os.Getenv("SKILLCRAWL_DATA_DIR")
	if dataDir == "" {
		dataDir = mcp.DefaultDataDir
	}

	server, err := mcp.NewServer(dataDir)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Println("MCP server ready, listening on stdio...")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}

	log.Println("Server stopped")
}
