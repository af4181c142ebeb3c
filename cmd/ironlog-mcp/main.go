package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ironlog/ironlog/internal/config"
	"github.com/ironlog/ironlog/internal/mcp"
	"github.com/ironlog/ironlog/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "remote ironlog server URL; when set, data is accessed over its REST API")
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	user := flag.String("user", "", "default username for tool calls (or IRONLOG_MCP_USER)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("ironlog-mcp", Version)
		return
	}

	// Logs go to stderr; stdout carries the MCP stdio transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *user == "" {
		*user = os.Getenv("IRONLOG_MCP_USER")
	}
	if *user == "" {
		fmt.Fprintf(os.Stderr, "Error: -user is required (or set IRONLOG_MCP_USER)\n")
		os.Exit(1)
	}

	var ds mcp.DataSource
	if *serverURL != "" {
		ds = mcp.NewHTTPClient(*serverURL)
		log.Info("remote mode", "server", *serverURL, "user", *user)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		ds = mcp.NewLocalSource(db)
		log.Info("local mode", "user", *user)
	}

	s := mcp.New(ds, *user, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
