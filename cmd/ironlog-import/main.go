package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironlog/ironlog/internal/importer"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "ironlog server URL (e.g. https://ironlog.tail1234.ts.net)")
	apiKey := flag.String("api-key", "", "import API key (or IRONLOG_AUTH_API_KEY)")
	exportPath := flag.String("path", "", "directory of workout export .json files")
	dryRun := flag.Bool("dry-run", false, "parse files but don't send to server")
	batchSize := flag.Int("batch-size", 100, "workouts per import request")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("ironlog-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: ironlog-import -server <URL> -api-key <key> -path <export dir> [-dry-run] [-batch-size N]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *apiKey == "" {
		*apiKey = os.Getenv("IRONLOG_AUTH_API_KEY")
	}

	if !*dryRun {
		if *serverURL == "" {
			fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
			os.Exit(1)
		}
		if *apiKey == "" {
			fmt.Fprintf(os.Stderr, "Error: -api-key is required (or use -dry-run)\n")
			os.Exit(1)
		}
	}

	*serverURL = strings.TrimRight(*serverURL, "/")

	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export directory not found", "path", *exportPath)
		os.Exit(1)
	}

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	stateDir := filepath.Join(homeDir, ".ironlog-import")

	state, err := importer.OpenStateDB(stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if prior, err := state.ImportedWorkouts(); err == nil && prior > 0 {
		log.Info("resuming import", "previously_imported_workouts", prior)
	}

	// Client is nil-safe in dry-run mode
	var client *importer.Client
	if !*dryRun {
		client = importer.NewClient(*serverURL, *apiKey)
	}

	if *dryRun {
		log.Info("DRY RUN mode — files will be parsed but not sent")
	}

	imp := importer.New(client, state, *exportPath, *dryRun, *batchSize, log)
	stats, err := imp.Run()
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("import complete")
}

func printStats(stats *importer.Stats) {
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("  Files total:       %d\n", stats.FilesTotal)
	fmt.Printf("  Files imported:    %d\n", stats.FilesImported)
	fmt.Printf("  Files skipped:     %d (already imported)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:     %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Workouts sent:     %d\n", stats.WorkoutsSent)
	fmt.Printf("  Workouts inserted: %d\n", stats.WorkoutsInserted)
	fmt.Printf("  Workouts skipped:  %d (unknown user or invalid)\n", stats.WorkoutsSkipped)
	fmt.Println()
}
