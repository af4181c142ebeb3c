// Package importer bulk-loads workout export files into a running
// server through its import endpoint. An SQLite state database keyed by
// path, size, and content hash makes repeated runs idempotent at the
// file level.
package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ironlog/ironlog/internal/models"
)

// Record is one workout in an export file, keyed by username so files
// stay portable across instances.
type Record struct {
	Username  string             `json:"username"`
	Type      models.WorkoutType `json:"type"`
	Date      time.Time          `json:"date"`
	StartTime time.Time          `json:"startTime"`
	EndTime   *time.Time         `json:"endTime"`
	Exercises []models.Exercise  `json:"exercises"`
	Notes     string             `json:"notes"`
}

// Stats tracks import progress.
type Stats struct {
	FilesTotal    int
	FilesImported int
	FilesSkipped  int
	FilesErrored  int

	WorkoutsSent     int
	WorkoutsInserted int
	WorkoutsSkipped  int
}

// Importer walks a directory of JSON export files and sends their
// workouts to the server in batches.
type Importer struct {
	client    *Client
	state     *StateDB
	dir       string
	dryRun    bool
	batchSize int
	log       *slog.Logger
	stats     Stats
}

// New creates a new Importer.
func New(client *Client, state *StateDB, dir string, dryRun bool, batchSize int, log *slog.Logger) *Importer {
	return &Importer{
		client:    client,
		state:     state,
		dir:       dir,
		dryRun:    dryRun,
		batchSize: batchSize,
		log:       log,
	}
}

// fileInfo carries a file through the pipeline until its batch is
// confirmed, at which point it is recorded with its workout count.
type fileInfo struct {
	relPath  string
	size     int64
	hash     string
	workouts int
}

// Run executes the import pipeline over every .json file in the directory.
func (im *Importer) Run() (*Stats, error) {
	files, err := filepath.Glob(filepath.Join(im.dir, "*.json"))
	if err != nil {
		return &im.stats, err
	}

	var batch []Record
	var batchFiles []fileInfo

	for _, f := range files {
		im.stats.FilesTotal++

		relPath, _ := filepath.Rel(im.dir, f)
		info, err := os.Stat(f)
		if err != nil {
			im.log.Warn("stat failed", "file", f, "error", err)
			im.stats.FilesErrored++
			continue
		}

		hash, err := hashFile(f)
		if err != nil {
			im.log.Warn("hash failed", "file", f, "error", err)
			im.stats.FilesErrored++
			continue
		}

		imported, err := im.state.IsImported(relPath, info.Size(), hash)
		if err != nil {
			im.log.Warn("state check failed", "file", f, "error", err)
			im.stats.FilesErrored++
			continue
		}
		if imported {
			im.stats.FilesSkipped++
			continue
		}

		records, err := readExport(f)
		if err != nil {
			im.log.Warn("parse failed", "file", f, "error", err)
			im.stats.FilesErrored++
			continue
		}

		if len(records) == 0 {
			im.stats.FilesSkipped++
			// Mark empty files so we don't re-check them
			_ = im.state.MarkImported(relPath, info.Size(), hash, 0)
			continue
		}

		batch = append(batch, records...)
		batchFiles = append(batchFiles, fileInfo{
			relPath:  relPath,
			size:     info.Size(),
			hash:     hash,
			workouts: len(records),
		})

		if len(batch) >= im.batchSize {
			if err := im.sendBatch(batch, batchFiles); err != nil {
				return &im.stats, err
			}
			batch = nil
			batchFiles = nil
		}
	}

	if len(batch) > 0 {
		if err := im.sendBatch(batch, batchFiles); err != nil {
			return &im.stats, err
		}
	}

	return &im.stats, nil
}

// sendBatch sends a batch of records and marks their files as imported.
func (im *Importer) sendBatch(batch []Record, files []fileInfo) error {
	if im.dryRun {
		im.log.Info("dry-run: would send batch", "workouts", len(batch), "files", len(files))
	} else {
		result, err := im.client.SendBatch(batch)
		if err != nil {
			return fmt.Errorf("sending batch: %w", err)
		}
		im.stats.WorkoutsInserted += result.Inserted
		im.stats.WorkoutsSkipped += result.Skipped
	}

	im.stats.WorkoutsSent += len(batch)

	for _, fi := range files {
		if err := im.state.MarkImported(fi.relPath, fi.size, fi.hash, fi.workouts); err != nil {
			im.log.Warn("failed to mark imported", "file", fi.relPath, "error", err)
		}
		im.stats.FilesImported++
	}

	im.log.Info("sent batch", "workouts", len(batch), "files", len(files))
	return nil
}

// hashFile computes the SHA-256 content hash used in the state ledger.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// readExport parses an export file. Both a bare array of records and an
// object wrapping one under "workouts" are accepted.
func readExport(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var wrapped struct {
		Workouts []Record `json:"workouts"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return wrapped.Workouts, nil
}
