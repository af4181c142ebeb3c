package importer

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeExport(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestRunSendsBatchesAndSkipsOnRerun drives the full pipeline against a
// fake server and verifies the state DB makes the second run a no-op.
func TestRunSendsBatchesAndSkipsOnRerun(t *testing.T) {
	var received int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/import/" {
			t.Errorf("path = %q, want /api/v1/import/", r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "test-key" {
			t.Errorf("api key = %q, want test-key", got)
		}
		var req struct {
			Workouts []Record `json:"workouts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode batch: %v", err)
		}
		received += len(req.Workouts)
		json.NewEncoder(w).Encode(Result{
			Received: len(req.Workouts),
			Inserted: len(req.Workouts),
		})
	}))
	defer srv.Close()

	exportDir := t.TempDir()
	writeExport(t, exportDir, "a.json",
		`[{"username":"alice","type":"push","startTime":"2026-03-01T10:00:00Z"}]`)
	writeExport(t, exportDir, "b.json",
		`{"workouts":[{"username":"alice","type":"legs","startTime":"2026-03-02T10:00:00Z"},
		              {"username":"bob","type":"pull","startTime":"2026-03-02T11:00:00Z"}]}`)

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	im := New(NewClient(srv.URL, "test-key"), state, exportDir, false, 2, discardLogger())
	stats, err := im.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if received != 3 {
		t.Errorf("server received %d workouts, want 3", received)
	}
	if stats.FilesImported != 2 {
		t.Errorf("FilesImported = %d, want 2", stats.FilesImported)
	}
	if stats.WorkoutsInserted != 3 {
		t.Errorf("WorkoutsInserted = %d, want 3", stats.WorkoutsInserted)
	}
	if total, err := state.ImportedWorkouts(); err != nil || total != 3 {
		t.Errorf("ImportedWorkouts = %d, %v, want 3", total, err)
	}

	// Second run over the same files sends nothing.
	im2 := New(NewClient(srv.URL, "test-key"), state, exportDir, false, 2, discardLogger())
	stats2, err := im2.Run()
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if stats2.FilesSkipped != 2 {
		t.Errorf("FilesSkipped = %d, want 2", stats2.FilesSkipped)
	}
	if received != 3 {
		t.Errorf("server received %d workouts after rerun, want 3", received)
	}
}

// TestRunDryRunSendsNothing verifies dry-run mode does not hit the server.
func TestRunDryRunSendsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("dry-run must not send requests")
	}))
	defer srv.Close()

	exportDir := t.TempDir()
	writeExport(t, exportDir, "a.json",
		`[{"username":"alice","type":"push","startTime":"2026-03-01T10:00:00Z"}]`)

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	im := New(NewClient(srv.URL, "test-key"), state, exportDir, true, 10, discardLogger())
	stats, err := im.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.WorkoutsSent != 1 {
		t.Errorf("WorkoutsSent = %d, want 1", stats.WorkoutsSent)
	}
}

// TestRunSkipsMalformedFiles verifies a broken file is counted as an
// error without aborting the run.
func TestRunSkipsMalformedFiles(t *testing.T) {
	var received int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Workouts []Record `json:"workouts"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		received += len(req.Workouts)
		json.NewEncoder(w).Encode(Result{Received: len(req.Workouts), Inserted: len(req.Workouts)})
	}))
	defer srv.Close()

	exportDir := t.TempDir()
	writeExport(t, exportDir, "bad.json", `{{{not json`)
	writeExport(t, exportDir, "good.json",
		`[{"username":"alice","type":"push","startTime":"2026-03-01T10:00:00Z"}]`)

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	im := New(NewClient(srv.URL, "test-key"), state, exportDir, false, 10, discardLogger())
	stats, err := im.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.FilesErrored != 1 {
		t.Errorf("FilesErrored = %d, want 1", stats.FilesErrored)
	}
	if received != 1 {
		t.Errorf("server received %d workouts, want 1", received)
	}
}

// TestStateDBRoundTrip covers the mark/check cycle directly.
func TestStateDBRoundTrip(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	ok, err := state.IsImported("x.json", 10, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("fresh state reports file as imported")
	}

	if err := state.MarkImported("x.json", 10, "abc", 4); err != nil {
		t.Fatal(err)
	}

	ok, err = state.IsImported("x.json", 10, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("marked file not reported as imported")
	}

	// A changed hash means the file must be re-sent.
	ok, err = state.IsImported("x.json", 10, "different")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("changed hash still reported as imported")
	}

	// Re-marking the regenerated file replaces the row, not adds one.
	if err := state.MarkImported("x.json", 12, "different", 6); err != nil {
		t.Fatal(err)
	}
	if err := state.MarkImported("y.json", 5, "def", 2); err != nil {
		t.Fatal(err)
	}
	if total, err := state.ImportedWorkouts(); err != nil || total != 8 {
		t.Errorf("ImportedWorkouts = %d, %v, want 8", total, err)
	}
}
