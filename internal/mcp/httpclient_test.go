package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ironlog/ironlog/internal/models"
)

// TestHTTPClientListWorkouts verifies path, query params, and envelope
// unwrapping.
func TestHTTPClientListWorkouts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/workouts/alice" {
			t.Errorf("path = %q, want /api/v1/workouts/alice", r.URL.Path)
		}
		if got := r.URL.Query().Get("startDate"); got != "2026-03-01" {
			t.Errorf("startDate = %q, want 2026-03-01", got)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q, want 5", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"workouts": []models.Workout{
				{Username: "alice", Type: models.TypePush},
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	workouts, err := c.ListWorkouts(context.Background(), "alice", &start, nil, 5)
	if err != nil {
		t.Fatalf("ListWorkouts: %v", err)
	}
	if len(workouts) != 1 || workouts[0].Type != models.TypePush {
		t.Errorf("workouts = %+v, want one push workout", workouts)
	}
}

// TestHTTPClientExerciseAnalytics verifies the analytics envelope and
// equipment query param.
func TestHTTPClientExerciseAnalytics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/users/alice/analytics/bench press" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("equipment"); got != "barbell" {
			t.Errorf("equipment = %q, want barbell", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"exerciseName": "bench press",
			"analytics": map[string]any{
				"maxWeight":      110,
				"totalVolume":    830,
				"timesPerformed": 2,
				"avgRPE":         8.5,
				"sets":           []any{},
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	stats, err := c.ExerciseAnalytics(context.Background(), "alice", "bench press", models.EquipmentBarbell)
	if err != nil {
		t.Fatalf("ExerciseAnalytics: %v", err)
	}
	if stats.MaxWeight != 110 {
		t.Errorf("maxWeight = %v, want 110", stats.MaxWeight)
	}
	if stats.TimesPerformed != 2 {
		t.Errorf("timesPerformed = %d, want 2", stats.TimesPerformed)
	}
}

// TestHTTPClientCreateWorkoutAdoptsServerRecord verifies the session
// store path: the client POSTs the workout and replaces it with the
// server's stored version, including the assigned ID.
func TestHTTPClientCreateWorkoutAdoptsServerRecord(t *testing.T) {
	assigned := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/workouts/" {
			t.Errorf("%s %s, want POST /api/v1/workouts/", r.Method, r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["username"] != "alice" {
			t.Errorf("username = %v, want alice", req["username"])
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"workout": models.Workout{ID: assigned, Username: "alice", Type: models.TypeLegs},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	workout := models.Workout{Username: "alice", Type: models.TypeLegs, StartTime: time.Now()}
	if err := c.CreateWorkout(context.Background(), &workout); err != nil {
		t.Fatalf("CreateWorkout: %v", err)
	}
	if workout.ID != assigned {
		t.Errorf("ID = %v, want server-assigned %v", workout.ID, assigned)
	}
}

// TestHTTPClientFinishWorkout verifies the finish endpoint call.
func TestHTTPClientFinishWorkout(t *testing.T) {
	id := uuid.New()
	end := time.Date(2026, 3, 15, 11, 30, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/v1/workouts/"+id.String()+"/finish" {
			t.Errorf("%s %s, want PUT finish route", r.Method, r.URL.Path)
		}
		duration := 90
		json.NewEncoder(w).Encode(map[string]any{
			"workout": models.Workout{ID: id, Duration: &duration, IsCompleted: true},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	workout, err := c.FinishWorkout(context.Background(), id, end)
	if err != nil {
		t.Fatalf("FinishWorkout: %v", err)
	}
	if !workout.IsCompleted || workout.Duration == nil || *workout.Duration != 90 {
		t.Errorf("workout = %+v, want completed with duration 90", workout)
	}
}

// TestHTTPClientErrorStatus verifies non-2xx responses surface as errors.
func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	if _, err := c.ListExercises(context.Background(), "alice"); err == nil {
		t.Error("expected error for 500 response")
	}
}
