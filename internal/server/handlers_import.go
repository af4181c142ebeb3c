package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ironlog/ironlog/internal/models"
	"github.com/ironlog/ironlog/internal/storage"
)

// importWorkout is one record in an import batch. Records are keyed by
// username so export files stay portable across instances with
// different user IDs.
type importWorkout struct {
	Username  string             `json:"username"`
	Type      models.WorkoutType `json:"type"`
	Date      time.Time          `json:"date"`
	StartTime time.Time          `json:"startTime"`
	EndTime   *time.Time         `json:"endTime"`
	Exercises []models.Exercise  `json:"exercises"`
	Notes     string             `json:"notes"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Workouts []importWorkout `json:"workouts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", "invalid JSON: "+err.Error())
		return
	}
	if len(req.Workouts) == 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", "No workouts to import")
		return
	}

	// Username lookups repeat heavily within a batch.
	users := make(map[string]*models.User)
	var inserted, skipped int

	for _, rec := range req.Workouts {
		username := models.NormalizeUsername(rec.Username)
		rec.Type = normalizeWorkoutType(rec.Type)
		if username == "" || !rec.Type.Valid() || rec.StartTime.IsZero() {
			skipped++
			continue
		}

		user, cached := users[username]
		if !cached {
			var err error
			user, err = s.db.GetUserByUsername(r.Context(), username)
			if errors.Is(err, storage.ErrNotFound) {
				users[username] = nil
				skipped++
				continue
			}
			if err != nil {
				s.log.Error("import: lookup user", "username", username, "error", err)
				writeError(w, http.StatusInternalServerError, "Server error", "Import failed")
				return
			}
			users[username] = user
		}
		if user == nil {
			skipped++
			continue
		}

		workout := models.Workout{
			UserID:    user.ID,
			Username:  user.Username,
			Type:      rec.Type,
			Date:      rec.Date,
			StartTime: rec.StartTime,
			EndTime:   rec.EndTime,
			Exercises: rec.Exercises,
			Notes:     rec.Notes,
		}
		if workout.Date.IsZero() {
			workout.Date = rec.StartTime
		}

		if err := s.db.CreateWorkout(r.Context(), &workout); err != nil {
			s.log.Error("import: create workout", "username", username, "error", err)
			writeError(w, http.StatusInternalServerError, "Server error", "Import failed")
			return
		}
		inserted++
	}

	s.log.Info("import batch", "received", len(req.Workouts), "inserted", inserted, "skipped", skipped)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Import complete",
		"received": len(req.Workouts),
		"inserted": inserted,
		"skipped":  skipped,
	})
}
