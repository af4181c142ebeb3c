package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ironlog/ironlog/internal/analytics"
	"github.com/ironlog/ironlog/internal/models"
	"github.com/ironlog/ironlog/internal/storage"
)

// normalizeWorkoutType lower-cases a workout type before validation, so
// clients may send "Push" for "push".
func normalizeWorkoutType(t models.WorkoutType) models.WorkoutType {
	return models.WorkoutType(strings.ToLower(string(t)))
}

type workoutRequest struct {
	Username  string             `json:"username"`
	Type      models.WorkoutType `json:"type"`
	Date      *time.Time         `json:"date"`
	StartTime *time.Time         `json:"startTime"`
	EndTime   *time.Time         `json:"endTime"`
	Exercises []models.Exercise  `json:"exercises"`
	Notes     string             `json:"notes"`
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var req workoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", "invalid JSON: "+err.Error())
		return
	}
	req.Type = normalizeWorkoutType(req.Type)
	if req.Username == "" || req.Type == "" || req.Date == nil || req.StartTime == nil {
		writeError(w, http.StatusBadRequest, "Validation failed",
			"Username, type, date, and start time are required")
		return
	}
	if !req.Type.Valid() {
		writeError(w, http.StatusBadRequest, "Validation failed", "Invalid workout type")
		return
	}
	if len(req.Notes) > models.MaxNotesLen {
		writeError(w, http.StatusBadRequest, "Validation failed", "Notes must be 500 characters or less")
		return
	}

	user, err := s.db.GetUserByUsername(r.Context(), req.Username)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found", "User does not exist")
		return
	}
	if err != nil {
		s.log.Error("create workout: lookup user", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error", "Failed to create workout")
		return
	}

	workout := models.Workout{
		UserID:    user.ID,
		Username:  user.Username,
		Type:      req.Type,
		Date:      *req.Date,
		StartTime: *req.StartTime,
		EndTime:   req.EndTime,
		Exercises: req.Exercises,
		Notes:     req.Notes,
	}

	if err := s.db.CreateWorkout(r.Context(), &workout); err != nil {
		s.log.Error("create workout", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error", "Failed to create workout")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Workout created successfully",
		"workout": workout,
	})
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}

	page, limit := pageParams(r)

	rng, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	total, err := s.db.CountWorkouts(r.Context(), user.ID, rng)
	if err != nil {
		s.log.Error("list workouts: count", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error", "Failed to get workouts")
		return
	}

	workouts, err := s.db.ListWorkouts(r.Context(), user.ID, rng, limit, (page-1)*limit)
	if err != nil {
		s.log.Error("list workouts", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error", "Failed to get workouts")
		return
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}

	totalPages := (total + limit - 1) / limit
	writeJSON(w, http.StatusOK, map[string]any{
		"workouts": workouts,
		"pagination": map[string]any{
			"currentPage":   page,
			"totalPages":    totalPages,
			"totalWorkouts": total,
			"hasNext":       page < totalPages,
			"hasPrev":       page > 1,
		},
	})
}

func (s *Server) handleMonthlyWorkouts(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 2000 || year > 2100 {
		writeError(w, http.StatusBadRequest, "Validation failed", "Invalid year")
		return
	}
	monthNum, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		writeError(w, http.StatusBadRequest, "Validation failed", "Invalid month")
		return
	}

	window := analytics.Month(year, time.Month(monthNum))
	start, end := window.Range(s.now())
	endInclusive := end.AddDate(0, 0, -1)
	rng := storage.DateRange{Start: &start, End: &endInclusive}

	workouts, err := s.db.ListWorkouts(r.Context(), user.ID, rng, 0, 0)
	if err != nil {
		s.log.Error("monthly workouts", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error", "Failed to get monthly workouts")
		return
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"year":     year,
		"month":    monthNum,
		"workouts": workouts,
		"stats":    analytics.ComputePeriodStats(workouts, window),
	})
}

func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := parseWorkoutID(w, r)
	if !ok {
		return
	}

	var req struct {
		Type      *models.WorkoutType `json:"type"`
		Date      *time.Time          `json:"date"`
		StartTime *time.Time          `json:"startTime"`
		EndTime   *time.Time          `json:"endTime"`
		Exercises *[]models.Exercise  `json:"exercises"`
		Notes     *string             `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", "invalid JSON: "+err.Error())
		return
	}
	if req.Type != nil {
		*req.Type = normalizeWorkoutType(*req.Type)
		if !req.Type.Valid() {
			writeError(w, http.StatusBadRequest, "Validation failed", "Invalid workout type")
			return
		}
	}
	if req.Notes != nil && len(*req.Notes) > models.MaxNotesLen {
		writeError(w, http.StatusBadRequest, "Validation failed", "Notes must be 500 characters or less")
		return
	}

	workout, err := s.db.UpdateWorkout(r.Context(), id, storage.UpdateWorkoutParams{
		Type:      req.Type,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Exercises: req.Exercises,
		Notes:     req.Notes,
	})
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Workout not found", "Workout does not exist")
		return
	}
	if err != nil {
		s.log.Error("update workout", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error", "Failed to update workout")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Workout updated successfully",
		"workout": workout,
	})
}

func (s *Server) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := parseWorkoutID(w, r)
	if !ok {
		return
	}

	endTime := s.now()
	if r.ContentLength != 0 {
		var req struct {
			EndTime *time.Time `json:"endTime"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Validation failed", "invalid JSON: "+err.Error())
			return
		}
		if req.EndTime != nil {
			endTime = *req.EndTime
		}
	}

	workout, err := s.db.FinishWorkout(r.Context(), id, endTime)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Workout not found", "Workout does not exist")
		return
	}
	if err != nil {
		s.log.Error("finish workout", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error", "Failed to finish workout")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Workout completed successfully",
		"workout": workout,
	})
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := parseWorkoutID(w, r)
	if !ok {
		return
	}

	err := s.db.DeleteWorkout(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Workout not found", "Workout does not exist")
		return
	}
	if err != nil {
		s.log.Error("delete workout", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error", "Failed to delete workout")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Workout deleted successfully",
	})
}

// lookupUser resolves the {username} URL parameter, writing the error
// response itself when the user does not exist.
func (s *Server) lookupUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	username := chi.URLParam(r, "username")
	user, err := s.db.GetUserByUsername(r.Context(), username)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found", "User does not exist")
		return nil, false
	}
	if err != nil {
		s.log.Error("lookup user", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error", "Failed to look up user")
		return nil, false
	}
	return user, true
}

func parseWorkoutID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "workoutID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", "Invalid workout ID")
		return uuid.Nil, false
	}
	return id, true
}

func parseDateRange(w http.ResponseWriter, r *http.Request) (storage.DateRange, bool) {
	var rng storage.DateRange
	for _, q := range []struct {
		name string
		dst  **time.Time
	}{
		{"startDate", &rng.Start},
		{"endDate", &rng.End},
	} {
		raw := r.URL.Query().Get(q.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Validation failed", "Invalid "+q.name)
			return storage.DateRange{}, false
		}
		*q.dst = &t
	}
	return rng, true
}

// defaultPageSize is the page size used when the limit query parameter
// is absent or not a positive integer.
const defaultPageSize = 50

func pageParams(r *http.Request) (page, limit int) {
	page = intQuery(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit = intQuery(r, "limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	return page, limit
}

func intQuery(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
