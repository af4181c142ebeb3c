package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ironlog/ironlog/internal/analytics"
	"github.com/ironlog/ironlog/internal/models"
	"github.com/ironlog/ironlog/internal/storage"
)

func (s *Server) handleExerciseAnalytics(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}

	exerciseName := chi.URLParam(r, "exerciseName")
	equipment := models.Equipment(r.URL.Query().Get("equipment"))
	if equipment != "" && !equipment.Valid() {
		writeError(w, http.StatusBadRequest, "Validation failed", "Invalid equipment type")
		return
	}

	workouts, err := s.db.ListWorkouts(r.Context(), user.ID, storage.DateRange{}, 0, 0)
	if err != nil {
		s.log.Error("exercise analytics", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error", "Failed to get exercise analytics")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"exerciseName": exerciseName,
		"analytics":    analytics.ComputeExerciseAnalytics(workouts, exerciseName, equipment),
	})
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}

	exercises, err := s.db.ListUserExercises(r.Context(), user.ID)
	if err != nil {
		s.log.Error("list exercises", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error", "Failed to get exercises")
		return
	}
	if exercises == nil {
		exercises = []storage.ExerciseUsage{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"exercises": exercises})
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}

	days := intQuery(r, "days", 30)
	if days < 1 {
		days = 30
	}

	window := analytics.LastNDays(days)
	start, _ := window.Range(s.now())
	rng := storage.DateRange{Start: &start}

	workouts, err := s.db.ListWorkouts(r.Context(), user.ID, rng, 0, 0)
	if err != nil {
		s.log.Error("user stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error", "Failed to get user stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"period": fmt.Sprintf("Last %d days", days),
		"stats":  analytics.ComputePeriodStats(workouts, window),
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}

	var req struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", "invalid JSON: "+err.Error())
		return
	}

	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" {
		writeError(w, http.StatusBadRequest, "Validation failed", "Phone number is required")
		return
	}
	if !models.ValidPhoneNumber(phone) {
		writeError(w, http.StatusBadRequest, "Validation failed", "Please enter a valid phone number")
		return
	}

	updated, err := s.db.UpdatePhoneNumber(r.Context(), user.ID, phone)
	if errors.Is(err, storage.ErrPhoneTaken) {
		writeError(w, http.StatusConflict, "Phone already registered",
			"This phone number is already registered.")
		return
	}
	if err != nil {
		s.log.Error("update profile", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error", "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    updated.Profile(),
	})
}
