package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ironlog/ironlog/internal/models"
	"github.com/ironlog/ironlog/internal/storage"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", "invalid JSON: "+err.Error())
		return
	}

	username := models.NormalizeUsername(req.Username)
	phone := strings.TrimSpace(req.PhoneNumber)
	if username == "" || phone == "" {
		writeError(w, http.StatusBadRequest, "Validation failed", "Username and phone number are required")
		return
	}
	if !models.ValidUsername(username) {
		writeError(w, http.StatusBadRequest, "Validation failed", "Username must be between 3 and 30 characters")
		return
	}
	if !models.ValidPhoneNumber(phone) {
		writeError(w, http.StatusBadRequest, "Validation failed", "Please enter a valid phone number")
		return
	}

	user, err := s.db.CreateUser(r.Context(), username, phone)
	switch {
	case errors.Is(err, storage.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "User already exists",
			"Username already taken. Please choose a different one.")
		return
	case errors.Is(err, storage.ErrPhoneTaken):
		writeError(w, http.StatusConflict, "Phone already registered",
			"This phone number is already registered.")
		return
	case err != nil:
		s.log.Error("register", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error",
			"Failed to create account. Please try again.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Account created successfully",
		"user":    user.Profile(),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		writeError(w, http.StatusBadRequest, "Validation failed", "Username is required")
		return
	}

	user, err := s.db.GetUserByUsername(r.Context(), models.NormalizeUsername(req.Username))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found",
			"Username not found. Please create an account first.")
		return
	}
	if err != nil {
		s.log.Error("login", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error", "Login failed. Please try again.")
		return
	}

	now := s.now()
	if err := s.db.UpdateLastLogin(r.Context(), user.ID, now); err != nil {
		s.log.Error("login: update last login", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error", "Login failed. Please try again.")
		return
	}
	user.LastLogin = &now

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    user.Profile(),
	})
}

func (s *Server) handleCheckUsername(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		writeError(w, http.StatusBadRequest, "Validation failed", "Username is required")
		return
	}

	exists, err := s.db.UsernameExists(r.Context(), models.NormalizeUsername(req.Username))
	if err != nil {
		s.log.Error("check username", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error",
			"Failed to check username availability")
		return
	}

	message := "Username available"
	if exists {
		message = "Username already taken"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"available": !exists,
		"message":   message,
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := s.db.GetUserByUsername(r.Context(), username)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found", "User does not exist")
		return
	}
	if err != nil {
		s.log.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error", "Failed to get user profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user.Profile()})
}
