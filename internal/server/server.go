package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ironlog/ironlog/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	log    *slog.Logger
	apiKey string
	router chi.Router
	now    func() time.Time
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
		now:    time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/check-username", s.handleCheckUsername)
			r.Get("/user/{username}", s.handleGetUser)
		})

		r.Route("/workouts", func(r chi.Router) {
			r.Post("/", s.handleCreateWorkout)
			r.Get("/{username}", s.handleListWorkouts)
			r.Get("/{username}/month/{year}/{month}", s.handleMonthlyWorkouts)
			r.Put("/{workoutID}", s.handleUpdateWorkout)
			r.Put("/{workoutID}/finish", s.handleFinishWorkout)
			r.Delete("/{workoutID}", s.handleDeleteWorkout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{username}/analytics/{exerciseName}", s.handleExerciseAnalytics)
			r.Get("/{username}/exercises", s.handleListExercises)
			r.Get("/{username}/stats", s.handleUserStats)
			r.Put("/{username}/profile", s.handleUpdateProfile)
		})

		// Batch import (API key required)
		r.Route("/import", func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/", s.handleImport)
		})
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found",
			"Cannot "+r.Method+" "+r.URL.Path)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"message":   "ironlog API is running",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError emits the {error, message} body shape the clients expect.
func writeError(w http.ResponseWriter, status int, errLabel, message string) {
	writeJSON(w, status, map[string]string{
		"error":   errLabel,
		"message": message,
	})
}
