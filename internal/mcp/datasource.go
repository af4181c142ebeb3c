package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ironlog/ironlog/internal/analytics"
	"github.com/ironlog/ironlog/internal/models"
	"github.com/ironlog/ironlog/internal/session"
	"github.com/ironlog/ironlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. The local database
// adapter and HTTPClient (remote via REST API) both satisfy it. The
// embedded session.Store is what lets a live workout session persist
// through either path.
type DataSource interface {
	session.Store

	GetUser(ctx context.Context, username string) (*models.User, error)
	ListWorkouts(ctx context.Context, username string, start, end *time.Time, limit int) ([]models.Workout, error)
	ListExercises(ctx context.Context, username string) ([]storage.ExerciseUsage, error)
	ExerciseAnalytics(ctx context.Context, username, exerciseName string, equipment models.Equipment) (*analytics.ExerciseAnalytics, error)
	PeriodStats(ctx context.Context, username string, days int) (*analytics.PeriodStats, error)
}

// Compile-time checks: both adapters satisfy DataSource.
var (
	_ DataSource = (*localSource)(nil)
	_ DataSource = (*HTTPClient)(nil)
)

// localSource adapts *storage.DB to DataSource: usernames resolve to
// user IDs and analytics are computed in-process over the user's
// workout history.
type localSource struct {
	db *storage.DB
}

// NewLocalSource wraps a database handle as a DataSource.
func NewLocalSource(db *storage.DB) DataSource {
	return &localSource{db: db}
}

func (l *localSource) GetUser(ctx context.Context, username string) (*models.User, error) {
	return l.db.GetUserByUsername(ctx, username)
}

func (l *localSource) ListWorkouts(ctx context.Context, username string, start, end *time.Time, limit int) ([]models.Workout, error) {
	user, err := l.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return l.db.ListWorkouts(ctx, user.ID, storage.DateRange{Start: start, End: end}, limit, 0)
}

func (l *localSource) ListExercises(ctx context.Context, username string) ([]storage.ExerciseUsage, error) {
	user, err := l.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return l.db.ListUserExercises(ctx, user.ID)
}

func (l *localSource) ExerciseAnalytics(ctx context.Context, username, exerciseName string, equipment models.Equipment) (*analytics.ExerciseAnalytics, error) {
	workouts, err := l.ListWorkouts(ctx, username, nil, nil, 0)
	if err != nil {
		return nil, err
	}
	result := analytics.ComputeExerciseAnalytics(workouts, exerciseName, equipment)
	return &result, nil
}

func (l *localSource) PeriodStats(ctx context.Context, username string, days int) (*analytics.PeriodStats, error) {
	window := analytics.LastNDays(days)
	start, _ := window.Range(time.Now())

	workouts, err := l.ListWorkouts(ctx, username, &start, nil, 0)
	if err != nil {
		return nil, err
	}
	stats := analytics.ComputePeriodStats(workouts, window)
	return &stats, nil
}

// session.Store passes straight through to the database.

func (l *localSource) CreateWorkout(ctx context.Context, w *models.Workout) error {
	return l.db.CreateWorkout(ctx, w)
}

func (l *localSource) UpdateWorkoutExercises(ctx context.Context, id uuid.UUID, exercises []models.Exercise) error {
	return l.db.UpdateWorkoutExercises(ctx, id, exercises)
}

func (l *localSource) FinishWorkout(ctx context.Context, id uuid.UUID, endTime time.Time) (*models.Workout, error) {
	return l.db.FinishWorkout(ctx, id, endTime)
}
