package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ironlog/ironlog/internal/models"
)

const workoutColumns = `id, user_id, username, type, date, start_time, end_time,
	 duration_min, is_completed, exercises, notes, created_at, updated_at`

// DateRange bounds a workout query. Either side may be nil (unbounded).
// Bounds are inclusive on the workout date, matching the original query
// surface.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// CreateWorkout inserts a workout, assigning an ID when absent and
// deriving duration/completion before the write.
func (db *DB) CreateWorkout(ctx context.Context, w *models.Workout) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	w.Normalize()

	exercises, err := marshalExercises(w.Exercises)
	if err != nil {
		return err
	}

	row := db.Pool.QueryRow(ctx,
		`INSERT INTO workouts (id, user_id, username, type, date, start_time, end_time,
		 duration_min, is_completed, exercises, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 RETURNING created_at, updated_at`,
		w.ID, w.UserID, w.Username, w.Type, w.Date, w.StartTime, w.EndTime,
		w.Duration, w.IsCompleted, exercises, w.Notes)
	if err := row.Scan(&w.CreatedAt, &w.UpdatedAt); err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}
	return nil
}

// GetWorkout retrieves a single workout by ID.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = $1`, id)
	return scanWorkout(row)
}

// ListWorkouts retrieves a user's workouts in the range, newest first.
// limit <= 0 means no limit.
func (db *DB) ListWorkouts(ctx context.Context, userID int, rng DateRange, limit, offset int) ([]models.Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id = $1`
	args := []any{userID}

	if rng.Start != nil {
		args = append(args, *rng.Start)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if rng.End != nil {
		args = append(args, *rng.End)
		query += fmt.Sprintf(` AND date <= $%d`, len(args))
	}
	query += ` ORDER BY date DESC, created_at DESC`
	if limit > 0 {
		args = append(args, limit, offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *w)
	}
	return result, rows.Err()
}

// CountWorkouts returns the number of a user's workouts in the range.
func (db *DB) CountWorkouts(ctx context.Context, userID int, rng DateRange) (int, error) {
	query := `SELECT COUNT(*) FROM workouts WHERE user_id = $1`
	args := []any{userID}
	if rng.Start != nil {
		args = append(args, *rng.Start)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if rng.End != nil {
		args = append(args, *rng.End)
		query += fmt.Sprintf(` AND date <= $%d`, len(args))
	}

	var count int
	if err := db.Pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting workouts: %w", err)
	}
	return count, nil
}

// UpdateWorkoutParams are the caller-updatable workout fields. Nil means
// leave unchanged. Identity and ownership fields are not updatable.
type UpdateWorkoutParams struct {
	Type      *models.WorkoutType
	Date      *time.Time
	StartTime *time.Time
	EndTime   *time.Time
	Exercises *[]models.Exercise
	Notes     *string
}

// UpdateWorkout applies a partial update. The workout is re-read, fields
// applied, duration/completion re-derived, and the row written back.
func (db *DB) UpdateWorkout(ctx context.Context, id uuid.UUID, params UpdateWorkoutParams) (*models.Workout, error) {
	w, err := db.GetWorkout(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Type != nil {
		w.Type = *params.Type
	}
	if params.Date != nil {
		w.Date = *params.Date
	}
	if params.StartTime != nil {
		w.StartTime = *params.StartTime
	}
	if params.EndTime != nil {
		w.EndTime = params.EndTime
	}
	if params.Exercises != nil {
		w.Exercises = *params.Exercises
	}
	if params.Notes != nil {
		w.Notes = *params.Notes
	}
	w.Normalize()

	return db.writeWorkout(ctx, w)
}

// UpdateWorkoutExercises replaces a workout's exercise list without
// touching anything else. This is the auto-save path.
func (db *DB) UpdateWorkoutExercises(ctx context.Context, id uuid.UUID, exercises []models.Exercise) error {
	data, err := marshalExercises(exercises)
	if err != nil {
		return err
	}
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workouts SET exercises = $2, updated_at = NOW() WHERE id = $1`,
		id, data)
	if err != nil {
		return fmt.Errorf("updating workout exercises: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FinishWorkout stamps the end time and derives duration/completion.
func (db *DB) FinishWorkout(ctx context.Context, id uuid.UUID, endTime time.Time) (*models.Workout, error) {
	w, err := db.GetWorkout(ctx, id)
	if err != nil {
		return nil, err
	}
	w.EndTime = &endTime
	w.Normalize()
	return db.writeWorkout(ctx, w)
}

// DeleteWorkout removes a workout and, with it, every nested exercise
// and set.
func (db *DB) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) writeWorkout(ctx context.Context, w *models.Workout) (*models.Workout, error) {
	exercises, err := marshalExercises(w.Exercises)
	if err != nil {
		return nil, err
	}
	row := db.Pool.QueryRow(ctx,
		`UPDATE workouts
		 SET type = $2, date = $3, start_time = $4, end_time = $5,
		     duration_min = $6, is_completed = $7, exercises = $8, notes = $9,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		w.ID, w.Type, w.Date, w.StartTime, w.EndTime,
		w.Duration, w.IsCompleted, exercises, w.Notes)
	if err := row.Scan(&w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating workout: %w", err)
	}
	return w, nil
}

func marshalExercises(exercises []models.Exercise) ([]byte, error) {
	if exercises == nil {
		exercises = []models.Exercise{}
	}
	data, err := json.Marshal(exercises)
	if err != nil {
		return nil, fmt.Errorf("marshaling exercises: %w", err)
	}
	return data, nil
}

func scanWorkout(row pgx.Row) (*models.Workout, error) {
	var w models.Workout
	var exercises []byte
	err := row.Scan(&w.ID, &w.UserID, &w.Username, &w.Type, &w.Date, &w.StartTime, &w.EndTime,
		&w.Duration, &w.IsCompleted, &exercises, &w.Notes, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning workout: %w", err)
	}
	if len(exercises) > 0 {
		if err := json.Unmarshal(exercises, &w.Exercises); err != nil {
			return nil, fmt.Errorf("decoding exercises: %w", err)
		}
	}
	return &w, nil
}
