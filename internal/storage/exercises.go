package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ironlog/ironlog/internal/models"
)

// ExerciseUsage is one distinct (name, equipment) pair from a user's
// history with its usage count and most recent date.
type ExerciseUsage struct {
	Name          string           `json:"name"`
	Equipment     models.Equipment `json:"equipment"`
	Count         int              `json:"count"`
	LastPerformed time.Time        `json:"lastPerformed"`
}

// ListUserExercises returns the distinct exercises a user has logged,
// most used first, name as tie-break. Exercises live inside the
// workouts JSONB column, so the grouping flattens it in SQL.
func (db *DB) ListUserExercises(ctx context.Context, userID int) ([]ExerciseUsage, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT exercise->>'name' AS name,
		        exercise->>'equipment' AS equipment,
		        COUNT(*)::int AS count,
		        MAX(date) AS last_performed
		 FROM (
		     SELECT date, jsonb_array_elements(exercises) AS exercise
		     FROM workouts
		     WHERE user_id = $1
		 ) flattened
		 WHERE exercise->>'name' <> ''
		 GROUP BY exercise->>'name', exercise->>'equipment'
		 ORDER BY count DESC, name ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying user exercises: %w", err)
	}
	defer rows.Close()

	var result []ExerciseUsage
	for rows.Next() {
		var e ExerciseUsage
		if err := rows.Scan(&e.Name, &e.Equipment, &e.Count, &e.LastPerformed); err != nil {
			return nil, fmt.Errorf("scanning exercise usage: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
