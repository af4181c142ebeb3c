// Package analytics computes derived statistics over a user's workout
// history. Both entry points are pure functions of the workout list they
// are given: no storage access, no hidden state, deterministic output
// for a fixed input.
package analytics

import (
	"math"
	"strings"
	"time"

	"github.com/ironlog/ironlog/internal/models"
)

// SetRecord is one matching set with its workout context.
type SetRecord struct {
	Date         time.Time        `json:"date"`
	Equipment    models.Equipment `json:"equipment"`
	ExerciseName string           `json:"exerciseName"`
	Weight       float64          `json:"weight"`
	Reps         int              `json:"reps"`
	RPE          *float64         `json:"rpe"`
}

// ExerciseAnalytics holds the aggregate statistics for one exercise name.
type ExerciseAnalytics struct {
	MaxWeight      float64     `json:"maxWeight"`
	TotalVolume    float64     `json:"totalVolume"`
	TimesPerformed int         `json:"timesPerformed"`
	AvgRPE         float64     `json:"avgRPE"`
	Sets           []SetRecord `json:"sets"`
}

// ComputeExerciseAnalytics aggregates every set of every exercise entry
// whose name contains exerciseName (case-insensitive substring match).
// A non-empty equipment filter additionally requires an exact equipment
// match. An empty exerciseName matches every exercise: the empty string
// is a substring of everything, and that behavior is kept as-is.
//
// The returned set list preserves workout/exercise/set iteration order.
// Empty history yields the all-zero result, not an error.
func ComputeExerciseAnalytics(workouts []models.Workout, exerciseName string, equipment models.Equipment) ExerciseAnalytics {
	target := strings.ToLower(exerciseName)

	result := ExerciseAnalytics{Sets: []SetRecord{}}
	var rpeSum float64
	var rpeCount int

	for _, w := range workouts {
		for _, ex := range w.Exercises {
			if !strings.Contains(strings.ToLower(ex.Name), target) {
				continue
			}
			if equipment != "" && ex.Equipment != equipment {
				continue
			}
			for _, set := range ex.Sets {
				result.TimesPerformed++
				result.TotalVolume += set.Weight * float64(set.Reps)
				if set.Weight > result.MaxWeight {
					result.MaxWeight = set.Weight
				}
				if set.RPE != nil && *set.RPE != 0 {
					rpeSum += *set.RPE
					rpeCount++
				}
				result.Sets = append(result.Sets, SetRecord{
					Date:         w.Date,
					Equipment:    ex.Equipment,
					ExerciseName: ex.Name,
					Weight:       set.Weight,
					Reps:         set.Reps,
					RPE:          set.RPE,
				})
			}
		}
	}

	result.TotalVolume = round1(result.TotalVolume)
	if rpeCount > 0 {
		result.AvgRPE = round1(rpeSum / float64(rpeCount))
	}
	return result
}

// round1 rounds to one decimal place, half away from zero. The reference
// outputs were produced this way; changing the rounding mode would change
// observable results.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
