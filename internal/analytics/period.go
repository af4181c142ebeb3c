package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/ironlog/ironlog/internal/models"
)

// Window describes the date window a workout list was restricted to.
// The workouts handed to ComputePeriodStats are expected to already be
// filtered to the window; the window itself only supplies the calendar
// context for the frequency figures.
type Window struct {
	days  int
	year  int
	month time.Month
}

// LastNDays is a rolling window of the last n days.
func LastNDays(n int) Window {
	return Window{days: n}
}

// Month is a calendar-month window.
func Month(year int, month time.Month) Window {
	return Window{year: year, month: month}
}

// IsMonth reports whether the window is a calendar month.
func (w Window) IsMonth() bool {
	return w.month != 0
}

// Days returns the window length in days.
func (w Window) Days() int {
	if w.IsMonth() {
		// Day zero of the next month is the last day of this one.
		return time.Date(w.year, w.month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	}
	return w.days
}

// Range returns the [start, end) time range the window covers, with the
// rolling variant anchored at now.
func (w Window) Range(now time.Time) (start, end time.Time) {
	if w.IsMonth() {
		start = time.Date(w.year, w.month, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	return now.AddDate(0, 0, -w.days), now
}

// ExerciseCount pairs an exercise name with its recorded set count.
type ExerciseCount struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
}

// PeriodStats holds aggregate statistics for a date window.
// WeeklyFrequency is populated for rolling windows, DaysPerWeek for
// calendar months.
type PeriodStats struct {
	TotalWorkouts      int                        `json:"totalWorkouts"`
	TotalExercises     int                        `json:"totalExercises"`
	TotalSets          int                        `json:"totalSets"`
	TotalVolume        float64                    `json:"totalVolume"`
	AvgWorkoutDuration int                        `json:"avgWorkoutDuration"`
	AvgRPE             float64                    `json:"avgRPE"`
	WorkoutTypes       map[models.WorkoutType]int `json:"workoutTypes"`
	EquipmentUsage     map[models.Equipment]int   `json:"equipmentUsage"`
	TopExercises       []ExerciseCount            `json:"topExercises"`
	WeeklyFrequency    float64                    `json:"weeklyFrequency,omitempty"`
	DaysPerWeek        float64                    `json:"daysPerWeek,omitempty"`
}

// topExercisesLimit caps the TopExercises list.
const topExercisesLimit = 10

// ComputePeriodStats aggregates the workouts of one window. Counts and
// sums are plain folds; TopExercises is the ten names with the most
// sets, descending, ties kept in first-encounter order so the output is
// stable for a fixed input.
func ComputePeriodStats(workouts []models.Workout, window Window) PeriodStats {
	stats := PeriodStats{
		TotalWorkouts:  len(workouts),
		WorkoutTypes:   make(map[models.WorkoutType]int),
		EquipmentUsage: make(map[models.Equipment]int),
		TopExercises:   []ExerciseCount{},
	}

	var totalDuration, durationCount int
	var rpeSum float64
	var rpeCount int

	setCounts := make(map[string]int)
	var nameOrder []string
	uniqueDates := make(map[string]struct{})

	for _, w := range workouts {
		uniqueDates[w.Date.Format("2006-01-02")] = struct{}{}
		stats.WorkoutTypes[w.Type]++

		if w.Duration != nil {
			totalDuration += *w.Duration
			durationCount++
		}

		for _, ex := range w.Exercises {
			stats.TotalExercises++
			stats.EquipmentUsage[ex.Equipment]++

			if _, seen := setCounts[ex.Name]; !seen {
				nameOrder = append(nameOrder, ex.Name)
			}
			setCounts[ex.Name] += len(ex.Sets)

			for _, set := range ex.Sets {
				stats.TotalSets++
				stats.TotalVolume += set.Weight * float64(set.Reps)
				if set.RPE != nil && *set.RPE != 0 {
					rpeSum += *set.RPE
					rpeCount++
				}
			}
		}
	}

	stats.TotalVolume = round1(stats.TotalVolume)
	if durationCount > 0 {
		stats.AvgWorkoutDuration = int(math.Round(float64(totalDuration) / float64(durationCount)))
	}
	if rpeCount > 0 {
		stats.AvgRPE = round1(rpeSum / float64(rpeCount))
	}

	top := make([]ExerciseCount, 0, len(nameOrder))
	for _, name := range nameOrder {
		top = append(top, ExerciseCount{Name: name, Sets: setCounts[name]})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Sets > top[j].Sets
	})
	if len(top) > topExercisesLimit {
		top = top[:topExercisesLimit]
	}
	stats.TopExercises = top

	if window.IsMonth() {
		weeksInMonth := math.Ceil(float64(window.Days()) / 7)
		if len(workouts) > 0 {
			stats.DaysPerWeek = round1(float64(len(uniqueDates)) / weeksInMonth)
		}
	} else if window.Days() > 0 {
		stats.WeeklyFrequency = round1(float64(stats.TotalWorkouts) / float64(window.Days()) * 7)
	}

	return stats
}
