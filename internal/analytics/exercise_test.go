package analytics

import (
	"reflect"
	"testing"
	"time"

	"github.com/ironlog/ironlog/internal/models"
)

func rpe(v float64) *float64 { return &v }

func benchWorkout(date time.Time) models.Workout {
	return models.Workout{
		Type: models.TypePush,
		Date: date,
		Exercises: []models.Exercise{
			{
				Name:      "Bench Press",
				Equipment: models.EquipmentBarbell,
				Sets: []models.Set{
					{Weight: 100, Reps: 5, RPE: rpe(8)},
					{Weight: 110, Reps: 3, RPE: rpe(9)},
				},
			},
		},
	}
}

func TestComputeExerciseAnalyticsEmptyHistory(t *testing.T) {
	got := ComputeExerciseAnalytics(nil, "Bench Press", "")

	if got.MaxWeight != 0 || got.TotalVolume != 0 || got.TimesPerformed != 0 || got.AvgRPE != 0 {
		t.Errorf("empty history should produce all-zero result, got %+v", got)
	}
	if got.Sets == nil || len(got.Sets) != 0 {
		t.Errorf("empty history should produce empty (non-nil) sets list, got %#v", got.Sets)
	}
}

func TestComputeExerciseAnalyticsBench(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	workouts := []models.Workout{benchWorkout(date)}

	got := ComputeExerciseAnalytics(workouts, "bench", "")

	if got.MaxWeight != 110 {
		t.Errorf("MaxWeight = %v, want 110", got.MaxWeight)
	}
	if got.TotalVolume != 830.0 {
		t.Errorf("TotalVolume = %v, want 830.0", got.TotalVolume)
	}
	if got.TimesPerformed != 2 {
		t.Errorf("TimesPerformed = %v, want 2", got.TimesPerformed)
	}
	if got.AvgRPE != 8.5 {
		t.Errorf("AvgRPE = %v, want 8.5", got.AvgRPE)
	}
	if len(got.Sets) != 2 {
		t.Fatalf("len(Sets) = %d, want 2", len(got.Sets))
	}
	want := SetRecord{
		Date:         date,
		Equipment:    models.EquipmentBarbell,
		ExerciseName: "Bench Press",
		Weight:       100,
		Reps:         5,
		RPE:          got.Sets[0].RPE,
	}
	if got.Sets[0] != want {
		t.Errorf("Sets[0] = %+v, want %+v", got.Sets[0], want)
	}
}

func TestComputeExerciseAnalyticsEquipmentFilter(t *testing.T) {
	workouts := []models.Workout{benchWorkout(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))}

	tests := []struct {
		name      string
		equipment models.Equipment
		wantSets  int
	}{
		{"matching equipment", models.EquipmentBarbell, 2},
		{"non-matching equipment excludes everything", models.EquipmentDumbbell, 0},
		{"no filter includes everything", "", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeExerciseAnalytics(workouts, "bench", tt.equipment)
			if len(got.Sets) != tt.wantSets {
				t.Errorf("len(Sets) = %d, want %d", len(got.Sets), tt.wantSets)
			}
			if tt.wantSets == 0 && (got.MaxWeight != 0 || got.TotalVolume != 0 || got.TimesPerformed != 0 || got.AvgRPE != 0) {
				t.Errorf("filtered-out result should be all zeros, got %+v", got)
			}
		})
	}
}

func TestComputeExerciseAnalyticsNameMatching(t *testing.T) {
	workouts := []models.Workout{
		{
			Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			Exercises: []models.Exercise{
				{Name: "Incline Bench Press", Equipment: models.EquipmentBarbell, Sets: []models.Set{{Weight: 80, Reps: 8}}},
				{Name: "Squat", Equipment: models.EquipmentBarbell, Sets: []models.Set{{Weight: 140, Reps: 5}}},
				{Name: "Lateral Raise", Equipment: models.EquipmentDumbbell, Sets: []models.Set{{Weight: 10, Reps: 15}}},
			},
		},
	}

	tests := []struct {
		name     string
		target   string
		wantSets int
	}{
		{"case-insensitive substring", "BENCH", 1},
		{"substring within word", "quat", 1},
		{"no match", "deadlift", 0},
		{"empty target matches every exercise", "", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeExerciseAnalytics(workouts, tt.target, "")
			if len(got.Sets) != tt.wantSets {
				t.Errorf("len(Sets) = %d, want %d", len(got.Sets), tt.wantSets)
			}
		})
	}
}

// Weight and reps invariants are never enforced here: a negative weight or
// zero reps flows through the sums untouched.
func TestComputeExerciseAnalyticsPermissiveInputs(t *testing.T) {
	workouts := []models.Workout{
		{
			Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			Exercises: []models.Exercise{
				{Name: "Row", Equipment: models.EquipmentCable, Sets: []models.Set{
					{Weight: -5, Reps: 2},
					{Weight: 50, Reps: 0},
				}},
			},
		},
	}

	got := ComputeExerciseAnalytics(workouts, "row", "")

	if got.TimesPerformed != 2 {
		t.Errorf("TimesPerformed = %d, want 2", got.TimesPerformed)
	}
	if got.TotalVolume != -10.0 {
		t.Errorf("TotalVolume = %v, want -10.0", got.TotalVolume)
	}
	if got.MaxWeight != 50 {
		t.Errorf("MaxWeight = %v, want 50", got.MaxWeight)
	}
}

func TestComputeExerciseAnalyticsRPEHandling(t *testing.T) {
	zero := 0.0
	workouts := []models.Workout{
		{
			Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			Exercises: []models.Exercise{
				{Name: "Curl", Equipment: models.EquipmentDumbbell, Sets: []models.Set{
					{Weight: 20, Reps: 10, RPE: rpe(7)},
					{Weight: 20, Reps: 10},             // nil RPE ignored
					{Weight: 20, Reps: 10, RPE: &zero}, // zero RPE ignored
					{Weight: 20, Reps: 10, RPE: rpe(8)},
				}},
			},
		},
	}

	got := ComputeExerciseAnalytics(workouts, "curl", "")
	if got.AvgRPE != 7.5 {
		t.Errorf("AvgRPE = %v, want 7.5 (mean over defined, non-zero RPEs only)", got.AvgRPE)
	}

	noRPE := ComputeExerciseAnalytics([]models.Workout{
		{Exercises: []models.Exercise{{Name: "Curl", Sets: []models.Set{{Weight: 20, Reps: 10}}}}},
	}, "curl", "")
	if noRPE.AvgRPE != 0 {
		t.Errorf("AvgRPE = %v, want 0 when no set has RPE", noRPE.AvgRPE)
	}
}

func TestComputeExerciseAnalyticsIdempotent(t *testing.T) {
	workouts := []models.Workout{benchWorkout(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))}

	first := ComputeExerciseAnalytics(workouts, "bench", "")
	second := ComputeExerciseAnalytics(workouts, "bench", "")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated computation differs:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{830.0, 830.0},
		{8.46, 8.5},
		{8.44, 8.4},
		{2.25, 2.3}, // exact half rounds away from zero
		{123.456, 123.5},
	}
	for _, tt := range tests {
		if got := round1(tt.in); got != tt.want {
			t.Errorf("round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
