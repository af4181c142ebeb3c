package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Equipment is the kind of equipment an exercise is performed with.
type Equipment string

const (
	EquipmentDumbbell   Equipment = "dumbbell"
	EquipmentBarbell    Equipment = "barbell"
	EquipmentBand       Equipment = "band"
	EquipmentCable      Equipment = "cable"
	EquipmentBodyweight Equipment = "bodyweight"
	EquipmentMachine    Equipment = "machine"
)

// Valid reports whether e is one of the known equipment values.
func (e Equipment) Valid() bool {
	switch e {
	case EquipmentDumbbell, EquipmentBarbell, EquipmentBand,
		EquipmentCable, EquipmentBodyweight, EquipmentMachine:
		return true
	}
	return false
}

// WorkoutType is the session split category.
type WorkoutType string

const (
	TypePush  WorkoutType = "push"
	TypePull  WorkoutType = "pull"
	TypeLegs  WorkoutType = "legs"
	TypeUpper WorkoutType = "upper"
	TypeLower WorkoutType = "lower"
	TypeOther WorkoutType = "other"
)

// Valid reports whether t is one of the known workout types.
func (t WorkoutType) Valid() bool {
	switch t {
	case TypePush, TypePull, TypeLegs, TypeUpper, TypeLower, TypeOther:
		return true
	}
	return false
}

// MaxNotesLen is the maximum accepted length for workout notes.
const MaxNotesLen = 500

// Set is a single recorded set: weight, reps, and an optional RPE score.
type Set struct {
	Weight float64  `json:"weight"`
	Reps   int      `json:"reps"`
	RPE    *float64 `json:"rpe"`
}

// UnmarshalJSON decodes a set permissively: numeric fields sent as strings
// are parsed, and anything non-numeric coerces to zero (weight/reps) or
// null (rpe). The input surface never rejected malformed numbers, so the
// decoder must not either.
func (s *Set) UnmarshalJSON(data []byte) error {
	var raw struct {
		Weight json.RawMessage `json:"weight"`
		Reps   json.RawMessage `json:"reps"`
		RPE    json.RawMessage `json:"rpe"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Weight = coerceFloat(raw.Weight)
	s.Reps = int(coerceFloat(raw.Reps))
	if f, ok := tryFloat(raw.RPE); ok {
		s.RPE = &f
	} else {
		s.RPE = nil
	}
	return nil
}

// coerceFloat parses a raw JSON value as a number, accepting quoted
// numbers, and returns 0 for anything else.
func coerceFloat(raw json.RawMessage) float64 {
	f, _ := tryFloat(raw)
	return f
}

func tryFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// Exercise is a named entry within a workout holding its recorded sets.
// The name is free text, not a catalog key.
type Exercise struct {
	Name       string    `json:"name"`
	Equipment  Equipment `json:"equipment"`
	WarmupSets int       `json:"warmupSets"`
	Sets       []Set     `json:"sets"`
}

// Workout is one training session. Exercises and sets are owned by the
// workout and have no independent lifecycle.
type Workout struct {
	ID          uuid.UUID   `json:"id"`
	UserID      int         `json:"userId"`
	Username    string      `json:"username"`
	Type        WorkoutType `json:"type"`
	Date        time.Time   `json:"date"`
	StartTime   time.Time   `json:"startTime"`
	EndTime     *time.Time  `json:"endTime"`
	Duration    *int        `json:"duration"` // minutes, derived
	IsCompleted bool        `json:"isCompleted"`
	Exercises   []Exercise  `json:"exercises"`
	Notes       string      `json:"notes,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Normalize derives duration and completion from the timestamps.
// Externally supplied duration/isCompleted values are never trusted:
// with both timestamps present, duration = round(minutes between them)
// and the workout is completed; otherwise both reset.
func (w *Workout) Normalize() {
	if w.EndTime != nil && !w.StartTime.IsZero() {
		mins := int(math.Round(w.EndTime.Sub(w.StartTime).Minutes()))
		w.Duration = &mins
		w.IsCompleted = true
		return
	}
	w.Duration = nil
	w.IsCompleted = false
}

// HasContent reports whether any exercise carries a non-empty name.
// Auto-save is a no-op for workouts without content.
func (w *Workout) HasContent() bool {
	for _, ex := range w.Exercises {
		if strings.TrimSpace(ex.Name) != "" {
			return true
		}
	}
	return false
}
