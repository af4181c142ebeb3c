// Package session drives the lifecycle of a single workout:
// NotStarted → Active → Finished. Saving while Active persists the
// current exercise list without closing the session; finishing stamps
// the end time and derives the final duration. There is no way out of
// Finished other than deleting the workout through the store.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ironlog/ironlog/internal/models"
)

// State is the lifecycle position of a session.
type State int

const (
	NotStarted State = iota
	Active
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Active:
		return "active"
	case Finished:
		return "finished"
	}
	return "unknown"
}

var (
	ErrNotActive      = errors.New("session: not active")
	ErrAlreadyStarted = errors.New("session: already started")
	ErrFinished       = errors.New("session: already finished")
)

// Store is the write side of the workout store the session persists to.
// *storage.DB satisfies it; so does the REST client used by the MCP
// binary.
type Store interface {
	CreateWorkout(ctx context.Context, w *models.Workout) error
	UpdateWorkoutExercises(ctx context.Context, id uuid.UUID, exercises []models.Exercise) error
	FinishWorkout(ctx context.Context, id uuid.UUID, endTime time.Time) (*models.Workout, error)
}

// Session tracks one in-progress workout.
type Session struct {
	store Store
	now   func() time.Time

	mu      sync.Mutex
	saveMu  sync.Mutex // serializes saves; auto-save skips when held
	state   State
	workout models.Workout
}

// New creates a session in the NotStarted state for the given user.
func New(store Store, userID int, username string, workoutType models.WorkoutType) *Session {
	return &Session{
		store: store,
		now:   time.Now,
		workout: models.Workout{
			UserID:   userID,
			Username: username,
			Type:     workoutType,
		},
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Workout returns a copy of the session's workout as last known.
func (s *Session) Workout() models.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workout
}

// Start transitions NotStarted → Active: stamps the start time and
// creates the workout record.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Active:
		return ErrAlreadyStarted
	case Finished:
		return ErrFinished
	}

	now := s.now()
	s.workout.Date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	s.workout.StartTime = now
	if err := s.store.CreateWorkout(ctx, &s.workout); err != nil {
		return err
	}
	s.state = Active
	return nil
}

// SetExercises replaces the session's local exercise list. The next
// save persists it.
func (s *Session) SetExercises(exercises []models.Exercise) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workout.Exercises = exercises
}

// AddExercise appends one exercise to the local list.
func (s *Session) AddExercise(ex models.Exercise) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workout.Exercises = append(s.workout.Exercises, ex)
}

// Save persists the current exercise list. Active → Active; repeated
// calls are safe.
func (s *Session) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.persist(ctx)
}

// AutoSave is the timer-driven variant of Save. It reports whether a
// save was performed: it skips the tick when a save is already in
// flight (a stale tick must never overwrite a newer save) and no-ops
// when no exercise has a non-empty name.
func (s *Session) AutoSave(ctx context.Context) (bool, error) {
	if !s.saveMu.TryLock() {
		return false, nil
	}
	defer s.saveMu.Unlock()

	s.mu.Lock()
	hasContent := s.workout.HasContent()
	s.mu.Unlock()
	if !hasContent {
		return false, nil
	}
	if err := s.persist(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) persist(ctx context.Context) error {
	s.mu.Lock()
	state := s.state
	id := s.workout.ID
	exercises := make([]models.Exercise, len(s.workout.Exercises))
	copy(exercises, s.workout.Exercises)
	s.mu.Unlock()

	switch state {
	case NotStarted:
		return ErrNotActive
	case Finished:
		return ErrFinished
	}
	return s.store.UpdateWorkoutExercises(ctx, id, exercises)
}

// Finish transitions Active → Finished: stamps the end time, persists,
// and adopts the stored workout with its derived duration.
func (s *Session) Finish(ctx context.Context) (*models.Workout, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case NotStarted:
		return nil, ErrNotActive
	case Finished:
		return nil, ErrFinished
	}

	if err := s.store.UpdateWorkoutExercises(ctx, s.workout.ID, s.workout.Exercises); err != nil {
		return nil, err
	}
	finished, err := s.store.FinishWorkout(ctx, s.workout.ID, s.now())
	if err != nil {
		return nil, err
	}
	s.workout = *finished
	s.state = Finished
	return finished, nil
}

// RunAutoSave ticks AutoSave at the given interval until ctx is done or
// the session finishes. Save errors are returned to the caller through
// the errs channel if one is supplied; ticks keep running regardless,
// matching the fire-and-forget client timer this replaces.
func (s *Session) RunAutoSave(ctx context.Context, interval time.Duration, errs chan<- error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.State() == Finished {
				return
			}
			if _, err := s.AutoSave(ctx); err != nil && errs != nil {
				select {
				case errs <- err:
				default:
				}
			}
		}
	}
}
