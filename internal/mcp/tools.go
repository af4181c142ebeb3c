package mcp

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/ironlog/ironlog/internal/models"
	"github.com/ironlog/ironlog/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
)

// optionalDateRange parses start/end into pointers, leaving a side nil
// when its parameter is empty.
func optionalDateRange(startStr, endStr string) (start, end *time.Time, err error) {
	if startStr != "" {
		t, err := parseFlexTime(startStr)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if endStr != "" {
		t, err := parseFlexTime(endStr)
		if err != nil {
			return nil, nil, err
		}
		end = &t
	}
	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// username resolves the effective username for a tool call.
func (h *handlers) username(req mcp.CallToolRequest) string {
	return req.GetString("username", h.defaultUser)
}

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List a user's workouts, newest first. Each workout includes its exercises and sets."),
	mcp.WithString("username", mcp.Description("Username. Defaults to the configured user.")),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Unbounded if omitted.")),
	mcp.WithString("end", mcp.Description("End date. Unbounded if omitted.")),
	mcp.WithString("limit", mcp.Description("Maximum number of workouts to return. Defaults to 20.")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the distinct exercises a user has logged, with usage counts and the date each was last performed."),
	mcp.WithString("username", mcp.Description("Username. Defaults to the configured user.")),
)

var toolGetExerciseAnalytics = mcp.NewTool("get_exercise_analytics",
	mcp.WithDescription("Aggregate statistics for one exercise across a user's full history: max weight, total volume, times performed, average RPE, and every matching set. The exercise name matches as a case-insensitive substring."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (partial match, e.g. 'bench press')")),
	mcp.WithString("username", mcp.Description("Username. Defaults to the configured user.")),
	mcp.WithString("equipment", mcp.Description("Filter by equipment type"), mcp.Enum("dumbbell", "barbell", "band", "cable", "bodyweight", "machine")),
)

var toolGetPeriodStats = mcp.NewTool("get_period_stats",
	mcp.WithDescription("Aggregate training statistics over the last N days: totals, average duration and RPE, workout type and equipment breakdowns, top exercises by set count, and weekly frequency."),
	mcp.WithString("username", mcp.Description("Username. Defaults to the configured user.")),
	mcp.WithString("days", mcp.Description("Window length in days. Defaults to 30.")),
)

var toolStartWorkout = mcp.NewTool("start_workout",
	mcp.WithDescription("Start a live workout session. Creates the workout record and stamps the start time. Only one session can be active at a time."),
	mcp.WithString("type", mcp.Required(), mcp.Description("Workout type"), mcp.Enum("push", "pull", "legs", "upper", "lower", "other")),
	mcp.WithString("username", mcp.Description("Username. Defaults to the configured user.")),
)

var toolLogExercise = mcp.NewTool("log_exercise",
	mcp.WithDescription("Add an exercise with its sets to the active workout session and save immediately."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Exercise name")),
	mcp.WithString("equipment", mcp.Description("Equipment used"), mcp.Enum("dumbbell", "barbell", "band", "cable", "bodyweight", "machine")),
	mcp.WithString("warmup_sets", mcp.Description("Number of warmup sets (not counted in analytics)")),
	mcp.WithString("sets", mcp.Description(`Working sets as a JSON array, e.g. [{"weight":80,"reps":8,"rpe":7.5}]`)),
)

var toolFinishWorkout = mcp.NewTool("finish_workout",
	mcp.WithDescription("Finish the active workout session: stamps the end time and returns the completed workout with its derived duration."),
)

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := optionalDateRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	limit := 20
	if raw := req.GetString("limit", ""); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return mcp.NewToolResultError("invalid limit"), nil
		}
	}

	workouts, err := h.ds.ListWorkouts(ctx, h.username(req), start, end, limit)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.ListExercises(ctx, h.username(req))
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseAnalytics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	equipment := models.Equipment(req.GetString("equipment", ""))
	if equipment != "" && !equipment.Valid() {
		return mcp.NewToolResultError("invalid equipment type"), nil
	}

	stats, err := h.ds.ExerciseAnalytics(ctx, h.username(req), exercise, equipment)
	if err != nil {
		h.log.Error("mcp get_exercise_analytics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPeriodStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := 30
	if raw := req.GetString("days", ""); raw != "" {
		var err error
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 {
			return mcp.NewToolResultError("invalid days"), nil
		}
	}

	stats, err := h.ds.PeriodStats(ctx, h.username(req), days)
	if err != nil {
		h.log.Error("mcp get_period_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) startWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typeStr, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type parameter is required"), nil
	}
	workoutType := models.WorkoutType(typeStr)
	if !workoutType.Valid() {
		return mcp.NewToolResultError("invalid workout type"), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sess != nil && h.sess.State() == session.Active {
		return mcp.NewToolResultError("a workout is already active; finish it first"), nil
	}

	user, err := h.ds.GetUser(ctx, h.username(req))
	if err != nil {
		h.log.Error("mcp start_workout: lookup user", "error", err)
		return mcp.NewToolResultError("user lookup failed: " + err.Error()), nil
	}

	sess := session.New(h.ds, user.ID, user.Username, workoutType)
	if err := sess.Start(ctx); err != nil {
		h.log.Error("mcp start_workout", "error", err)
		return mcp.NewToolResultError("start failed: " + err.Error()), nil
	}
	h.sess = sess

	result, err := mcp.NewToolResultJSON(sess.Workout())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	equipment := models.Equipment(req.GetString("equipment", ""))
	if equipment != "" && !equipment.Valid() {
		return mcp.NewToolResultError("invalid equipment type"), nil
	}

	warmup := 0
	if raw := req.GetString("warmup_sets", ""); raw != "" {
		warmup, err = strconv.Atoi(raw)
		if err != nil || warmup < 0 {
			return mcp.NewToolResultError("invalid warmup_sets"), nil
		}
	}

	var sets []models.Set
	if raw := req.GetString("sets", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sets); err != nil {
			return mcp.NewToolResultError("invalid sets JSON: " + err.Error()), nil
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sess == nil || h.sess.State() != session.Active {
		return mcp.NewToolResultError("no active workout; call start_workout first"), nil
	}

	h.sess.AddExercise(models.Exercise{
		Name:       name,
		Equipment:  equipment,
		WarmupSets: warmup,
		Sets:       sets,
	})
	if err := h.sess.Save(ctx); err != nil {
		h.log.Error("mcp log_exercise: save", "error", err)
		return mcp.NewToolResultError("save failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(h.sess.Workout())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) finishWorkout(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sess == nil {
		return mcp.NewToolResultError("no active workout; call start_workout first"), nil
	}

	workout, err := h.sess.Finish(ctx)
	if err != nil {
		h.log.Error("mcp finish_workout", "error", err)
		return mcp.NewToolResultError("finish failed: " + err.Error()), nil
	}
	h.sess = nil

	result, err := mcp.NewToolResultJSON(workout)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
