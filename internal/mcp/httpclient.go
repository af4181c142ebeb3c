package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ironlog/ironlog/internal/analytics"
	"github.com/ironlog/ironlog/internal/models"
	"github.com/ironlog/ironlog/internal/storage"
)

// HTTPClient implements DataSource by calling the REST API. Used for
// remote MCP mode where the binary runs locally (stdio) but data lives
// on the remote server.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, reqBody any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("httpclient: marshal body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		if resp.StatusCode == http.StatusNotFound {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, respBody)
	}

	return respBody, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

func (c *HTTPClient) GetUser(ctx context.Context, username string) (*models.User, error) {
	body, err := c.get(ctx, "/api/v1/auth/user/"+url.PathEscape(username), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		User models.User `json:"user"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode user: %w", err)
	}
	return &resp.User, nil
}

func (c *HTTPClient) ListWorkouts(ctx context.Context, username string, start, end *time.Time, limit int) ([]models.Workout, error) {
	params := url.Values{}
	if start != nil {
		params.Set("startDate", start.Format("2006-01-02"))
	}
	if end != nil {
		params.Set("endDate", end.Format("2006-01-02"))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/api/v1/workouts/"+url.PathEscape(username), params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Workouts []models.Workout `json:"workouts"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return resp.Workouts, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context, username string) ([]storage.ExerciseUsage, error) {
	body, err := c.get(ctx, "/api/v1/users/"+url.PathEscape(username)+"/exercises", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Exercises []storage.ExerciseUsage `json:"exercises"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return resp.Exercises, nil
}

func (c *HTTPClient) ExerciseAnalytics(ctx context.Context, username, exerciseName string, equipment models.Equipment) (*analytics.ExerciseAnalytics, error) {
	params := url.Values{}
	if equipment != "" {
		params.Set("equipment", string(equipment))
	}

	path := "/api/v1/users/" + url.PathEscape(username) + "/analytics/" + url.PathEscape(exerciseName)
	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Analytics analytics.ExerciseAnalytics `json:"analytics"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode analytics: %w", err)
	}
	return &resp.Analytics, nil
}

func (c *HTTPClient) PeriodStats(ctx context.Context, username string, days int) (*analytics.PeriodStats, error) {
	params := url.Values{}
	params.Set("days", strconv.Itoa(days))

	body, err := c.get(ctx, "/api/v1/users/"+url.PathEscape(username)+"/stats", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Stats analytics.PeriodStats `json:"stats"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode stats: %w", err)
	}
	return &resp.Stats, nil
}

// session.Store implementation: the session running inside the MCP
// binary persists through the same REST surface the web client uses.

func (c *HTTPClient) CreateWorkout(ctx context.Context, w *models.Workout) error {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/workouts/", nil, map[string]any{
		"username":  w.Username,
		"type":      w.Type,
		"date":      w.Date,
		"startTime": w.StartTime,
		"exercises": w.Exercises,
		"notes":     w.Notes,
	})
	if err != nil {
		return err
	}

	var resp struct {
		Workout models.Workout `json:"workout"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("httpclient: decode created workout: %w", err)
	}
	*w = resp.Workout
	return nil
}

func (c *HTTPClient) UpdateWorkoutExercises(ctx context.Context, id uuid.UUID, exercises []models.Exercise) error {
	if exercises == nil {
		exercises = []models.Exercise{}
	}
	_, err := c.do(ctx, http.MethodPut, "/api/v1/workouts/"+id.String(), nil, map[string]any{
		"exercises": exercises,
	})
	return err
}

func (c *HTTPClient) FinishWorkout(ctx context.Context, id uuid.UUID, endTime time.Time) (*models.Workout, error) {
	body, err := c.do(ctx, http.MethodPut, "/api/v1/workouts/"+id.String()+"/finish", nil, map[string]any{
		"endTime": endTime,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Workout models.Workout `json:"workout"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode finished workout: %w", err)
	}
	return &resp.Workout, nil
}
