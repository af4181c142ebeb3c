package mcp

import (
	"log/slog"
	"sync"

	"github.com/ironlog/ironlog/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
// defaultUser is the username tools fall back to when the call omits one.
func New(ds DataSource, defaultUser, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("ironlog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("ironlog workout tracking server. Query workout history, per-exercise analytics, and period statistics, or run a live workout session: start it, log exercises as they happen, and finish it to stamp the duration."),
	)

	h := &handlers{ds: ds, defaultUser: defaultUser, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetExerciseAnalytics, Handler: h.getExerciseAnalytics},
		server.ServerTool{Tool: toolGetPeriodStats, Handler: h.getPeriodStats},
		server.ServerTool{Tool: toolStartWorkout, Handler: h.startWorkout},
		server.ServerTool{Tool: toolLogExercise, Handler: h.logExercise},
		server.ServerTool{Tool: toolFinishWorkout, Handler: h.finishWorkout},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers. At most
// one workout session is live at a time, guarded by mu.
type handlers struct {
	ds          DataSource
	defaultUser string
	log         *slog.Logger

	mu   sync.Mutex
	sess *session.Session
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"ironlog://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)
