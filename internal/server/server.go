// Package server wires the MCP surface: tool definitions, input decoding,
// and dispatch into the URL and script layers. No translation logic lives
// here; handlers validate input, hand it to internal/things, and make at
// most one external call.
package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/kevinberny/things-mcp/internal/config"
	"github.com/kevinberny/things-mcp/internal/launch"
	"github.com/kevinberny/things-mcp/internal/script"
)

// Server is the MCP server and its collaborators.
type Server struct {
	cfg      *config.Config
	launcher launch.Launcher
	script   *script.Client
	log      *zap.Logger
	impl     *mcp.Server
}

// New builds the server and registers every tool. A nil logger is replaced
// with a no-op one.
func New(version string, cfg *config.Config, launcher launch.Launcher, sc *script.Client, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:      cfg,
		launcher: launcher,
		script:   sc,
		log:      log,
		impl: mcp.NewServer(&mcp.Implementation{
			Name:    "things-mcp",
			Version: version,
		}, nil),
	}
	s.register()
	return s
}

// Run serves MCP on stdio until the context is canceled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.impl.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) register() {
	// Write tools: each builds a URL and hands it to the launcher.
	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "add_todo",
		Description: "Create a to-do in Things. Supports notes, scheduling (when/deadline), tags, checklist items, and placement in a list, project, or heading.",
	}, s.handleAddTodo)

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "add_project",
		Description: "Create a project in Things with optional notes, scheduling, tags, area, and initial to-dos.",
	}, s.handleAddProject)

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "add_structured_project",
		Description: "Create a project with headings, to-dos under them, and per-to-do checklist items in a single call. Section order is preserved.",
	}, s.handleAddStructuredProject)

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "update_todo",
		Description: "Update an existing to-do by id. Requires an auth token (auth_token argument, config file, or THINGS_AUTH_TOKEN).",
	}, s.handleUpdateTodo)

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "update_project",
		Description: "Update an existing project by id. Requires an auth token (auth_token argument, config file, or THINGS_AUTH_TOKEN).",
	}, s.handleUpdateProject)

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "restructure_project",
		Description: "Reorganize an existing project: create or rename headings, move to-dos under them in order, and optionally delete to-dos. Requires an auth token.",
	}, s.handleRestructureProject)

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "show_item",
		Description: "Bring Things forward showing an item by id or a built-in list by name, optionally filtered by tags.",
	}, s.handleShowItem)

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "search_items",
		Description: "Open the Things search screen with the given query.",
	}, s.handleSearchItems)

	// Read tools: each shells out to the automation interpreter.
	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "get_inbox",
		Description: "List to-dos in the Inbox.",
	}, s.listHandler(script.ListInbox))

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "get_today",
		Description: "List to-dos scheduled for Today.",
	}, s.listHandler(script.ListToday))

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "get_upcoming",
		Description: "List upcoming to-dos.",
	}, s.listHandler(script.ListUpcoming))

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "get_anytime",
		Description: "List to-dos in Anytime.",
	}, s.listHandler(script.ListAnytime))

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "get_someday",
		Description: "List to-dos in Someday.",
	}, s.listHandler(script.ListSomeday))

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "get_logbook",
		Description: "List completed to-dos from the Logbook.",
	}, s.listHandler(script.ListLogbook))

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "get_trash",
		Description: "List trashed to-dos.",
	}, s.listHandler(script.ListTrash))

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "get_projects",
		Description: "List all projects.",
	}, s.handleGetProjects)

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "get_areas",
		Description: "List all areas.",
	}, s.handleGetAreas)

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "get_tags",
		Description: "List all tags.",
	}, s.handleGetTags)

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "search_todos",
		Description: "Search to-dos by title or notes and return them as data (unlike search_items, which opens the Things search screen).",
	}, s.handleSearchTodos)

	mcp.AddTool(s.impl, &mcp.Tool{
		Name:        "get_project_todos",
		Description: "List the to-dos of a project by project id.",
	}, s.handleGetProjectTodos)

	s.log.Debug("tools registered")
}

func textResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}
