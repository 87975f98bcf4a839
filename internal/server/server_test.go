package server

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinberny/things-mcp/internal/config"
	"github.com/kevinberny/things-mcp/internal/script"
	"github.com/kevinberny/things-mcp/internal/things"
)

type fakeLauncher struct {
	urls []string
	err  error
}

func (f *fakeLauncher) Open(ctx context.Context, rawURL string) error {
	if f.err != nil {
		return f.err
	}
	f.urls = append(f.urls, rawURL)
	return nil
}

type fakeRunner struct {
	out     []byte
	gotArgs []string
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	f.gotArgs = args
	return f.out, nil
}

func newTestServer(t *testing.T, cfg *config.Config, launcher *fakeLauncher, runner *fakeRunner) *Server {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	if launcher == nil {
		launcher = &fakeLauncher{}
	}
	if runner == nil {
		runner = &fakeRunner{out: []byte(`[]`)}
	}
	return New("test", cfg, launcher, script.NewClient(runner, nil), nil)
}

// queryOf parses the query of the single URL a fake launcher captured.
func queryOf(t *testing.T, launcher *fakeLauncher) url.Values {
	t.Helper()
	require.Len(t, launcher.urls, 1)
	u, err := url.Parse(launcher.urls[0])
	require.NoError(t, err)
	q, err := url.ParseQuery(u.RawQuery)
	require.NoError(t, err)
	return q
}

func TestAddTodoBuildsURL(t *testing.T) {
	launcher := &fakeLauncher{}
	s := newTestServer(t, nil, launcher, nil)

	res, _, err := s.handleAddTodo(context.Background(), nil, AddTodoInput{
		Title: "Buy milk",
		When:  "today",
		Tags:  []string{"errand", "home"},
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Len(t, launcher.urls, 1)
	assert.True(t, strings.HasPrefix(launcher.urls[0], "things:///add?"), launcher.urls[0])

	q := queryOf(t, launcher)
	assert.Equal(t, "Buy milk", q.Get("title"))
	assert.Equal(t, "today", q.Get("when"))
	assert.Equal(t, "errand,home", q.Get("tags"))
	_, hasNotes := q["notes"]
	assert.False(t, hasNotes, "empty notes must not leak into the URL")
}

func TestAddTodoRequiresTitle(t *testing.T) {
	launcher := &fakeLauncher{}
	s := newTestServer(t, nil, launcher, nil)

	_, _, err := s.handleAddTodo(context.Background(), nil, AddTodoInput{})
	assert.ErrorIs(t, err, things.ErrMissingTitle)
	assert.Empty(t, launcher.urls, "no external call after validation failure")
}

func TestUpdateTodoRequiresToken(t *testing.T) {
	t.Setenv(things.EnvAuthToken, "")
	launcher := &fakeLauncher{}
	s := newTestServer(t, nil, launcher, nil)

	_, _, err := s.handleUpdateTodo(context.Background(), nil, UpdateTodoInput{
		ID:    "todo-1",
		Title: "Renamed",
	})
	assert.ErrorIs(t, err, things.ErrTokenRequired)
	assert.Empty(t, launcher.urls, "token failure must precede any external call")
}

func TestUpdateTodoUsesConfigToken(t *testing.T) {
	t.Setenv(things.EnvAuthToken, "")
	launcher := &fakeLauncher{}
	cfg := config.Default()
	cfg.AuthToken = "cfg-token"
	s := newTestServer(t, cfg, launcher, nil)

	_, _, err := s.handleUpdateTodo(context.Background(), nil, UpdateTodoInput{
		ID:    "todo-1",
		Title: "Renamed",
	})
	require.NoError(t, err)

	q := queryOf(t, launcher)
	assert.Equal(t, "cfg-token", q.Get("auth-token"))
	assert.Equal(t, "todo-1", q.Get("id"))
}

func TestAddStructuredProject(t *testing.T) {
	launcher := &fakeLauncher{}
	s := newTestServer(t, nil, launcher, nil)

	_, _, err := s.handleAddStructuredProject(context.Background(), nil, AddStructuredProjectInput{
		Title: "Trip",
		Sections: []StructuredSectionInput{
			{Heading: "Before", Todos: []StructuredTodoInput{
				{Title: "Book flights", ChecklistItems: []string{"compare", "buy"}},
			}},
		},
	})
	require.NoError(t, err)

	require.Len(t, launcher.urls, 1)
	assert.True(t, strings.HasPrefix(launcher.urls[0], "things:///json?"), launcher.urls[0])

	q := queryOf(t, launcher)
	_, hasToken := q["auth-token"]
	assert.False(t, hasToken, "create-only batch needs no token")

	var ops []things.Operation
	require.NoError(t, json.Unmarshal([]byte(q.Get("data")), &ops))
	require.Len(t, ops, 1)
	assert.Equal(t, things.EntryProject, ops[0].Type)
	require.Len(t, ops[0].Items, 2)
	assert.Equal(t, things.EntryHeading, ops[0].Items[0].Type)
	assert.Equal(t, "Book flights", ops[0].Items[1].Attributes["title"])
}

func TestRestructureProjectRequiresToken(t *testing.T) {
	t.Setenv(things.EnvAuthToken, "")
	launcher := &fakeLauncher{}
	s := newTestServer(t, nil, launcher, nil)

	_, _, err := s.handleRestructureProject(context.Background(), nil, RestructureProjectInput{
		ProjectID:      "p1",
		UnsectionedIDs: []string{"a"},
	})
	assert.ErrorIs(t, err, things.ErrTokenRequired)
	assert.Empty(t, launcher.urls)
}

func TestRestructureProjectBuildsBatch(t *testing.T) {
	t.Setenv(things.EnvAuthToken, "env-token")
	launcher := &fakeLauncher{}
	s := newTestServer(t, nil, launcher, nil)

	res, _, err := s.handleRestructureProject(context.Background(), nil, RestructureProjectInput{
		ProjectID:      "p1",
		UnsectionedIDs: []string{"a", "b"},
		Sections: []RestructureSectionInput{
			{Heading: "Later", TodoIDs: []string{"c"}},
		},
		DeleteIDs: []string{"d"},
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	q := queryOf(t, launcher)
	assert.Equal(t, "env-token", q.Get("auth-token"))

	var ops []things.Operation
	require.NoError(t, json.Unmarshal([]byte(q.Get("data")), &ops))
	// Two moves, one heading create, one member move, one delete.
	require.Len(t, ops, 5)
	assert.Equal(t, things.OpMove, ops[0].Operation)
	assert.Equal(t, things.EntryHeading, ops[2].Type)
	assert.Equal(t, things.OpCreate, ops[2].Operation)
	assert.Equal(t, things.OpDelete, ops[4].Operation)
}

func TestWriteToolsCarryFullParamSurface(t *testing.T) {
	t.Setenv(things.EnvAuthToken, "env-token")
	yes := true

	t.Run("add_todo", func(t *testing.T) {
		launcher := &fakeLauncher{}
		s := newTestServer(t, nil, launcher, nil)

		_, _, err := s.handleAddTodo(context.Background(), nil, AddTodoInput{
			Title:          "Backfill",
			ShowQuickEntry: &yes,
			CreationDate:   "2025-01-01",
			CompletionDate: "2025-01-02",
		})
		require.NoError(t, err)

		q := queryOf(t, launcher)
		assert.Equal(t, "true", q.Get("show-quick-entry"))
		assert.Equal(t, "2025-01-01", q.Get("creation-date"))
		assert.Equal(t, "2025-01-02", q.Get("completion-date"))
	})

	t.Run("add_project", func(t *testing.T) {
		launcher := &fakeLauncher{}
		s := newTestServer(t, nil, launcher, nil)

		_, _, err := s.handleAddProject(context.Background(), nil, AddProjectInput{
			Title:     "Archive",
			Completed: &yes,
		})
		require.NoError(t, err)
		assert.Equal(t, "true", queryOf(t, launcher).Get("completed"))
	})

	t.Run("update_todo", func(t *testing.T) {
		launcher := &fakeLauncher{}
		s := newTestServer(t, nil, launcher, nil)

		_, _, err := s.handleUpdateTodo(context.Background(), nil, UpdateTodoInput{
			ID:                    "t1",
			PrependChecklistItems: []string{"first", "second"},
			CompletionDate:        "2025-02-03",
		})
		require.NoError(t, err)

		q := queryOf(t, launcher)
		assert.Equal(t, "first\nsecond", q.Get("prepend-checklist-items"))
		assert.Equal(t, "2025-02-03", q.Get("completion-date"))
	})

	t.Run("update_project", func(t *testing.T) {
		launcher := &fakeLauncher{}
		s := newTestServer(t, nil, launcher, nil)

		_, _, err := s.handleUpdateProject(context.Background(), nil, UpdateProjectInput{
			ID:        "p1",
			Duplicate: &yes,
		})
		require.NoError(t, err)
		assert.Equal(t, "true", queryOf(t, launcher).Get("duplicate"))
	})
}

func TestRestructureProjectRejectsUnplacedUpdate(t *testing.T) {
	t.Setenv(things.EnvAuthToken, "env-token")
	launcher := &fakeLauncher{}
	s := newTestServer(t, nil, launcher, nil)

	_, _, err := s.handleRestructureProject(context.Background(), nil, RestructureProjectInput{
		ProjectID:      "p1",
		UnsectionedIDs: []string{"a"},
		TodoUpdates: map[string]TodoUpdateInput{
			"ghost": {Title: "never lands"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
	assert.Empty(t, launcher.urls)
}

func TestRestructureProjectFoldsTodoUpdates(t *testing.T) {
	t.Setenv(things.EnvAuthToken, "env-token")
	launcher := &fakeLauncher{}
	s := newTestServer(t, nil, launcher, nil)

	_, _, err := s.handleRestructureProject(context.Background(), nil, RestructureProjectInput{
		ProjectID:      "p1",
		UnsectionedIDs: []string{"a", "b"},
		TodoUpdates: map[string]TodoUpdateInput{
			"a": {Title: "Renamed", When: "today"},
		},
	})
	require.NoError(t, err)

	var ops []things.Operation
	require.NoError(t, json.Unmarshal([]byte(queryOf(t, launcher).Get("data")), &ops))
	require.Len(t, ops, 2)

	// The attribute change rides the placement entry, turning it into an
	// update; the untouched sibling stays a pure move.
	assert.Equal(t, "a", ops[0].ID)
	assert.Equal(t, things.OpUpdate, ops[0].Operation)
	assert.Equal(t, "Renamed", ops[0].Attributes["title"])
	assert.Equal(t, "today", ops[0].Attributes["when"])
	assert.Equal(t, things.OpMove, ops[1].Operation)
}

func TestShowItemNeedsTarget(t *testing.T) {
	s := newTestServer(t, nil, nil, nil)

	_, _, err := s.handleShowItem(context.Background(), nil, ShowItemInput{})
	assert.Error(t, err)
}

func TestGetInbox(t *testing.T) {
	runner := &fakeRunner{out: []byte(`[{"id":"t1","title":"Sort mail","status":"open"}]`)}
	s := newTestServer(t, nil, nil, runner)

	handler := s.listHandler(script.ListInbox)
	res, _, err := handler(context.Background(), nil, EmptyInput{})
	require.NoError(t, err)

	require.Len(t, runner.gotArgs, 2)
	assert.Equal(t, []string{"list", "inbox"}, runner.gotArgs)

	require.Len(t, res.Content, 1)
	text := res.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, "Sort mail")
}

func TestGetProjectTodosValidates(t *testing.T) {
	s := newTestServer(t, nil, nil, nil)

	_, _, err := s.handleGetProjectTodos(context.Background(), nil, ProjectTodosInput{})
	assert.ErrorIs(t, err, things.ErrMissingID)
}
