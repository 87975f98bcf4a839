// Package script reads data back from Things through the macOS automation
// interpreter. The URL scheme is write-only, so every read query is one
// osascript invocation of an embedded JXA program that prints JSON on
// stdout.
package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUnsupportedPlatform is returned when the automation interpreter is not
// available on the host OS.
var ErrUnsupportedPlatform = errors.New("osascript queries require macOS")

const defaultTimeout = 30 * time.Second

// Runner executes the embedded query program with the given arguments and
// returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// OSARunner invokes osascript -l JavaScript with the embedded program.
type OSARunner struct {
	Timeout time.Duration
}

// Run executes one query. The first argument selects the query, the rest
// are query-specific.
func (r *OSARunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	if runtime.GOOS != "darwin" {
		return nil, fmt.Errorf("%w (have %s)", ErrUnsupportedPlatform, runtime.GOOS)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	argv := append([]string{"-l", "JavaScript", "-e", queryProgram}, args...)
	cmd := exec.CommandContext(ctx, "osascript", argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("osascript timed out after %s", timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("osascript failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("osascript failed: %w", err)
	}

	return stdout.Bytes(), nil
}

// Todo is a to-do as reported by the automation interface.
type Todo struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Notes    string   `json:"notes,omitempty"`
	Status   string   `json:"status"`
	When     string   `json:"when,omitempty"`
	Deadline string   `json:"deadline,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Project  string   `json:"project,omitempty"`
	Area     string   `json:"area,omitempty"`
}

// Project is a project as reported by the automation interface.
type Project struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Notes  string   `json:"notes,omitempty"`
	Status string   `json:"status"`
	Area   string   `json:"area,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// Area is an area of responsibility.
type Area struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Tag is a tag known to the application.
type Tag struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListName names one of the built-in lists.
type ListName string

// Built-in lists readable through the automation interface.
const (
	ListInbox    ListName = "inbox"
	ListToday    ListName = "today"
	ListUpcoming ListName = "upcoming"
	ListAnytime  ListName = "anytime"
	ListSomeday  ListName = "someday"
	ListLogbook  ListName = "logbook"
	ListTrash    ListName = "trash"
)

// Client issues typed read queries through a Runner.
type Client struct {
	runner Runner
	log    *zap.Logger
}

// NewClient builds a Client. A nil logger is replaced with a no-op one.
func NewClient(runner Runner, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{runner: runner, log: log}
}

// ListTodos returns the to-dos of one built-in list.
func (c *Client) ListTodos(ctx context.Context, list ListName) ([]Todo, error) {
	return runQuery[Todo](ctx, c, "list", string(list))
}

// ProjectTodos returns the to-dos of a project by id.
func (c *Client) ProjectTodos(ctx context.Context, projectID string) ([]Todo, error) {
	return runQuery[Todo](ctx, c, "project-todos", projectID)
}

// Search returns to-dos whose title or notes match the query.
func (c *Client) Search(ctx context.Context, query string) ([]Todo, error) {
	return runQuery[Todo](ctx, c, "search", query)
}

// Projects returns all projects.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	return runQuery[Project](ctx, c, "projects")
}

// Areas returns all areas.
func (c *Client) Areas(ctx context.Context) ([]Area, error) {
	return runQuery[Area](ctx, c, "areas")
}

// Tags returns all tags.
func (c *Client) Tags(ctx context.Context) ([]Tag, error) {
	return runQuery[Tag](ctx, c, "tags")
}

func runQuery[T any](ctx context.Context, c *Client, args ...string) ([]T, error) {
	start := time.Now()
	out, err := c.runner.Run(ctx, args...)
	if err != nil {
		return nil, err
	}

	var result []T
	if err := json.Unmarshal(bytes.TrimSpace(out), &result); err != nil {
		return nil, fmt.Errorf("decode %s output: %w", args[0], err)
	}

	c.log.Debug("query completed",
		zap.String("query", args[0]),
		zap.Int("rows", len(result)),
		zap.Duration("took", time.Since(start)))
	return result, nil
}

// queryProgram is the JXA program handed to osascript. It receives the
// query name and optional argument in argv and prints a JSON array.
const queryProgram = `
function run(argv) {
  const things = Application("Things3");
  const query = argv[0];
  const arg = argv[1];

  const lists = {
    inbox: "Inbox", today: "Today", upcoming: "Upcoming",
    anytime: "Anytime", someday: "Someday",
    logbook: "Logbook", trash: "Trash"
  };

  function dateStr(d) {
    if (!d) return "";
    return d.getFullYear() + "-" +
      String(d.getMonth() + 1).padStart(2, "0") + "-" +
      String(d.getDate()).padStart(2, "0");
  }

  function todo(t) {
    const out = {
      id: t.id(),
      title: t.name(),
      status: t.status()
    };
    const notes = t.notes();
    if (notes) out.notes = notes;
    const when = dateStr(t.activationDate());
    if (when) out.when = when;
    const deadline = dateStr(t.dueDate());
    if (deadline) out.deadline = deadline;
    const tags = t.tagNames();
    if (tags) out.tags = tags.split(", ");
    const project = t.project();
    if (project) out.project = project.name();
    const area = t.area();
    if (area) out.area = area.name();
    return out;
  }

  function project(p) {
    const out = {
      id: p.id(),
      title: p.name(),
      status: p.status()
    };
    const notes = p.notes();
    if (notes) out.notes = notes;
    const area = p.area();
    if (area) out.area = area.name();
    const tags = p.tagNames();
    if (tags) out.tags = tags.split(", ");
    return out;
  }

  let result = [];
  switch (query) {
  case "list":
    result = things.lists.byName(lists[arg]).toDos().map(todo);
    break;
  case "project-todos":
    result = things.projects.byId(arg).toDos().map(todo);
    break;
  case "search":
    result = things.toDos().filter(function(t) {
      const q = arg.toLowerCase();
      return t.name().toLowerCase().includes(q) ||
        (t.notes() || "").toLowerCase().includes(q);
    }).map(todo);
    break;
  case "projects":
    result = things.projects().map(project);
    break;
  case "areas":
    result = things.areas().map(function(a) {
      return { id: a.id(), title: a.name() };
    });
    break;
  case "tags":
    result = things.tags().map(function(t) {
      return { id: t.id(), title: t.name() };
    });
    break;
  default:
    throw new Error("unknown query: " + query);
  }

  return JSON.stringify(result);
}
`
