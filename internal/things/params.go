// Package things models the Things 3 URL-scheme API: typed parameters for
// each command, URL assembly, auth-token resolution, and construction of the
// batch JSON payload consumed by the json command.
//
// Encoding rules are uniform across commands: absent optional fields are
// omitted entirely (no empty-string keys), booleans serialize as
// "true"/"false", tag-like lists join with commas, and multi-line lists
// (checklist items, to-dos) join with newlines.
package things

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// List separators used by the URL scheme.
const (
	tagSeparator  = ","
	lineSeparator = "\n"
)

// AddParams holds the parameters of the add command, which creates a to-do.
type AddParams struct {
	Title          string
	Notes          string
	When           string
	Deadline       string
	Tags           []string
	ChecklistItems []string
	List           string
	ListID         string
	Heading        string
	Completed      *bool
	Canceled       *bool
	ShowQuickEntry *bool
	Reveal         *bool
	CreationDate   string
	CompletionDate string
}

// Validate checks that required fields are present.
func (p AddParams) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: to-do", ErrMissingTitle)
	}
	return nil
}

// Values serializes the parameters into URL query values.
func (p AddParams) Values() url.Values {
	v := url.Values{}
	setString(v, "title", p.Title)
	setString(v, "notes", p.Notes)
	setString(v, "when", p.When)
	setString(v, "deadline", p.Deadline)
	setList(v, "tags", p.Tags, tagSeparator)
	setList(v, "checklist-items", p.ChecklistItems, lineSeparator)
	setString(v, "list", p.List)
	setString(v, "list-id", p.ListID)
	setString(v, "heading", p.Heading)
	setBool(v, "completed", p.Completed)
	setBool(v, "canceled", p.Canceled)
	setBool(v, "show-quick-entry", p.ShowQuickEntry)
	setBool(v, "reveal", p.Reveal)
	setString(v, "creation-date", p.CreationDate)
	setString(v, "completion-date", p.CompletionDate)
	return v
}

// AddProjectParams holds the parameters of the add-project command.
type AddProjectParams struct {
	Title     string
	Notes     string
	When      string
	Deadline  string
	Tags      []string
	Area      string
	AreaID    string
	ToDos     []string
	Completed *bool
	Canceled  *bool
	Reveal    *bool
}

// Validate checks that required fields are present.
func (p AddProjectParams) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: project", ErrMissingTitle)
	}
	return nil
}

// Values serializes the parameters into URL query values.
func (p AddProjectParams) Values() url.Values {
	v := url.Values{}
	setString(v, "title", p.Title)
	setString(v, "notes", p.Notes)
	setString(v, "when", p.When)
	setString(v, "deadline", p.Deadline)
	setList(v, "tags", p.Tags, tagSeparator)
	setString(v, "area", p.Area)
	setString(v, "area-id", p.AreaID)
	setList(v, "to-dos", p.ToDos, lineSeparator)
	setBool(v, "completed", p.Completed)
	setBool(v, "canceled", p.Canceled)
	setBool(v, "reveal", p.Reveal)
	return v
}

// UpdateParams holds the parameters of the update command. The auth token
// must already be resolved; update is an update-class command and Things
// rejects it without one.
type UpdateParams struct {
	ID                    string
	AuthToken             string
	Title                 string
	Notes                 string
	PrependNotes          string
	AppendNotes           string
	When                  string
	Deadline              string
	Tags                  []string
	AddTags               []string
	ChecklistItems        []string
	PrependChecklistItems []string
	AppendChecklistItems  []string
	Completed             *bool
	Canceled              *bool
	Reveal                *bool
	Duplicate             *bool
	CreationDate          string
	CompletionDate        string
}

// Validate checks that required fields are present.
func (p UpdateParams) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: update", ErrMissingID)
	}
	if p.AuthToken == "" {
		return ErrTokenRequired
	}
	return nil
}

// Values serializes the parameters into URL query values.
func (p UpdateParams) Values() url.Values {
	v := url.Values{}
	setString(v, "id", p.ID)
	setString(v, "auth-token", p.AuthToken)
	setString(v, "title", p.Title)
	setString(v, "notes", p.Notes)
	setString(v, "prepend-notes", p.PrependNotes)
	setString(v, "append-notes", p.AppendNotes)
	setString(v, "when", p.When)
	setString(v, "deadline", p.Deadline)
	setList(v, "tags", p.Tags, tagSeparator)
	setList(v, "add-tags", p.AddTags, tagSeparator)
	setList(v, "checklist-items", p.ChecklistItems, lineSeparator)
	setList(v, "prepend-checklist-items", p.PrependChecklistItems, lineSeparator)
	setList(v, "append-checklist-items", p.AppendChecklistItems, lineSeparator)
	setBool(v, "completed", p.Completed)
	setBool(v, "canceled", p.Canceled)
	setBool(v, "reveal", p.Reveal)
	setBool(v, "duplicate", p.Duplicate)
	setString(v, "creation-date", p.CreationDate)
	setString(v, "completion-date", p.CompletionDate)
	return v
}

// UpdateProjectParams holds the parameters of the update-project command.
type UpdateProjectParams struct {
	ID           string
	AuthToken    string
	Title        string
	Notes        string
	PrependNotes string
	AppendNotes  string
	When         string
	Deadline     string
	Tags         []string
	AddTags      []string
	Completed    *bool
	Canceled     *bool
	Reveal       *bool
	Duplicate    *bool
}

// Validate checks that required fields are present.
func (p UpdateProjectParams) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: update-project", ErrMissingID)
	}
	if p.AuthToken == "" {
		return ErrTokenRequired
	}
	return nil
}

// Values serializes the parameters into URL query values.
func (p UpdateProjectParams) Values() url.Values {
	v := url.Values{}
	setString(v, "id", p.ID)
	setString(v, "auth-token", p.AuthToken)
	setString(v, "title", p.Title)
	setString(v, "notes", p.Notes)
	setString(v, "prepend-notes", p.PrependNotes)
	setString(v, "append-notes", p.AppendNotes)
	setString(v, "when", p.When)
	setString(v, "deadline", p.Deadline)
	setList(v, "tags", p.Tags, tagSeparator)
	setList(v, "add-tags", p.AddTags, tagSeparator)
	setBool(v, "completed", p.Completed)
	setBool(v, "canceled", p.Canceled)
	setBool(v, "reveal", p.Reveal)
	setBool(v, "duplicate", p.Duplicate)
	return v
}

// ShowParams holds the parameters of the show command. Either an id or a
// query must be given; Filter narrows the shown list by tags.
type ShowParams struct {
	ID     string
	Query  string
	Filter []string
}

// Validate checks that the command has a target.
func (p ShowParams) Validate() error {
	if p.ID == "" && p.Query == "" {
		return fmt.Errorf("%w: show needs an id or a query", ErrMissingID)
	}
	return nil
}

// Values serializes the parameters into URL query values.
func (p ShowParams) Values() url.Values {
	v := url.Values{}
	setString(v, "id", p.ID)
	setString(v, "query", p.Query)
	setList(v, "filter", p.Filter, tagSeparator)
	return v
}

// SearchParams holds the parameters of the search command.
type SearchParams struct {
	Query string
}

// Validate checks that the search has a query.
func (p SearchParams) Validate() error {
	if strings.TrimSpace(p.Query) == "" {
		return ErrMissingQuery
	}
	return nil
}

// Values serializes the parameters into URL query values.
func (p SearchParams) Values() url.Values {
	v := url.Values{}
	setString(v, "query", p.Query)
	return v
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setBool(v url.Values, key string, value *bool) {
	if value != nil {
		v.Set(key, strconv.FormatBool(*value))
	}
}

func setList(v url.Values, key string, items []string, sep string) {
	if len(items) > 0 {
		v.Set(key, strings.Join(items, sep))
	}
}
