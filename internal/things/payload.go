package things

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// EntryType identifies a batch payload entry.
type EntryType string

// Entry types accepted by the json command.
const (
	EntryTodo          EntryType = "to-do"
	EntryProject       EntryType = "project"
	EntryHeading       EntryType = "heading"
	EntryChecklistItem EntryType = "checklist-item"
)

// OpKind is what the application should do with a batch entry.
type OpKind string

// Operation kinds.
const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpMove   OpKind = "move"
	OpDelete OpKind = "delete"
)

// Operation is one entry in the json command's batch payload.
// Nested entries (a project's headings and to-dos, a to-do's checklist
// items) go in Items; everything else is a flat attribute.
type Operation struct {
	Type       EntryType      `json:"type"`
	ID         string         `json:"id,omitempty"`
	Operation  OpKind         `json:"operation,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Items      []Operation    `json:"items,omitempty"`
}

// TodoDraft describes a to-do being created inside a structured project.
type TodoDraft struct {
	Title          string
	Notes          string
	When           string
	Deadline       string
	Tags           []string
	ChecklistItems []string
}

// SectionDraft groups to-dos under an optional heading. A section without a
// heading title contributes its to-dos directly to the project body.
type SectionDraft struct {
	Heading string
	Todos   []TodoDraft
}

// ProjectDraft is the nested input of the structured-project tool: project
// fields plus an ordered list of sections.
type ProjectDraft struct {
	Title    string
	Notes    string
	When     string
	Deadline string
	Tags     []string
	Area     string
	AreaID   string
	Sections []SectionDraft
}

// ProjectOperations flattens a draft into the single project create entry
// the json command expects. Section order is preserved: each heading entry
// is followed by its member to-dos, and checklist items nest inside their
// to-do entry.
func ProjectOperations(d ProjectDraft) ([]Operation, error) {
	if strings.TrimSpace(d.Title) == "" {
		return nil, fmt.Errorf("%w: project", ErrMissingTitle)
	}

	attrs := map[string]any{"title": d.Title}
	putString(attrs, "notes", d.Notes)
	putString(attrs, "when", d.When)
	putString(attrs, "deadline", d.Deadline)
	putList(attrs, "tags", d.Tags)
	putString(attrs, "area", d.Area)
	putString(attrs, "area-id", d.AreaID)

	var items []Operation
	for _, sec := range d.Sections {
		if sec.Heading != "" {
			items = append(items, Operation{
				Type:       EntryHeading,
				Attributes: map[string]any{"title": sec.Heading},
			})
		}
		for _, td := range sec.Todos {
			entry, err := todoEntry(td)
			if err != nil {
				return nil, err
			}
			items = append(items, entry)
		}
	}

	return []Operation{{
		Type:       EntryProject,
		Operation:  OpCreate,
		Attributes: attrs,
		Items:      items,
	}}, nil
}

func todoEntry(t TodoDraft) (Operation, error) {
	if strings.TrimSpace(t.Title) == "" {
		return Operation{}, fmt.Errorf("%w: to-do", ErrMissingTitle)
	}

	attrs := map[string]any{"title": t.Title}
	putString(attrs, "notes", t.Notes)
	putString(attrs, "when", t.When)
	putString(attrs, "deadline", t.Deadline)
	putList(attrs, "tags", t.Tags)

	var items []Operation
	for _, c := range t.ChecklistItems {
		items = append(items, Operation{
			Type:       EntryChecklistItem,
			Attributes: map[string]any{"title": c},
		})
	}

	return Operation{Type: EntryTodo, Attributes: attrs, Items: items}, nil
}

// HeadingSpec names a heading in the desired project layout. A spec without
// an ID describes a heading that does not exist yet and will be created with
// a generated identifier.
type HeadingSpec struct {
	ID    string
	Title string
}

// TodoPlacement pins an existing to-do into the layout. Update carries
// attribute changes that ride along with the move; when present the entry
// becomes an update instead of a plain move.
type TodoPlacement struct {
	ID     string
	Update map[string]any
}

// RestructureSection is one heading and the to-dos placed under it, in order.
type RestructureSection struct {
	Heading HeadingSpec
	Todos   []TodoPlacement
}

// Restructure describes the desired layout of an existing project.
// Unsectioned to-dos sit above the first heading, matching how Things lays
// out a project body.
type Restructure struct {
	ProjectID   string
	Unsectioned []TodoPlacement
	Sections    []RestructureSection
	Deletions   []string
}

// RestructureOperations flattens the desired layout into the ordered flat
// operation list the json command consumes. A single index counter runs
// through every positioned entry so sibling order survives the round trip:
// loose to-dos first, then each heading followed by its members.
func RestructureOperations(r Restructure) ([]Operation, error) {
	if strings.TrimSpace(r.ProjectID) == "" {
		return nil, fmt.Errorf("%w: project", ErrMissingID)
	}
	if len(r.Unsectioned) == 0 && len(r.Sections) == 0 && len(r.Deletions) == 0 {
		return nil, ErrNoOperations
	}

	var ops []Operation
	index := 0

	for _, p := range r.Unsectioned {
		entry, err := placementEntry(p, "", r.ProjectID, index)
		if err != nil {
			return nil, err
		}
		ops = append(ops, entry)
		index++
	}

	for _, sec := range r.Sections {
		headingID := sec.Heading.ID
		if headingID == "" {
			if strings.TrimSpace(sec.Heading.Title) == "" {
				return nil, fmt.Errorf("%w: heading", ErrMissingTitle)
			}
			headingID = uuid.NewString()
			ops = append(ops, Operation{
				Type:      EntryHeading,
				ID:        headingID,
				Operation: OpCreate,
				Attributes: map[string]any{
					"title":      sec.Heading.Title,
					"project-id": r.ProjectID,
					"index":      index,
				},
			})
		} else {
			attrs := map[string]any{"index": index}
			putString(attrs, "title", sec.Heading.Title)
			ops = append(ops, Operation{
				Type:       EntryHeading,
				ID:         headingID,
				Operation:  InferOperation(headingID, attrs),
				Attributes: attrs,
			})
		}
		index++

		for _, p := range sec.Todos {
			entry, err := placementEntry(p, headingID, r.ProjectID, index)
			if err != nil {
				return nil, err
			}
			ops = append(ops, entry)
			index++
		}
	}

	for _, id := range r.Deletions {
		if id == "" {
			return nil, fmt.Errorf("%w: deletion", ErrMissingID)
		}
		ops = append(ops, Operation{Type: EntryTodo, ID: id, Operation: OpDelete})
	}

	return ops, nil
}

func placementEntry(p TodoPlacement, headingID, projectID string, index int) (Operation, error) {
	if p.ID == "" {
		return Operation{}, fmt.Errorf("%w: to-do placement", ErrMissingID)
	}

	attrs := map[string]any{"index": index}
	if headingID != "" {
		attrs["heading-id"] = headingID
	} else {
		attrs["project-id"] = projectID
	}
	for k, v := range p.Update {
		attrs[k] = v
	}

	return Operation{
		Type:       EntryTodo,
		ID:         p.ID,
		Operation:  InferOperation(p.ID, attrs),
		Attributes: attrs,
	}, nil
}

// InferOperation decides what the application should do with an entry when
// the caller did not say. No id means the entry must be created. An id with
// nothing but positional attributes is a plain move; anything else is an
// update.
func InferOperation(id string, attrs map[string]any) OpKind {
	if id == "" {
		return OpCreate
	}
	for k := range attrs {
		switch k {
		case "index", "heading-id", "project-id":
		default:
			return OpUpdate
		}
	}
	return OpMove
}

// JSONValues serializes a batch into the query parameters of the json
// command. The token may be empty for create-only batches.
func JSONValues(ops []Operation, token string, reveal *bool) (url.Values, error) {
	if len(ops) == 0 {
		return nil, ErrNoOperations
	}
	data, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("encode batch payload: %w", err)
	}

	v := url.Values{}
	v.Set("data", string(data))
	setString(v, "auth-token", token)
	setBool(v, "reveal", reveal)
	return v, nil
}

func putString(attrs map[string]any, key, value string) {
	if value != "" {
		attrs[key] = value
	}
}

func putList(attrs map[string]any, key string, items []string) {
	if len(items) > 0 {
		attrs[key] = items
	}
}
