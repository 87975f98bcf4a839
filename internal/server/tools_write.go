package server

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/kevinberny/things-mcp/internal/things"
)

// AddTodoInput is the input of the add_todo tool.
type AddTodoInput struct {
	Title          string   `json:"title"`
	Notes          string   `json:"notes,omitempty"`
	When           string   `json:"when,omitempty"`
	Deadline       string   `json:"deadline,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	ChecklistItems []string `json:"checklist_items,omitempty"`
	List           string   `json:"list,omitempty"`
	ListID         string   `json:"list_id,omitempty"`
	Heading        string   `json:"heading,omitempty"`
	Completed      *bool    `json:"completed,omitempty"`
	Canceled       *bool    `json:"canceled,omitempty"`
	ShowQuickEntry *bool    `json:"show_quick_entry,omitempty"`
	Reveal         *bool    `json:"reveal,omitempty"`
	CreationDate   string   `json:"creation_date,omitempty"`
	CompletionDate string   `json:"completion_date,omitempty"`
}

func (s *Server) handleAddTodo(ctx context.Context, req *mcp.CallToolRequest, in AddTodoInput) (*mcp.CallToolResult, any, error) {
	p := things.AddParams{
		Title:          in.Title,
		Notes:          in.Notes,
		When:           in.When,
		Deadline:       in.Deadline,
		Tags:           in.Tags,
		ChecklistItems: in.ChecklistItems,
		List:           in.List,
		ListID:         in.ListID,
		Heading:        in.Heading,
		Completed:      in.Completed,
		Canceled:       in.Canceled,
		ShowQuickEntry: in.ShowQuickEntry,
		Reveal:         in.Reveal,
		CreationDate:   in.CreationDate,
		CompletionDate: in.CompletionDate,
	}
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	if err := s.launcher.Open(ctx, things.BuildURL(things.CommandAdd, p.Values())); err != nil {
		return nil, nil, err
	}
	s.log.Info("to-do created", zap.String("title", in.Title))
	return textResult("Created to-do %q", in.Title), nil, nil
}

// AddProjectInput is the input of the add_project tool.
type AddProjectInput struct {
	Title     string   `json:"title"`
	Notes     string   `json:"notes,omitempty"`
	When      string   `json:"when,omitempty"`
	Deadline  string   `json:"deadline,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Area      string   `json:"area,omitempty"`
	AreaID    string   `json:"area_id,omitempty"`
	Todos     []string `json:"todos,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
	Canceled  *bool    `json:"canceled,omitempty"`
	Reveal    *bool    `json:"reveal,omitempty"`
}

func (s *Server) handleAddProject(ctx context.Context, req *mcp.CallToolRequest, in AddProjectInput) (*mcp.CallToolResult, any, error) {
	p := things.AddProjectParams{
		Title:     in.Title,
		Notes:     in.Notes,
		When:      in.When,
		Deadline:  in.Deadline,
		Tags:      in.Tags,
		Area:      in.Area,
		AreaID:    in.AreaID,
		ToDos:     in.Todos,
		Completed: in.Completed,
		Canceled:  in.Canceled,
		Reveal:    in.Reveal,
	}
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	if err := s.launcher.Open(ctx, things.BuildURL(things.CommandAddProject, p.Values())); err != nil {
		return nil, nil, err
	}
	s.log.Info("project created", zap.String("title", in.Title))
	return textResult("Created project %q", in.Title), nil, nil
}

// StructuredTodoInput is one to-do inside a structured project.
type StructuredTodoInput struct {
	Title          string   `json:"title"`
	Notes          string   `json:"notes,omitempty"`
	When           string   `json:"when,omitempty"`
	Deadline       string   `json:"deadline,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	ChecklistItems []string `json:"checklist_items,omitempty"`
}

// StructuredSectionInput is one section of a structured project: an optional
// heading and the to-dos under it. Without a heading the to-dos land in the
// project body.
type StructuredSectionInput struct {
	Heading string                `json:"heading,omitempty"`
	Todos   []StructuredTodoInput `json:"todos"`
}

// AddStructuredProjectInput is the input of the add_structured_project tool.
type AddStructuredProjectInput struct {
	Title    string                   `json:"title"`
	Notes    string                   `json:"notes,omitempty"`
	When     string                   `json:"when,omitempty"`
	Deadline string                   `json:"deadline,omitempty"`
	Tags     []string                 `json:"tags,omitempty"`
	Area     string                   `json:"area,omitempty"`
	AreaID   string                   `json:"area_id,omitempty"`
	Sections []StructuredSectionInput `json:"sections"`
	Reveal   *bool                    `json:"reveal,omitempty"`
}

func (s *Server) handleAddStructuredProject(ctx context.Context, req *mcp.CallToolRequest, in AddStructuredProjectInput) (*mcp.CallToolResult, any, error) {
	draft := things.ProjectDraft{
		Title:    in.Title,
		Notes:    in.Notes,
		When:     in.When,
		Deadline: in.Deadline,
		Tags:     in.Tags,
		Area:     in.Area,
		AreaID:   in.AreaID,
	}
	todoCount := 0
	for _, sec := range in.Sections {
		section := things.SectionDraft{Heading: sec.Heading}
		for _, td := range sec.Todos {
			section.Todos = append(section.Todos, things.TodoDraft{
				Title:          td.Title,
				Notes:          td.Notes,
				When:           td.When,
				Deadline:       td.Deadline,
				Tags:           td.Tags,
				ChecklistItems: td.ChecklistItems,
			})
			todoCount++
		}
		draft.Sections = append(draft.Sections, section)
	}

	ops, err := things.ProjectOperations(draft)
	if err != nil {
		return nil, nil, err
	}
	// Create-only batch: the json command needs no auth token here.
	values, err := things.JSONValues(ops, "", in.Reveal)
	if err != nil {
		return nil, nil, err
	}

	if err := s.launcher.Open(ctx, things.BuildURL(things.CommandJSON, values)); err != nil {
		return nil, nil, err
	}
	s.log.Info("structured project created",
		zap.String("title", in.Title),
		zap.Int("sections", len(in.Sections)),
		zap.Int("todos", todoCount))
	return textResult("Created project %q with %d section(s) and %d to-do(s)",
		in.Title, len(in.Sections), todoCount), nil, nil
}

// UpdateTodoInput is the input of the update_todo tool.
type UpdateTodoInput struct {
	ID                    string   `json:"id"`
	AuthToken             string   `json:"auth_token,omitempty"`
	Title                 string   `json:"title,omitempty"`
	Notes                 string   `json:"notes,omitempty"`
	PrependNotes          string   `json:"prepend_notes,omitempty"`
	AppendNotes           string   `json:"append_notes,omitempty"`
	When                  string   `json:"when,omitempty"`
	Deadline              string   `json:"deadline,omitempty"`
	Tags                  []string `json:"tags,omitempty"`
	AddTags               []string `json:"add_tags,omitempty"`
	ChecklistItems        []string `json:"checklist_items,omitempty"`
	PrependChecklistItems []string `json:"prepend_checklist_items,omitempty"`
	AppendChecklistItems  []string `json:"append_checklist_items,omitempty"`
	Completed             *bool    `json:"completed,omitempty"`
	Canceled              *bool    `json:"canceled,omitempty"`
	Reveal                *bool    `json:"reveal,omitempty"`
	Duplicate             *bool    `json:"duplicate,omitempty"`
	CreationDate          string   `json:"creation_date,omitempty"`
	CompletionDate        string   `json:"completion_date,omitempty"`
}

func (s *Server) handleUpdateTodo(ctx context.Context, req *mcp.CallToolRequest, in UpdateTodoInput) (*mcp.CallToolResult, any, error) {
	token, err := things.ResolveToken(in.AuthToken, s.cfg.AuthToken)
	if err != nil {
		return nil, nil, err
	}

	p := things.UpdateParams{
		ID:                    in.ID,
		AuthToken:             token,
		Title:                 in.Title,
		Notes:                 in.Notes,
		PrependNotes:          in.PrependNotes,
		AppendNotes:           in.AppendNotes,
		When:                  in.When,
		Deadline:              in.Deadline,
		Tags:                  in.Tags,
		AddTags:               in.AddTags,
		ChecklistItems:        in.ChecklistItems,
		PrependChecklistItems: in.PrependChecklistItems,
		AppendChecklistItems:  in.AppendChecklistItems,
		Completed:             in.Completed,
		Canceled:              in.Canceled,
		Reveal:                in.Reveal,
		Duplicate:             in.Duplicate,
		CreationDate:          in.CreationDate,
		CompletionDate:        in.CompletionDate,
	}
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	if err := s.launcher.Open(ctx, things.BuildURL(things.CommandUpdate, p.Values())); err != nil {
		return nil, nil, err
	}
	s.log.Info("to-do updated", zap.String("id", in.ID))
	return textResult("Updated to-do %s", in.ID), nil, nil
}

// UpdateProjectInput is the input of the update_project tool.
type UpdateProjectInput struct {
	ID           string   `json:"id"`
	AuthToken    string   `json:"auth_token,omitempty"`
	Title        string   `json:"title,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	PrependNotes string   `json:"prepend_notes,omitempty"`
	AppendNotes  string   `json:"append_notes,omitempty"`
	When         string   `json:"when,omitempty"`
	Deadline     string   `json:"deadline,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	AddTags      []string `json:"add_tags,omitempty"`
	Completed    *bool    `json:"completed,omitempty"`
	Canceled     *bool    `json:"canceled,omitempty"`
	Reveal       *bool    `json:"reveal,omitempty"`
	Duplicate    *bool    `json:"duplicate,omitempty"`
}

func (s *Server) handleUpdateProject(ctx context.Context, req *mcp.CallToolRequest, in UpdateProjectInput) (*mcp.CallToolResult, any, error) {
	token, err := things.ResolveToken(in.AuthToken, s.cfg.AuthToken)
	if err != nil {
		return nil, nil, err
	}

	p := things.UpdateProjectParams{
		ID:           in.ID,
		AuthToken:    token,
		Title:        in.Title,
		Notes:        in.Notes,
		PrependNotes: in.PrependNotes,
		AppendNotes:  in.AppendNotes,
		When:         in.When,
		Deadline:     in.Deadline,
		Tags:         in.Tags,
		AddTags:      in.AddTags,
		Completed:    in.Completed,
		Canceled:     in.Canceled,
		Reveal:       in.Reveal,
		Duplicate:    in.Duplicate,
	}
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	if err := s.launcher.Open(ctx, things.BuildURL(things.CommandUpdateProject, p.Values())); err != nil {
		return nil, nil, err
	}
	s.log.Info("project updated", zap.String("id", in.ID))
	return textResult("Updated project %s", in.ID), nil, nil
}

// RestructureSectionInput is one heading of the desired layout and the ids
// of the to-dos placed under it, in order. Omit heading_id to create the
// heading; give both id and heading to rename it.
type RestructureSectionInput struct {
	HeadingID string   `json:"heading_id,omitempty"`
	Heading   string   `json:"heading,omitempty"`
	TodoIDs   []string `json:"todo_ids"`
}

// TodoUpdateInput carries attribute changes for a to-do referenced in a
// restructure, applied wherever that id is placed.
type TodoUpdateInput struct {
	Title    string `json:"title,omitempty"`
	Notes    string `json:"notes,omitempty"`
	When     string `json:"when,omitempty"`
	Deadline string `json:"deadline,omitempty"`
}

func (u TodoUpdateInput) attributes() map[string]any {
	attrs := map[string]any{}
	if u.Title != "" {
		attrs["title"] = u.Title
	}
	if u.Notes != "" {
		attrs["notes"] = u.Notes
	}
	if u.When != "" {
		attrs["when"] = u.When
	}
	if u.Deadline != "" {
		attrs["deadline"] = u.Deadline
	}
	return attrs
}

// RestructureProjectInput is the input of the restructure_project tool.
type RestructureProjectInput struct {
	ProjectID      string                     `json:"project_id"`
	AuthToken      string                     `json:"auth_token,omitempty"`
	UnsectionedIDs []string                   `json:"unsectioned_todo_ids,omitempty"`
	Sections       []RestructureSectionInput  `json:"sections,omitempty"`
	DeleteIDs      []string                   `json:"delete_todo_ids,omitempty"`
	TodoUpdates    map[string]TodoUpdateInput `json:"todo_updates,omitempty"`
	Reveal         *bool                      `json:"reveal,omitempty"`
}

func (s *Server) handleRestructureProject(ctx context.Context, req *mcp.CallToolRequest, in RestructureProjectInput) (*mcp.CallToolResult, any, error) {
	// Update-class batch: resolve the token before anything leaves the
	// process.
	token, err := things.ResolveToken(in.AuthToken, s.cfg.AuthToken)
	if err != nil {
		return nil, nil, err
	}

	placed := make(map[string]bool)
	placement := func(id string) things.TodoPlacement {
		placed[id] = true
		p := things.TodoPlacement{ID: id}
		if u, ok := in.TodoUpdates[id]; ok {
			p.Update = u.attributes()
		}
		return p
	}

	r := things.Restructure{
		ProjectID: in.ProjectID,
		Deletions: in.DeleteIDs,
	}
	for _, id := range in.UnsectionedIDs {
		r.Unsectioned = append(r.Unsectioned, placement(id))
	}
	for _, sec := range in.Sections {
		section := things.RestructureSection{
			Heading: things.HeadingSpec{ID: sec.HeadingID, Title: sec.Heading},
		}
		for _, id := range sec.TodoIDs {
			section.Todos = append(section.Todos, placement(id))
		}
		r.Sections = append(r.Sections, section)
	}

	// An edit for an unplaced id would silently vanish from the batch.
	for _, id := range slices.Sorted(maps.Keys(in.TodoUpdates)) {
		if !placed[id] {
			return nil, nil, fmt.Errorf("todo_updates id %q appears in no section or unsectioned list", id)
		}
	}

	ops, err := things.RestructureOperations(r)
	if err != nil {
		return nil, nil, err
	}
	values, err := things.JSONValues(ops, token, in.Reveal)
	if err != nil {
		return nil, nil, err
	}

	if err := s.launcher.Open(ctx, things.BuildURL(things.CommandJSON, values)); err != nil {
		return nil, nil, err
	}
	s.log.Info("project restructured",
		zap.String("project_id", in.ProjectID),
		zap.Int("operations", len(ops)))
	return textResult("Restructured project %s with %d operation(s)", in.ProjectID, len(ops)), nil, nil
}

// ShowItemInput is the input of the show_item tool.
type ShowItemInput struct {
	ID     string   `json:"id,omitempty"`
	Query  string   `json:"query,omitempty"`
	Filter []string `json:"filter_tags,omitempty"`
}

func (s *Server) handleShowItem(ctx context.Context, req *mcp.CallToolRequest, in ShowItemInput) (*mcp.CallToolResult, any, error) {
	p := things.ShowParams{ID: in.ID, Query: in.Query, Filter: in.Filter}
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	if err := s.launcher.Open(ctx, things.BuildURL(things.CommandShow, p.Values())); err != nil {
		return nil, nil, err
	}
	target := in.ID
	if target == "" {
		target = in.Query
	}
	return textResult("Showing %s", target), nil, nil
}

// SearchItemsInput is the input of the search_items tool.
type SearchItemsInput struct {
	Query string `json:"query"`
}

func (s *Server) handleSearchItems(ctx context.Context, req *mcp.CallToolRequest, in SearchItemsInput) (*mcp.CallToolResult, any, error) {
	p := things.SearchParams{Query: in.Query}
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	if err := s.launcher.Open(ctx, things.BuildURL(things.CommandSearch, p.Values())); err != nil {
		return nil, nil, err
	}
	return textResult("Searching for %q", in.Query), nil, nil
}
