package server

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kevinberny/things-mcp/internal/script"
	"github.com/kevinberny/things-mcp/internal/things"
)

// EmptyInput is the input of read tools that take no arguments.
type EmptyInput struct{}

// listHandler returns a handler reading one built-in list.
func (s *Server) listHandler(list script.ListName) func(context.Context, *mcp.CallToolRequest, EmptyInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, in EmptyInput) (*mcp.CallToolResult, any, error) {
		todos, err := s.script.ListTodos(ctx, list)
		if err != nil {
			return nil, nil, err
		}
		res, err := jsonResult(todos)
		return res, nil, err
	}
}

func (s *Server) handleGetProjects(ctx context.Context, req *mcp.CallToolRequest, in EmptyInput) (*mcp.CallToolResult, any, error) {
	projects, err := s.script.Projects(ctx)
	if err != nil {
		return nil, nil, err
	}
	res, err := jsonResult(projects)
	return res, nil, err
}

func (s *Server) handleGetAreas(ctx context.Context, req *mcp.CallToolRequest, in EmptyInput) (*mcp.CallToolResult, any, error) {
	areas, err := s.script.Areas(ctx)
	if err != nil {
		return nil, nil, err
	}
	res, err := jsonResult(areas)
	return res, nil, err
}

func (s *Server) handleGetTags(ctx context.Context, req *mcp.CallToolRequest, in EmptyInput) (*mcp.CallToolResult, any, error) {
	tags, err := s.script.Tags(ctx)
	if err != nil {
		return nil, nil, err
	}
	res, err := jsonResult(tags)
	return res, nil, err
}

// SearchTodosInput is the input of the search_todos tool.
type SearchTodosInput struct {
	Query string `json:"query"`
}

func (s *Server) handleSearchTodos(ctx context.Context, req *mcp.CallToolRequest, in SearchTodosInput) (*mcp.CallToolResult, any, error) {
	if in.Query == "" {
		return nil, nil, things.ErrMissingQuery
	}
	todos, err := s.script.Search(ctx, in.Query)
	if err != nil {
		return nil, nil, err
	}
	res, err := jsonResult(todos)
	return res, nil, err
}

// ProjectTodosInput is the input of the get_project_todos tool.
type ProjectTodosInput struct {
	ProjectID string `json:"project_id"`
}

func (s *Server) handleGetProjectTodos(ctx context.Context, req *mcp.CallToolRequest, in ProjectTodosInput) (*mcp.CallToolResult, any, error) {
	if in.ProjectID == "" {
		return nil, nil, fmt.Errorf("%w: project", things.ErrMissingID)
	}
	todos, err := s.script.ProjectTodos(ctx, in.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	res, err := jsonResult(todos)
	return res, nil, err
}
