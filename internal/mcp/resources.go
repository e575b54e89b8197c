package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const projectURIPrefix = "folio://projects/"

// registerResources exposes each collection as a JSON resource so clients
// can load the whole portfolio into context without tool calls.
func (s *MCPServer) registerResources(srv *server.MCPServer) {
	static := []struct {
		uri, name, desc string
		read            func(ctx context.Context) (interface{}, error)
	}{
		{"folio://hero", "Hero Section", "The landing headline, bio and social links.",
			func(ctx context.Context) (interface{}, error) { return s.content.Hero.Get(ctx) }},
		{"folio://projects", "Projects", "All portfolio projects, newest first.",
			func(ctx context.Context) (interface{}, error) { return s.content.Projects.List(ctx) }},
		{"folio://skills", "Skills", "All skills in the order they were added.",
			func(ctx context.Context) (interface{}, error) { return s.content.Skills.List(ctx) }},
		{"folio://categories", "Categories", "Project categories, newest first.",
			func(ctx context.Context) (interface{}, error) { return s.content.Categories.List(ctx) }},
	}

	for _, res := range static {
		srv.AddResource(
			mcp.NewResource(res.uri, res.name,
				mcp.WithResourceDescription(res.desc),
				mcp.WithMIMEType("application/json"),
			),
			func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
				data, err := res.read(ctx)
				if err != nil {
					return nil, fmt.Errorf("failed to read %s: %w", res.uri, err)
				}
				return jsonResource(res.uri, data)
			},
		)
	}

	srv.AddResourceTemplate(
		mcp.NewResourceTemplate(
			projectURIPrefix+"{id}",
			"Project",
			mcp.WithTemplateDescription("A single portfolio project by id."),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleProjectResource,
	)
}

func (s *MCPServer) handleProjectResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	id := strings.TrimPrefix(uri, projectURIPrefix)
	if id == "" || id == uri {
		return nil, fmt.Errorf("invalid project URI %q: expected %s{id}", uri, projectURIPrefix)
	}

	project, err := s.content.Projects.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", id, err)
	}
	return jsonResource(uri, project)
}
