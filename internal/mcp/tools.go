package mcp

import (
	"context"
	"errors"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/folio-cms/folio/internal/model"
	"github.com/folio-cms/folio/internal/store"
)

func (s *MCPServer) registerTools(srv *server.MCPServer) {
	srv.AddTool(
		mcp.NewTool("folio_list_projects",
			mcp.WithDescription(
				"List portfolio projects, newest first. Each project has a title, "+
					"description, tags, category names and optional live/GitHub links.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("category",
				mcp.Description("Only return projects filed under this category name"),
			),
			mcp.WithString("tag",
				mcp.Description("Only return projects carrying this tag"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of projects to return (default all)"),
			),
		),
		s.handleListProjects,
	)

	srv.AddTool(
		mcp.NewTool("folio_get_project",
			mcp.WithDescription("Fetch one project by id."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Project id as returned by folio_list_projects"),
			),
		),
		s.handleGetProject,
	)

	srv.AddTool(
		mcp.NewTool("folio_list_skills",
			mcp.WithDescription(
				"List skills in the order they were added, with proficiency (0-100) "+
					"and skill category.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("category",
				mcp.Description("Only return skills in this group"),
				mcp.Enum(model.SkillCategories...),
			),
		),
		s.handleListSkills,
	)

	srv.AddTool(
		mcp.NewTool("folio_list_categories",
			mcp.WithDescription("List project categories, newest first."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleListCategories,
	)

	srv.AddTool(
		mcp.NewTool("folio_get_hero",
			mcp.WithDescription(
				"Fetch the hero section: headline, bio, typewriter words, banner, "+
					"resume link and social profiles. Returns null when unset.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleGetHero,
	)
}

func (s *MCPServer) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.content.Projects.List(ctx)
	if err != nil {
		return toolError("Failed to list projects: %v", err)
	}

	category := request.GetString("category", "")
	tag := request.GetString("tag", "")
	filtered := projects[:0:0]
	for _, p := range projects {
		if category != "" && !slices.Contains(p.Category, category) {
			continue
		}
		if tag != "" && !slices.Contains(p.Tags, tag) {
			continue
		}
		filtered = append(filtered, p)
	}

	return successJSON(limit(filtered, request.GetInt("limit", 0)))
}

func (s *MCPServer) handleGetProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return toolError("missing required parameter \"id\"")
	}

	project, err := s.content.Projects.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return toolError("Project %q not found", id)
		}
		return toolError("Failed to fetch project: %v", err)
	}
	return successJSON(project)
}

func (s *MCPServer) handleListSkills(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	skills, err := s.content.Skills.List(ctx)
	if err != nil {
		return toolError("Failed to list skills: %v", err)
	}

	if category := request.GetString("category", ""); category != "" {
		skills = slices.DeleteFunc(skills, func(sk model.Skill) bool { return sk.Category != category })
	}
	return successJSON(skills)
}

func (s *MCPServer) handleListCategories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categories, err := s.content.Categories.List(ctx)
	if err != nil {
		return toolError("Failed to list categories: %v", err)
	}
	return successJSON(categories)
}

func (s *MCPServer) handleGetHero(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hero, err := s.content.Hero.Get(ctx)
	if err != nil {
		return toolError("Failed to fetch hero: %v", err)
	}
	return successJSON(hero)
}
