// Package content is the data-access layer for the portfolio: typed
// repositories over the document store, one per collection, plus the hero
// singleton.
package content

import "github.com/folio-cms/folio/internal/model"

type (
	ProjectRepository  = Repository[model.Project, *model.Project]
	SkillRepository    = Repository[model.Skill, *model.Skill]
	CategoryRepository = Repository[model.Category, *model.Category]
)

// Content bundles every repository the API serves.
type Content struct {
	Projects   *ProjectRepository
	Skills     *SkillRepository
	Categories *CategoryRepository
	Hero       *HeroSection
}

// New wires all repositories to the same store.
func New(s DocumentStore) *Content {
	return &Content{
		Projects:   NewRepository[model.Project, *model.Project](ProjectCollection, s),
		Skills:     NewRepository[model.Skill, *model.Skill](SkillCollection, s),
		Categories: NewRepository[model.Category, *model.Category](CategoryCollection, s),
		Hero:       NewHeroSection(s),
	}
}
