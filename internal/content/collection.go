package content

import "github.com/folio-cms/folio/internal/model"

// Order is the createdAt ordering List applies to a collection.
type Order int

const (
	Unordered Order = iota
	NewestFirst
	OldestFirst
)

// Collection describes one list of records in the document tree.
type Collection[T any] struct {
	Name     string // singular, used in log and error messages
	Path     string
	Order    Order
	Validate func(rec *T, op Op) error
}

var (
	ProjectCollection = Collection[model.Project]{
		Name:     "project",
		Path:     "projects",
		Order:    NewestFirst,
		Validate: validateProject,
	}
	SkillCollection = Collection[model.Skill]{
		Name:     "skill",
		Path:     "skills",
		Order:    OldestFirst,
		Validate: validateSkill,
	}
	CategoryCollection = Collection[model.Category]{
		Name:     "category",
		Path:     "categories",
		Order:    NewestFirst,
		Validate: validateCategory,
	}
)
