package content

import (
	"fmt"
	"strings"

	"github.com/folio-cms/folio/internal/model"
)

// Op tells a validator which write is being checked.
type Op int

const (
	OpCreate Op = iota
	OpUpdate
)

// ValidationError reports a rejected field. Nothing is written to the store
// when a repository operation returns one.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

func validateProject(p *model.Project, op Op) error {
	if op == OpCreate {
		return required("title", p.Title)
	}
	return nil
}

func validateSkill(s *model.Skill, op Op) error {
	if op == OpCreate {
		if err := required("name", s.Name); err != nil {
			return err
		}
	}
	if s.Proficiency < 0 || s.Proficiency > 100 {
		return &ValidationError{Field: "proficiency", Message: "must be between 0 and 100"}
	}
	if s.Category != "" && !model.IsSkillCategory(s.Category) {
		return &ValidationError{
			Field:   "category",
			Message: "must be one of: " + strings.Join(model.SkillCategories, ", "),
		}
	}
	return nil
}

func validateCategory(c *model.Category, op Op) error {
	if op == OpCreate {
		return required("name", c.Name)
	}
	return nil
}
