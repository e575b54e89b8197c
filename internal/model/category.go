package model

// Category is a project grouping, referenced by name from Project.Category.
type Category struct {
	Meta
	Name string `json:"name"`
}
