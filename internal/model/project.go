package model

// Project is a portfolio entry. Category holds category names, not ids, so
// deleting a Category leaves the reference dangling.
type Project struct {
	Meta
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Img         string   `json:"img"`
	Tags        []string `json:"tags"`
	Category    []string `json:"category"`
	LiveURL     string   `json:"liveUrl,omitempty"`
	GithubURL   string   `json:"githubUrl,omitempty"`
	Gradient    string   `json:"gradient"`
}
