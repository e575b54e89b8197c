package model

// Skill is one entry of the skills grid.
type Skill struct {
	Meta
	Name        string `json:"name"`
	Img         string `json:"img"`
	Description string `json:"description"`
	Proficiency int    `json:"proficiency"`
	Category    string `json:"category"`
}

// SkillCategories is the closed set of groups a Skill may be filed under.
var SkillCategories = []string{
	"Programming Languages",
	"Core Web",
	"Frontend",
	"Backend",
	"Mobile",
	"Platforms",
	"Tools",
}

// IsSkillCategory reports whether name is one of SkillCategories.
func IsSkillCategory(name string) bool {
	for _, c := range SkillCategories {
		if c == name {
			return true
		}
	}
	return false
}
