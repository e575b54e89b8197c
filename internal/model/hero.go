package model

// HeroID is the fixed key of the singleton hero record.
const HeroID = "main_hero"

// Hero is the landing section of the site.
type Hero struct {
	Meta
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	TypewriterWords []string `json:"typewriterWords"`
	BannerURL       string   `json:"bannerUrl"`
	ResumeURL       string   `json:"resumeUrl"`
	Socials         Socials  `json:"socials"`
}

// Socials lists the profile links shown under the hero.
type Socials struct {
	Github    string `json:"github"`
	Linkedin  string `json:"linkedin"`
	Instagram string `json:"instagram"`
}
