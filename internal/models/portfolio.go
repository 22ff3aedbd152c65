// Package models defines the portfolio document and the records it holds.
// Field names follow the JSON export format, which is also the persisted shape.
package models

import "time"

// SkillCategory groups skills on the public skills section.
type SkillCategory string

const (
	SkillProgramming SkillCategory = "programming"
	SkillFramework   SkillCategory = "framework"
	SkillTool        SkillCategory = "tool"
	SkillDatabase    SkillCategory = "database"
	SkillOther       SkillCategory = "other"
)

// ProjectStatus is the delivery state of a project.
type ProjectStatus string

const (
	ProjectCompleted  ProjectStatus = "completed"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectPlanned    ProjectStatus = "planned"
)

// Theme is the site colour scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Document is the whole portfolio: three singletons and five collections.
type Document struct {
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	SocialLinks    SocialLinks     `json:"socialLinks"`
	Skills         []Skill         `json:"skills"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience"`
	Settings       Settings        `json:"settings"`
}

// PersonalInfo is the hero/about/contact profile. Images and the résumé are
// either URLs or data: URIs.
type PersonalInfo struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Introduction string `json:"introduction"`
	ProfileImage string `json:"profileImage"`
	ResumePDF    string `json:"resumePdf"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Location     string `json:"location,omitempty"`
}

// SocialLinks holds profile URLs.
type SocialLinks struct {
	GitHub    string `json:"github"`
	LinkedIn  string `json:"linkedin"`
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram,omitempty"`
	Behance   string `json:"behance,omitempty"`
}

// Skill is a single entry of the skills section. Level is a percentage.
type Skill struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Level    int           `json:"level"`
	Category SkillCategory `json:"category"`
	Icon     string        `json:"icon,omitempty"`
	Color    string        `json:"color,omitempty"`
}

// Project is a portfolio project. CreatedAt is assigned once on creation.
type Project struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	LongDescription string        `json:"longDescription,omitempty"`
	Technologies    []string      `json:"technologies"`
	Images          []string      `json:"images"`
	LiveURL         string        `json:"liveUrl,omitempty"`
	GitHubURL       string        `json:"githubUrl,omitempty"`
	Featured        bool          `json:"featured"`
	Category        string        `json:"category"`
	StartDate       string        `json:"startDate"`
	EndDate         string        `json:"endDate,omitempty"`
	Status          ProjectStatus `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// Certification is an earned certificate or credential.
type Certification struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Issuer          string   `json:"issuer"`
	IssueDate       string   `json:"issueDate"`
	ExpiryDate      string   `json:"expiryDate,omitempty"`
	VerificationURL string   `json:"verificationUrl,omitempty"`
	CredentialID    string   `json:"credentialId,omitempty"`
	Image           string   `json:"image,omitempty"`
	Skills          []string `json:"skills"`
}

// Education is a degree or course of study. GPA uses a 0-10 scale.
type Education struct {
	ID           string   `json:"id"`
	Institution  string   `json:"institution"`
	Degree       string   `json:"degree"`
	Field        string   `json:"field"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate,omitempty"`
	Current      bool     `json:"current"`
	GPA          *float64 `json:"gpa,omitempty"`
	Achievements []string `json:"achievements"`
}

// Experience is a past or current position.
type Experience struct {
	ID           string   `json:"id"`
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate,omitempty"`
	Current      bool     `json:"current"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
	Technologies []string `json:"technologies"`
}

// Settings controls site presentation and contact visibility.
type Settings struct {
	Theme              Theme `json:"theme"`
	Animations         bool  `json:"animations"`
	EmailNotifications bool  `json:"emailNotifications"`
	ShowEmail          bool  `json:"showEmail"`
	ShowPhone          bool  `json:"showPhone"`
}

// Clone returns a deep copy of the document. Callers may mutate the result
// freely without affecting d.
func (d Document) Clone() Document {
	out := d
	out.Skills = cloneSlice(d.Skills, Skill.Clone)
	out.Projects = cloneSlice(d.Projects, Project.Clone)
	out.Certifications = cloneSlice(d.Certifications, Certification.Clone)
	out.Education = cloneSlice(d.Education, Education.Clone)
	out.Experience = cloneSlice(d.Experience, Experience.Clone)
	return out
}

// Clone returns a copy of s. Skills hold no reference fields.
func (s Skill) Clone() Skill {
	return s
}

// Clone returns a copy of p that shares no slices with it.
func (p Project) Clone() Project {
	p.Technologies = cloneStrings(p.Technologies)
	p.Images = cloneStrings(p.Images)
	return p
}

// Clone returns a copy of c that shares no slices with it.
func (c Certification) Clone() Certification {
	c.Skills = cloneStrings(c.Skills)
	return c
}

// Clone returns a copy of e that shares no slices or pointers with it.
func (e Education) Clone() Education {
	e.Achievements = cloneStrings(e.Achievements)
	if e.GPA != nil {
		gpa := *e.GPA
		e.GPA = &gpa
	}
	return e
}

// Clone returns a copy of e that shares no slices with it.
func (e Experience) Clone() Experience {
	e.Achievements = cloneStrings(e.Achievements)
	e.Technologies = cloneStrings(e.Technologies)
	return e
}

// Normalize replaces nil collections with empty ones so the exported JSON
// always carries arrays, never null.
func (d *Document) Normalize() {
	if d.Skills == nil {
		d.Skills = []Skill{}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	if d.Certifications == nil {
		d.Certifications = []Certification{}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	for i := range d.Projects {
		if d.Projects[i].Technologies == nil {
			d.Projects[i].Technologies = []string{}
		}
		if d.Projects[i].Images == nil {
			d.Projects[i].Images = []string{}
		}
	}
	for i := range d.Certifications {
		if d.Certifications[i].Skills == nil {
			d.Certifications[i].Skills = []string{}
		}
	}
	for i := range d.Education {
		if d.Education[i].Achievements == nil {
			d.Education[i].Achievements = []string{}
		}
	}
	for i := range d.Experience {
		if d.Experience[i].Achievements == nil {
			d.Experience[i].Achievements = []string{}
		}
		if d.Experience[i].Technologies == nil {
			d.Experience[i].Technologies = []string{}
		}
	}
}

func cloneSlice[T any](in []T, clone func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
