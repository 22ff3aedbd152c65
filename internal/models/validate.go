package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validation limits for free-text fields.
const (
	maxNameLen      = 200
	maxShortTextLen = 1_000
	maxLongTextLen  = 20_000
	maxListItems    = 100
	maxSkillLevel   = 100
	maxGPA          = 10.0
)

var skillCategories = []any{SkillProgramming, SkillFramework, SkillTool, SkillDatabase, SkillOther}

var projectStatuses = []any{ProjectCompleted, ProjectInProgress, ProjectPlanned}

// Validate checks the profile fields.
func (p PersonalInfo) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.RuneLength(1, maxNameLen)),
		validation.Field(&p.Title, validation.RuneLength(0, maxNameLen)),
		validation.Field(&p.Introduction, validation.RuneLength(0, maxLongTextLen)),
		validation.Field(&p.Email, is.EmailFormat),
		validation.Field(&p.Phone, validation.RuneLength(0, 50)),
		validation.Field(&p.Location, validation.RuneLength(0, maxNameLen)),
	)
}

// Validate checks that every set link is a URL.
func (s SocialLinks) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.GitHub, is.URL),
		validation.Field(&s.LinkedIn, is.URL),
		validation.Field(&s.Twitter, is.URL),
		validation.Field(&s.Instagram, is.URL),
		validation.Field(&s.Behance, is.URL),
	)
}

// Validate checks the theme value.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Theme, validation.Required, validation.In(ThemeDark, ThemeLight)),
	)
}

// Validate checks name, level range and category.
func (s Skill) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required, validation.RuneLength(1, maxNameLen)),
		validation.Field(&s.Level, validation.Min(0), validation.Max(maxSkillLevel)),
		validation.Field(&s.Category, validation.Required, validation.In(skillCategories...)),
	)
}

// Validate checks the required project fields and link formats.
func (p Project) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.RuneLength(1, maxNameLen)),
		validation.Field(&p.Description, validation.RuneLength(0, maxShortTextLen)),
		validation.Field(&p.LongDescription, validation.RuneLength(0, maxLongTextLen)),
		validation.Field(&p.Technologies, validation.Length(0, maxListItems)),
		validation.Field(&p.Images, validation.Length(0, maxListItems)),
		validation.Field(&p.LiveURL, is.URL),
		validation.Field(&p.GitHubURL, is.URL),
		validation.Field(&p.Status, validation.Required, validation.In(projectStatuses...)),
	)
}

// Validate checks the required certification fields.
func (c Certification) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.RuneLength(1, maxNameLen)),
		validation.Field(&c.Issuer, validation.Required, validation.RuneLength(1, maxNameLen)),
		validation.Field(&c.VerificationURL, is.URL),
		validation.Field(&c.Skills, validation.Length(0, maxListItems)),
	)
}

// Validate checks the required education fields and the GPA range.
func (e Education) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Institution, validation.Required, validation.RuneLength(1, maxNameLen)),
		validation.Field(&e.Degree, validation.Required, validation.RuneLength(1, maxNameLen)),
		validation.Field(&e.GPA, validation.Min(0.0), validation.Max(maxGPA)),
		validation.Field(&e.Achievements, validation.Length(0, maxListItems)),
	)
}

// Validate checks the required experience fields.
func (e Experience) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Company, validation.Required, validation.RuneLength(1, maxNameLen)),
		validation.Field(&e.Position, validation.Required, validation.RuneLength(1, maxNameLen)),
		validation.Field(&e.Description, validation.RuneLength(0, maxLongTextLen)),
		validation.Field(&e.Achievements, validation.Length(0, maxListItems)),
		validation.Field(&e.Technologies, validation.Length(0, maxListItems)),
	)
}
