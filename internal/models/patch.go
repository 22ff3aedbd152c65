package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Patch types carry the fields of a partial update. A nil field is left
// untouched; a non-nil field replaces the stored value. Ids and creation
// timestamps have no patch field and therefore cannot be changed.

// PersonalInfoPatch is a partial PersonalInfo.
type PersonalInfoPatch struct {
	Name         *string `json:"name,omitempty"`
	Title        *string `json:"title,omitempty"`
	Introduction *string `json:"introduction,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
	ResumePDF    *string `json:"resumePdf,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Location     *string `json:"location,omitempty"`
}

// SocialLinksPatch is a partial SocialLinks.
type SocialLinksPatch struct {
	GitHub    *string `json:"github,omitempty"`
	LinkedIn  *string `json:"linkedin,omitempty"`
	Twitter   *string `json:"twitter,omitempty"`
	Instagram *string `json:"instagram,omitempty"`
	Behance   *string `json:"behance,omitempty"`
}

// SettingsPatch is a partial Settings.
type SettingsPatch struct {
	Theme              *Theme `json:"theme,omitempty"`
	Animations         *bool  `json:"animations,omitempty"`
	EmailNotifications *bool  `json:"emailNotifications,omitempty"`
	ShowEmail          *bool  `json:"showEmail,omitempty"`
	ShowPhone          *bool  `json:"showPhone,omitempty"`
}

// SkillPatch is a partial Skill.
type SkillPatch struct {
	Name     *string        `json:"name,omitempty"`
	Level    *int           `json:"level,omitempty"`
	Category *SkillCategory `json:"category,omitempty"`
	Icon     *string        `json:"icon,omitempty"`
	Color    *string        `json:"color,omitempty"`
}

// ProjectPatch is a partial Project.
type ProjectPatch struct {
	Title           *string        `json:"title,omitempty"`
	Description     *string        `json:"description,omitempty"`
	LongDescription *string        `json:"longDescription,omitempty"`
	Technologies    *[]string      `json:"technologies,omitempty"`
	Images          *[]string      `json:"images,omitempty"`
	LiveURL         *string        `json:"liveUrl,omitempty"`
	GitHubURL       *string        `json:"githubUrl,omitempty"`
	Featured        *bool          `json:"featured,omitempty"`
	Category        *string        `json:"category,omitempty"`
	StartDate       *string        `json:"startDate,omitempty"`
	EndDate         *string        `json:"endDate,omitempty"`
	Status          *ProjectStatus `json:"status,omitempty"`
}

// CertificationPatch is a partial Certification.
type CertificationPatch struct {
	Name            *string   `json:"name,omitempty"`
	Issuer          *string   `json:"issuer,omitempty"`
	IssueDate       *string   `json:"issueDate,omitempty"`
	ExpiryDate      *string   `json:"expiryDate,omitempty"`
	VerificationURL *string   `json:"verificationUrl,omitempty"`
	CredentialID    *string   `json:"credentialId,omitempty"`
	Image           *string   `json:"image,omitempty"`
	Skills          *[]string `json:"skills,omitempty"`
}

// EducationPatch is a partial Education.
type EducationPatch struct {
	Institution  *string   `json:"institution,omitempty"`
	Degree       *string   `json:"degree,omitempty"`
	Field        *string   `json:"field,omitempty"`
	StartDate    *string   `json:"startDate,omitempty"`
	EndDate      *string   `json:"endDate,omitempty"`
	Current      *bool     `json:"current,omitempty"`
	GPA          *float64  `json:"gpa,omitempty"`
	Achievements *[]string `json:"achievements,omitempty"`
}

// ExperiencePatch is a partial Experience.
type ExperiencePatch struct {
	Company      *string   `json:"company,omitempty"`
	Position     *string   `json:"position,omitempty"`
	StartDate    *string   `json:"startDate,omitempty"`
	EndDate      *string   `json:"endDate,omitempty"`
	Current      *bool     `json:"current,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Achievements *[]string `json:"achievements,omitempty"`
	Technologies *[]string `json:"technologies,omitempty"`
}

// Merge shallow-merges the set fields of patch into dst. Fields the patch
// leaves nil keep their current value; list fields are replaced whole.
func Merge[T any](dst *T, patch any) error {
	raw, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("merge marshal: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("merge unmarshal: %w", err)
	}
	return nil
}

// Timestamp returns t in UTC truncated to milliseconds, the resolution of
// persisted timestamps.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
