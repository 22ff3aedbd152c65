package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

// TestSkillValidate checks the skill rules.
func TestSkillValidate(t *testing.T) {
	tests := []struct {
		name    string
		skill   Skill
		wantErr bool
	}{
		{name: "valid", skill: Skill{Name: "Go", Level: 90, Category: SkillProgramming}},
		{name: "level bounds", skill: Skill{Name: "Go", Level: 100, Category: SkillTool}},
		{name: "missing name", skill: Skill{Level: 10, Category: SkillTool}, wantErr: true},
		{name: "level too high", skill: Skill{Name: "Go", Level: 101, Category: SkillTool}, wantErr: true},
		{name: "negative level", skill: Skill{Name: "Go", Level: -1, Category: SkillTool}, wantErr: true},
		{name: "unknown category", skill: Skill{Name: "Go", Category: "magic"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.skill.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestRecordValidate covers the remaining record types.
func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		v       interface{ Validate() error }
		wantErr bool
	}{
		{name: "project", v: Project{Title: "Shop", Status: ProjectCompleted}},
		{name: "project without status", v: Project{Title: "Shop"}, wantErr: true},
		{name: "project bad live url", v: Project{Title: "Shop", Status: ProjectPlanned, LiveURL: "not a url"}, wantErr: true},
		{name: "certification", v: Certification{Name: "CKA", Issuer: "CNCF"}},
		{name: "certification without issuer", v: Certification{Name: "CKA"}, wantErr: true},
		{name: "education", v: Education{Institution: "MIT", Degree: "BSc", GPA: ptr(9.5)}},
		{name: "education gpa out of range", v: Education{Institution: "MIT", Degree: "BSc", GPA: ptr(10.5)}, wantErr: true},
		{name: "experience", v: Experience{Company: "Acme", Position: "Engineer"}},
		{name: "experience without position", v: Experience{Company: "Acme"}, wantErr: true},
		{name: "personal info", v: PersonalInfo{Name: "Ada", Email: "ada@example.com"}},
		{name: "personal info bad email", v: PersonalInfo{Name: "Ada", Email: "ada"}, wantErr: true},
		{name: "social links", v: SocialLinks{GitHub: "https://github.com/ada"}},
		{name: "social links bad url", v: SocialLinks{GitHub: "not a url"}, wantErr: true},
		{name: "settings", v: Settings{Theme: ThemeLight}},
		{name: "settings unknown theme", v: Settings{Theme: "blue"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestMergeKeepsUnsetFields verifies that nil patch fields leave values alone
// and set fields replace them, including false and zero.
func TestMergeKeepsUnsetFields(t *testing.T) {
	p := Project{
		ID:           "p1",
		Title:        "Shop",
		Featured:     true,
		Technologies: []string{"Go"},
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	err := Merge(&p, ProjectPatch{
		Featured:     ptr(false),
		Technologies: &[]string{"Go", "Postgres"},
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if p.Title != "Shop" || p.ID != "p1" {
		t.Errorf("unset fields changed: %+v", p)
	}
	if p.Featured {
		t.Error("Featured should be set to false")
	}
	if strings.Join(p.Technologies, ",") != "Go,Postgres" {
		t.Errorf("Technologies = %v", p.Technologies)
	}
	if !p.CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("CreatedAt changed to %v", p.CreatedAt)
	}
}

// TestDocumentCloneIsDeep verifies that mutating a clone leaves the source
// untouched.
func TestDocumentCloneIsDeep(t *testing.T) {
	doc := Document{
		Projects:  []Project{{Title: "Shop", Technologies: []string{"Go"}, Images: []string{"a.png"}}},
		Education: []Education{{Institution: "MIT", GPA: ptr(9.0), Achievements: []string{"Dean's list"}}},
	}

	c := doc.Clone()
	c.Projects[0].Technologies[0] = "Rust"
	c.Projects[0].Title = "Other"
	*c.Education[0].GPA = 1
	c.Education[0].Achievements[0] = "none"

	if doc.Projects[0].Technologies[0] != "Go" || doc.Projects[0].Title != "Shop" {
		t.Error("project slices are shared with the clone")
	}
	if *doc.Education[0].GPA != 9.0 || doc.Education[0].Achievements[0] != "Dean's list" {
		t.Error("education pointers are shared with the clone")
	}
}

// TestNormalizeFillsArrays verifies that exported JSON never carries null
// for list fields.
func TestNormalizeFillsArrays(t *testing.T) {
	doc := Document{Projects: []Project{{Title: "Shop"}}}
	doc.Normalize()

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "null") {
		t.Errorf("normalized JSON contains null: %s", raw)
	}
}

// TestTimestamp verifies UTC conversion and millisecond truncation.
func TestTimestamp(t *testing.T) {
	in := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.FixedZone("X", 3600))
	got := Timestamp(in)
	if got.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", got.Location())
	}
	if got.Nanosecond() != 123000000 {
		t.Errorf("nanoseconds = %d, want 123000000", got.Nanosecond())
	}
}
