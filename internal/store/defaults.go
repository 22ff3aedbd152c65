package store

import "folio/internal/models"

// DefaultDocument returns the built-in seed document. It is deterministic:
// two calls return equal documents, with empty collections.
func DefaultDocument() models.Document {
	doc := models.Document{
		PersonalInfo: models.PersonalInfo{
			Name:         "Your Name",
			Title:        "Full Stack Developer",
			Introduction: "I build reliable web applications and enjoy turning ideas into working software.",
			Email:        "hello@example.com",
			Phone:        "+1 555 0100",
		},
		SocialLinks: models.SocialLinks{
			GitHub:   "https://github.com",
			LinkedIn: "https://linkedin.com",
			Twitter:  "https://twitter.com",
		},
		Settings: models.Settings{
			Theme:              models.ThemeDark,
			Animations:         true,
			EmailNotifications: false,
			ShowEmail:          true,
			ShowPhone:          false,
		},
	}
	doc.Normalize()
	return doc
}
