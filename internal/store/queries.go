package store

import (
	"strings"

	"folio/internal/models"
)

// CategoryAll matches every category in the filter helpers.
const CategoryAll = "all"

// FeaturedProjects returns the projects flagged as featured.
func (s *PortfolioStore) FeaturedProjects() []models.Project {
	return filter(s.Projects(), func(p models.Project) bool { return p.Featured })
}

// ProjectsByCategory returns projects whose category matches, ignoring case.
// An empty category or CategoryAll returns every project.
func (s *PortfolioStore) ProjectsByCategory(category string) []models.Project {
	if category == "" || category == CategoryAll {
		return s.Projects()
	}
	return filter(s.Projects(), func(p models.Project) bool {
		return strings.EqualFold(p.Category, category)
	})
}

// SkillsByCategory returns skills of one category. An empty category or
// CategoryAll returns every skill.
func (s *PortfolioStore) SkillsByCategory(category string) []models.Skill {
	if category == "" || category == CategoryAll {
		return s.Skills()
	}
	return filter(s.Skills(), func(sk models.Skill) bool {
		return string(sk.Category) == category
	})
}

// ProjectCategories returns the distinct project categories in first-seen
// order.
func (s *PortfolioStore) ProjectCategories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range s.Projects() {
		key := strings.ToLower(p.Category)
		if p.Category == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p.Category)
	}
	return out
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
