package store

import (
	"context"
	"fmt"

	"folio/internal/models"
)

// record is the behaviour shared by collection entities.
type record[T any] interface {
	Validate() error
	Clone() T
}

// listOf selects one collection of the document.
type listOf[T any] func(d *models.Document) *[]T

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalid, err)
}

func cloneList[T record[T]](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = v.Clone()
	}
	return out
}

// readList returns a copy of one collection.
func readList[T record[T]](s *PortfolioStore, list listOf[T]) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneList(*list(&s.doc))
}

// addItem validates item and appends it to the selected collection.
func addItem[T record[T]](ctx context.Context, s *PortfolioStore, op string, item T, list listOf[T]) (*T, error) {
	if err := item.Validate(); err != nil {
		return nil, invalid(err)
	}

	var created T
	_, err := s.mutate(ctx, op, func(d *models.Document) (bool, error) {
		items := list(d)
		*items = append(*items, item)
		d.Normalize()
		created = (*items)[len(*items)-1].Clone()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// updateItem merges patch into the record with the given id. It returns
// (nil, nil) when no record has that id.
func updateItem[T record[T]](ctx context.Context, s *PortfolioStore, op, id string, patch any, list listOf[T], idOf func(T) string) (*T, error) {
	var updated T
	found, err := s.mutate(ctx, op, func(d *models.Document) (bool, error) {
		items := *list(d)
		for i := range items {
			if idOf(items[i]) != id {
				continue
			}
			next := items[i]
			if err := models.Merge(&next, patch); err != nil {
				return false, invalid(err)
			}
			if err := next.Validate(); err != nil {
				return false, invalid(err)
			}
			items[i] = next
			d.Normalize()
			updated = items[i].Clone()
			return true, nil
		}
		return false, nil
	})
	if err != nil || !found {
		return nil, err
	}
	return &updated, nil
}

// deleteItem removes the record with the given id. It returns false when no
// record has that id.
func deleteItem[T any](ctx context.Context, s *PortfolioStore, op, id string, list listOf[T], idOf func(T) string) (bool, error) {
	return s.mutate(ctx, op, func(d *models.Document) (bool, error) {
		items := list(d)
		for i := range *items {
			if idOf((*items)[i]) == id {
				*items = append((*items)[:i], (*items)[i+1:]...)
				return true, nil
			}
		}
		return false, nil
	})
}

// updateSingleton merges patch into a singleton section of the document.
func updateSingleton[T interface{ Validate() error }](ctx context.Context, s *PortfolioStore, op string, patch any, field func(d *models.Document) *T) (T, error) {
	var updated T
	_, err := s.mutate(ctx, op, func(d *models.Document) (bool, error) {
		next := *field(d)
		if err := models.Merge(&next, patch); err != nil {
			return false, invalid(err)
		}
		if err := next.Validate(); err != nil {
			return false, invalid(err)
		}
		*field(d) = next
		updated = next
		return true, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

var (
	skillsOf         listOf[models.Skill]         = func(d *models.Document) *[]models.Skill { return &d.Skills }
	projectsOf       listOf[models.Project]       = func(d *models.Document) *[]models.Project { return &d.Projects }
	certificationsOf listOf[models.Certification] = func(d *models.Document) *[]models.Certification { return &d.Certifications }
	educationOf      listOf[models.Education]     = func(d *models.Document) *[]models.Education { return &d.Education }
	experienceOf     listOf[models.Experience]    = func(d *models.Document) *[]models.Experience { return &d.Experience }
)

// --- Singletons ---

// PersonalInfo returns the profile section.
func (s *PortfolioStore) PersonalInfo() models.PersonalInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.PersonalInfo
}

// SocialLinks returns the social links section.
func (s *PortfolioStore) SocialLinks() models.SocialLinks {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.SocialLinks
}

// Settings returns the site settings.
func (s *PortfolioStore) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Settings
}

// UpdatePersonalInfo merges patch into the profile section.
func (s *PortfolioStore) UpdatePersonalInfo(ctx context.Context, patch models.PersonalInfoPatch) (models.PersonalInfo, error) {
	return updateSingleton(ctx, s, "update personal info", patch, func(d *models.Document) *models.PersonalInfo { return &d.PersonalInfo })
}

// UpdateSocialLinks merges patch into the social links section.
func (s *PortfolioStore) UpdateSocialLinks(ctx context.Context, patch models.SocialLinksPatch) (models.SocialLinks, error) {
	return updateSingleton(ctx, s, "update social links", patch, func(d *models.Document) *models.SocialLinks { return &d.SocialLinks })
}

// UpdateSettings merges patch into the site settings.
func (s *PortfolioStore) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.Settings, error) {
	return updateSingleton(ctx, s, "update settings", patch, func(d *models.Document) *models.Settings { return &d.Settings })
}

// --- Skills ---

// Skills returns every skill.
func (s *PortfolioStore) Skills() []models.Skill { return readList(s, skillsOf) }

// AddSkill stores a new skill with a fresh id. Any id on skill is replaced.
func (s *PortfolioStore) AddSkill(ctx context.Context, skill models.Skill) (*models.Skill, error) {
	skill.ID = s.newID()
	return addItem(ctx, s, "add skill", skill, skillsOf)
}

// UpdateSkill merges patch into the skill with the given id.
func (s *PortfolioStore) UpdateSkill(ctx context.Context, id string, patch models.SkillPatch) (*models.Skill, error) {
	return updateItem(ctx, s, "update skill", id, patch, skillsOf, func(v models.Skill) string { return v.ID })
}

// DeleteSkill removes the skill with the given id.
func (s *PortfolioStore) DeleteSkill(ctx context.Context, id string) (bool, error) {
	return deleteItem(ctx, s, "delete skill", id, skillsOf, func(v models.Skill) string { return v.ID })
}

// --- Projects ---

// Projects returns every project.
func (s *PortfolioStore) Projects() []models.Project { return readList(s, projectsOf) }

// AddProject stores a new project with a fresh id and creation time.
func (s *PortfolioStore) AddProject(ctx context.Context, project models.Project) (*models.Project, error) {
	project.ID = s.newID()
	project.CreatedAt = models.Timestamp(s.now())
	return addItem(ctx, s, "add project", project, projectsOf)
}

// UpdateProject merges patch into the project with the given id. CreatedAt
// is never changed.
func (s *PortfolioStore) UpdateProject(ctx context.Context, id string, patch models.ProjectPatch) (*models.Project, error) {
	return updateItem(ctx, s, "update project", id, patch, projectsOf, func(v models.Project) string { return v.ID })
}

// DeleteProject removes the project with the given id.
func (s *PortfolioStore) DeleteProject(ctx context.Context, id string) (bool, error) {
	return deleteItem(ctx, s, "delete project", id, projectsOf, func(v models.Project) string { return v.ID })
}

// --- Certifications ---

// Certifications returns every certification.
func (s *PortfolioStore) Certifications() []models.Certification {
	return readList(s, certificationsOf)
}

// AddCertification stores a new certification with a fresh id.
func (s *PortfolioStore) AddCertification(ctx context.Context, cert models.Certification) (*models.Certification, error) {
	cert.ID = s.newID()
	return addItem(ctx, s, "add certification", cert, certificationsOf)
}

// UpdateCertification merges patch into the certification with the given id.
func (s *PortfolioStore) UpdateCertification(ctx context.Context, id string, patch models.CertificationPatch) (*models.Certification, error) {
	return updateItem(ctx, s, "update certification", id, patch, certificationsOf, func(v models.Certification) string { return v.ID })
}

// DeleteCertification removes the certification with the given id.
func (s *PortfolioStore) DeleteCertification(ctx context.Context, id string) (bool, error) {
	return deleteItem(ctx, s, "delete certification", id, certificationsOf, func(v models.Certification) string { return v.ID })
}

// --- Education ---

// Education returns every education entry.
func (s *PortfolioStore) Education() []models.Education { return readList(s, educationOf) }

// AddEducation stores a new education entry with a fresh id.
func (s *PortfolioStore) AddEducation(ctx context.Context, edu models.Education) (*models.Education, error) {
	edu.ID = s.newID()
	return addItem(ctx, s, "add education", edu, educationOf)
}

// UpdateEducation merges patch into the education entry with the given id.
func (s *PortfolioStore) UpdateEducation(ctx context.Context, id string, patch models.EducationPatch) (*models.Education, error) {
	return updateItem(ctx, s, "update education", id, patch, educationOf, func(v models.Education) string { return v.ID })
}

// DeleteEducation removes the education entry with the given id.
func (s *PortfolioStore) DeleteEducation(ctx context.Context, id string) (bool, error) {
	return deleteItem(ctx, s, "delete education", id, educationOf, func(v models.Education) string { return v.ID })
}

// --- Experience ---

// Experience returns every experience entry.
func (s *PortfolioStore) Experience() []models.Experience { return readList(s, experienceOf) }

// AddExperience stores a new experience entry with a fresh id.
func (s *PortfolioStore) AddExperience(ctx context.Context, exp models.Experience) (*models.Experience, error) {
	exp.ID = s.newID()
	return addItem(ctx, s, "add experience", exp, experienceOf)
}

// UpdateExperience merges patch into the experience entry with the given id.
func (s *PortfolioStore) UpdateExperience(ctx context.Context, id string, patch models.ExperiencePatch) (*models.Experience, error) {
	return updateItem(ctx, s, "update experience", id, patch, experienceOf, func(v models.Experience) string { return v.ID })
}

// DeleteExperience removes the experience entry with the given id.
func (s *PortfolioStore) DeleteExperience(ctx context.Context, id string) (bool, error) {
	return deleteItem(ctx, s, "delete experience", id, experienceOf, func(v models.Experience) string { return v.ID })
}
