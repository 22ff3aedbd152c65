// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"folio/internal/models"
	"folio/internal/storage"
	"folio/internal/store"
)

// maxImportSize bounds an imported portfolio export.
const maxImportSize = 10 << 20

// Admin groups the authenticated portfolio editing handlers.
type Admin struct {
	store   *store.PortfolioStore
	storage *storage.Client
	now     func() time.Time
}

// NewAdmin creates the admin handler group. storageClient may be nil, in
// which case uploads are returned as data: URIs.
func NewAdmin(st *store.PortfolioStore, storageClient *storage.Client) *Admin {
	return &Admin{store: st, storage: storageClient, now: time.Now}
}

// Document returns the full, unfiltered document.
func (a *Admin) Document(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Document())
}

// Export downloads the document as an indented JSON file.
func (a *Admin) Export(w http.ResponseWriter, r *http.Request) {
	text, err := a.store.Export()
	if err != nil {
		writeInternal(w, "export portfolio", err)
		return
	}
	name := fmt.Sprintf("portfolio-export-%s.json", a.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, text)
}

// Import replaces the document with the request body.
func (a *Admin) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Import file too large. Maximum size is 10 MB.")
		return
	}

	ok, err := a.store.Import(r.Context(), string(raw))
	if err != nil {
		writeStoreError(w, "import portfolio", err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "Import must be a JSON object")
		return
	}
	writeJSON(w, http.StatusOK, a.store.Document())
}

// Reset restores the default document.
func (a *Admin) Reset(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Reset(r.Context()); err != nil {
		writeStoreError(w, "reset portfolio", err)
		return
	}
	writeJSON(w, http.StatusOK, a.store.Document())
}

// UpdatePersonalInfo merges the body into the profile section.
func (a *Admin) UpdatePersonalInfo(w http.ResponseWriter, r *http.Request) {
	updateSection(w, r, "update personal info", a.store.UpdatePersonalInfo)
}

// UpdateSocialLinks merges the body into the social links section.
func (a *Admin) UpdateSocialLinks(w http.ResponseWriter, r *http.Request) {
	updateSection(w, r, "update social links", a.store.UpdateSocialLinks)
}

// UpdateSettings merges the body into the site settings.
func (a *Admin) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	updateSection(w, r, "update settings", a.store.UpdateSettings)
}

func updateSection[P, T any](w http.ResponseWriter, r *http.Request, op string, update func(context.Context, P) (T, error)) {
	var patch P
	if !decodeJSON(w, r, maxJSONBody, &patch) {
		return
	}
	out, err := update(r.Context(), patch)
	if err != nil {
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Skills returns the CRUD handlers for skills.
func (a *Admin) Skills() *Collection[models.Skill, models.SkillPatch] {
	return &Collection[models.Skill, models.SkillPatch]{
		name:   "skill",
		list:   a.store.Skills,
		create: a.store.AddSkill,
		update: a.store.UpdateSkill,
		remove: a.store.DeleteSkill,
	}
}

// Projects returns the CRUD handlers for projects.
func (a *Admin) Projects() *Collection[models.Project, models.ProjectPatch] {
	return &Collection[models.Project, models.ProjectPatch]{
		name:   "project",
		list:   a.store.Projects,
		create: a.store.AddProject,
		update: a.store.UpdateProject,
		remove: a.store.DeleteProject,
	}
}

// Certifications returns the CRUD handlers for certifications.
func (a *Admin) Certifications() *Collection[models.Certification, models.CertificationPatch] {
	return &Collection[models.Certification, models.CertificationPatch]{
		name:   "certification",
		list:   a.store.Certifications,
		create: a.store.AddCertification,
		update: a.store.UpdateCertification,
		remove: a.store.DeleteCertification,
	}
}

// Education returns the CRUD handlers for education entries.
func (a *Admin) Education() *Collection[models.Education, models.EducationPatch] {
	return &Collection[models.Education, models.EducationPatch]{
		name:   "education",
		list:   a.store.Education,
		create: a.store.AddEducation,
		update: a.store.UpdateEducation,
		remove: a.store.DeleteEducation,
	}
}

// Experience returns the CRUD handlers for experience entries.
func (a *Admin) Experience() *Collection[models.Experience, models.ExperiencePatch] {
	return &Collection[models.Experience, models.ExperiencePatch]{
		name:   "experience",
		list:   a.store.Experience,
		create: a.store.AddExperience,
		update: a.store.UpdateExperience,
		remove: a.store.DeleteExperience,
	}
}
