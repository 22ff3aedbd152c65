// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"folio/internal/cache"
	"folio/internal/markdown"
	"folio/internal/models"
	"folio/internal/store"
)

// Public groups the read-only handlers behind the public site. Responses
// are cached as snapshots and dropped whenever the document changes.
type Public struct {
	store *store.PortfolioStore
	snaps cache.Snapshots

	// gen counts document changes. A snapshot built under an older
	// generation is not stored. mu orders the check and store against
	// invalidation.
	mu  sync.Mutex
	gen uint64
}

// NewPublic creates the public handler group and subscribes it to store
// changes for snapshot invalidation.
func NewPublic(st *store.PortfolioStore, snaps cache.Snapshots) *Public {
	p := &Public{store: st, snaps: snaps}
	st.Subscribe(func(models.Document) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.gen++
		snaps.InvalidateAll(context.Background())
	})
	return p
}

// projectView is a project with its long description rendered to HTML.
type projectView struct {
	models.Project
	LongDescriptionHTML string `json:"longDescriptionHtml,omitempty"`
}

// portfolioView is the public shape of the document. Contact details the
// owner chose to hide are blanked.
type portfolioView struct {
	PersonalInfo   models.PersonalInfo    `json:"personalInfo"`
	SocialLinks    models.SocialLinks     `json:"socialLinks"`
	Skills         []models.Skill         `json:"skills"`
	Projects       []projectView          `json:"projects"`
	Certifications []models.Certification `json:"certifications"`
	Education      []models.Education     `json:"education"`
	Experience     []models.Experience    `json:"experience"`
	Settings       models.Settings        `json:"settings"`
}

// Portfolio serves the whole public portfolio.
func (p *Public) Portfolio(w http.ResponseWriter, r *http.Request) {
	p.serveCached(w, r, cache.PortfolioKey, func() any {
		doc := p.store.Document()
		info := doc.PersonalInfo
		if !doc.Settings.ShowEmail {
			info.Email = ""
		}
		if !doc.Settings.ShowPhone {
			info.Phone = ""
		}
		return portfolioView{
			PersonalInfo:   info,
			SocialLinks:    doc.SocialLinks,
			Skills:         doc.Skills,
			Projects:       projectViews(doc.Projects),
			Certifications: doc.Certifications,
			Education:      doc.Education,
			Experience:     doc.Experience,
			Settings:       doc.Settings,
		}
	})
}

// Projects serves projects filtered by ?category= and ?featured=true.
func (p *Public) Projects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p.serveCached(w, r, cache.QueryKey(r.URL.Path, q), func() any {
		projects := p.store.ProjectsByCategory(q.Get("category"))
		if q.Get("featured") == "true" {
			featured := projects[:0]
			for _, pr := range projects {
				if pr.Featured {
					featured = append(featured, pr)
				}
			}
			projects = featured
		}
		return projectViews(projects)
	})
}

// ProjectCategories serves the distinct project categories.
func (p *Public) ProjectCategories(w http.ResponseWriter, r *http.Request) {
	categories := p.store.ProjectCategories()
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// Skills serves skills filtered by ?category=.
func (p *Public) Skills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p.serveCached(w, r, cache.QueryKey(r.URL.Path, q), func() any {
		return p.store.SkillsByCategory(q.Get("category"))
	})
}

// serveCached writes the snapshot stored under key, building and storing it
// on a miss.
func (p *Public) serveCached(w http.ResponseWriter, r *http.Request, key string, build func() any) {
	ctx := r.Context()
	if body, ok := p.snaps.Get(ctx, key); ok {
		writeSnapshot(w, body, "HIT")
		return
	}

	p.mu.Lock()
	gen := p.gen
	p.mu.Unlock()

	body, err := json.Marshal(build())
	if err != nil {
		writeInternal(w, "encode public response", err)
		return
	}

	p.mu.Lock()
	if p.gen == gen {
		p.snaps.Set(ctx, key, body)
	}
	p.mu.Unlock()
	writeSnapshot(w, body, "MISS")
}

func writeSnapshot(w http.ResponseWriter, body []byte, state string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", state)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// projectViews renders the long descriptions. A project whose markdown
// fails to render is served without HTML.
func projectViews(projects []models.Project) []projectView {
	out := make([]projectView, len(projects))
	for i, pr := range projects {
		out[i].Project = pr
		html, err := markdown.ToHTML(pr.LongDescription)
		if err != nil {
			slog.Warn("render project description failed", "project_id", pr.ID, "error", err)
			continue
		}
		out[i].LongDescriptionHTML = html
	}
	return out
}
