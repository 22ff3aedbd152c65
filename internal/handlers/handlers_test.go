// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handlers_test.go exercises the handlers over an in-memory backend.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"folio/internal/cache"
	"folio/internal/kv"
	"folio/internal/models"
	"folio/internal/session"
	"folio/internal/store"
)

type fixture struct {
	backend *kv.Memory
	store   *store.PortfolioStore
	gate    *session.Gate
	public  *Public
	admin   *Admin
	auth    *Auth
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := kv.NewMemory(0)
	st, err := store.Open(context.Background(), backend)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	gate := session.NewGate(backend, session.WithHashCost(bcrypt.MinCost))
	return &fixture{
		backend: backend,
		store:   st,
		gate:    gate,
		public:  NewPublic(st, cache.NewMemorySnapshots(time.Minute)),
		admin:   NewAdmin(st, nil),
		auth:    NewAuth(gate, false),
	}
}

func serve(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestPortfolioHidesContactDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := serve(f.public.Portfolio, http.MethodGet, "/api/portfolio", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("first X-Cache = %q, want MISS", got)
	}
	view := decodeBody[portfolioView](t, rec)
	if view.PersonalInfo.Email == "" {
		t.Error("email should be shown by default")
	}
	if view.PersonalInfo.Phone != "" {
		t.Errorf("phone = %q, should be hidden by default", view.PersonalInfo.Phone)
	}

	rec = serve(f.public.Portfolio, http.MethodGet, "/api/portfolio", "")
	if got := rec.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", got)
	}

	hide := false
	if _, err := f.store.UpdateSettings(ctx, models.SettingsPatch{ShowEmail: &hide}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	rec = serve(f.public.Portfolio, http.MethodGet, "/api/portfolio", "")
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache after change = %q, want MISS", got)
	}
	if view := decodeBody[portfolioView](t, rec); view.PersonalInfo.Email != "" {
		t.Errorf("email = %q, should be hidden", view.PersonalInfo.Email)
	}
}

// TestSnapshotOutdatedByChangeIsNotCached covers a document change landing
// between building a response and caching it.
func TestSnapshotOutdatedByChangeIsNotCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	build := func() any {
		skills := f.store.Skills()
		if _, err := f.store.AddSkill(ctx, models.Skill{Name: "Go", Level: 90, Category: models.SkillProgramming}); err != nil {
			t.Fatalf("AddSkill: %v", err)
		}
		return skills
	}
	req := httptest.NewRequest(http.MethodGet, "/api/skills", nil)
	rec := httptest.NewRecorder()
	f.public.serveCached(rec, req, "skills", build)
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Fatalf("X-Cache = %q, want MISS", got)
	}

	if _, ok := f.public.snaps.Get(ctx, "skills"); ok {
		t.Error("a snapshot built before the change was cached")
	}
	rec = serve(f.public.Skills, http.MethodGet, "/api/skills", "")
	if skills := decodeBody[[]models.Skill](t, rec); len(skills) != 1 {
		t.Errorf("skills = %+v, want the added skill", skills)
	}
}

func TestPublicProjectFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	add := func(title, category string, featured bool) {
		t.Helper()
		_, err := f.store.AddProject(ctx, models.Project{
			Title:           title,
			Category:        category,
			Featured:        featured,
			Status:          models.ProjectCompleted,
			LongDescription: "**" + title + "**",
		})
		if err != nil {
			t.Fatalf("AddProject: %v", err)
		}
	}
	add("Shop", "web", true)
	add("Game", "mobile", true)
	add("Blog", "web", false)

	tests := []struct {
		target string
		want   []string
	}{
		{"/api/projects", []string{"Shop", "Game", "Blog"}},
		{"/api/projects?category=web", []string{"Shop", "Blog"}},
		{"/api/projects?category=WEB&featured=true", []string{"Shop"}},
		{"/api/projects?featured=true", []string{"Shop", "Game"}},
		{"/api/projects?category=all", []string{"Shop", "Game", "Blog"}},
	}
	for _, tt := range tests {
		rec := serve(f.public.Projects, http.MethodGet, tt.target, "")
		views := decodeBody[[]projectView](t, rec)
		var got []string
		for _, v := range views {
			got = append(got, v.Title)
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("%s = %v, want %v", tt.target, got, tt.want)
		}
		for _, v := range views {
			if !strings.Contains(v.LongDescriptionHTML, "<strong>") {
				t.Errorf("%s: longDescriptionHtml = %q", v.Title, v.LongDescriptionHTML)
			}
		}
	}

	rec := serve(f.public.ProjectCategories, http.MethodGet, "/api/projects/categories", "")
	if got := decodeBody[[]string](t, rec); strings.Join(got, ",") != "web,mobile" {
		t.Errorf("categories = %v", got)
	}
}

func TestPublicSkillsByCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddSkill(ctx, models.Skill{Name: "Go", Level: 90, Category: models.SkillProgramming})
	f.store.AddSkill(ctx, models.Skill{Name: "Postgres", Level: 70, Category: models.SkillDatabase})

	rec := serve(f.public.Skills, http.MethodGet, "/api/skills?category=database", "")
	skills := decodeBody[[]models.Skill](t, rec)
	if len(skills) != 1 || skills[0].Name != "Postgres" {
		t.Errorf("skills = %+v", skills)
	}
}

func TestCollectionCRUD(t *testing.T) {
	f := newFixture(t)
	routes := f.admin.Skills().Routes()
	do := func(method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/", `{"id":"mine","name":"Go","level":80,"category":"programming"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	created := decodeBody[models.Skill](t, rec)
	if created.ID == "" || created.ID == "mine" {
		t.Errorf("created id = %q, want a fresh id", created.ID)
	}

	if rec := do(http.MethodPost, "/", `{"name":"","category":"programming"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid create status = %d", rec.Code)
	}
	if rec := do(http.MethodPost, "/", `{`); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed create status = %d", rec.Code)
	}

	rec = do(http.MethodPatch, "/"+created.ID, `{"level":95}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body)
	}
	if got := decodeBody[models.Skill](t, rec); got.Level != 95 || got.Name != "Go" {
		t.Errorf("updated = %+v", got)
	}
	if rec := do(http.MethodPatch, "/missing", `{"level":1}`); rec.Code != http.StatusNotFound {
		t.Errorf("update missing status = %d", rec.Code)
	}

	rec = do(http.MethodGet, "/", "")
	if got := decodeBody[[]models.Skill](t, rec); len(got) != 1 {
		t.Errorf("list = %+v", got)
	}

	if rec := do(http.MethodDelete, "/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := do(http.MethodDelete, "/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", rec.Code)
	}
}

func TestPersistFailureIsInsufficientStorage(t *testing.T) {
	f := newFixture(t)
	f.backend.SetQuota(1)

	rec := serve(f.admin.Experience().Create, http.MethodPost, "/", `{"company":"Acme","position":"Engineer"}`)
	if rec.Code != http.StatusInsufficientStorage {
		t.Errorf("status = %d, want 507", rec.Code)
	}
	if len(f.store.Experience()) != 0 {
		t.Error("failed write should leave the store unchanged")
	}
}

func TestUpdateSections(t *testing.T) {
	f := newFixture(t)

	rec := serve(f.admin.UpdatePersonalInfo, http.MethodPut, "/", `{"name":"Ada","email":"ada@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if got := decodeBody[models.PersonalInfo](t, rec); got.Name != "Ada" || got.Title == "" {
		t.Errorf("personal info = %+v", got)
	}

	rec = serve(f.admin.UpdateSocialLinks, http.MethodPut, "/", `{"github":"not a url"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid link status = %d", rec.Code)
	}

	rec = serve(f.admin.UpdateSettings, http.MethodPut, "/", `{"theme":"light"}`)
	if got := decodeBody[models.Settings](t, rec); got.Theme != models.ThemeLight {
		t.Errorf("settings = %+v", got)
	}
}

func TestExportImportReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddSkill(ctx, models.Skill{Name: "Go", Level: 90, Category: models.SkillProgramming})

	rec := serve(f.admin.Export, http.MethodGet, "/", "")
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment; filename=\"portfolio-export-") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	exported := rec.Body.String()

	if rec := serve(f.admin.Reset, http.MethodPost, "/", ""); rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rec.Code)
	}
	if len(f.store.Skills()) != 0 {
		t.Error("reset should drop added skills")
	}

	if rec := serve(f.admin.Import, http.MethodPost, "/", "[1,2]"); rec.Code != http.StatusBadRequest {
		t.Errorf("array import status = %d", rec.Code)
	}
	if rec := serve(f.admin.Import, http.MethodPost, "/", `{"settings":{"theme":"neon"}}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid import status = %d, want 400", rec.Code)
	}
	if rec := serve(f.admin.Import, http.MethodPost, "/", exported); rec.Code != http.StatusOK {
		t.Fatalf("import status = %d: %s", rec.Code, rec.Body)
	}
	if skills := f.store.Skills(); len(skills) != 1 || skills[0].Name != "Go" {
		t.Errorf("skills after import = %+v", skills)
	}
}

func TestLoginAndSession(t *testing.T) {
	f := newFixture(t)

	rec := serve(f.auth.Login, http.MethodPost, "/login", `{"username":"admin","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("bootstrap login status = %d", rec.Code)
	}
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("login should set the session cookie")
	}
	if got := decodeBody[sessionResponse](t, rec); !got.Authenticated || got.TwoFactorPending {
		t.Errorf("login response = %+v", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	f.auth.Session(rec, req)
	got := decodeBody[sessionResponse](t, rec)
	if !got.Authenticated || got.Username != "admin" || got.RemainingSeconds <= 0 {
		t.Errorf("session = %+v", got)
	}

	rec = serve(f.auth.Session, http.MethodGet, "/session", "")
	if got := decodeBody[sessionResponse](t, rec); got.Authenticated {
		t.Error("a request without the cookie must not be authenticated")
	}

	rec = serve(f.auth.Login, http.MethodPost, "/login", `{"username":"admin","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d", rec.Code)
	}

	rec = serve(f.auth.Login, http.MethodPost, "/login", `{"username":"admin","password":"`+strings.Repeat("p", 100)+`"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("over-long password login status = %d, want 401", rec.Code)
	}

	rec = serve(f.auth.Logout, http.MethodPost, "/logout", "")
	if rec.Code != http.StatusOK {
		t.Errorf("cookie-less logout status = %d", rec.Code)
	}
	if ok, _ := f.gate.IsAuthenticated(context.Background()); !ok {
		t.Error("logout without the session cookie must not end the session")
	}

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	f.auth.Logout(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("logout status = %d", rec.Code)
	}
	if ok, _ := f.gate.IsAuthenticated(context.Background()); ok {
		t.Error("logout should end the session")
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gate.Login(ctx, "admin", "secret")

	rec := serve(f.auth.ChangePassword, http.MethodPost, "/", `{"currentPassword":"wrong","newPassword":"next"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("wrong current password status = %d", rec.Code)
	}
	rec = serve(f.auth.ChangePassword, http.MethodPost, "/", `{"currentPassword":"secret","newPassword":"`+strings.Repeat("n", 73)+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("over-long new password status = %d, want 400", rec.Code)
	}
	rec = serve(f.auth.ChangePassword, http.MethodPost, "/", `{"currentPassword":"secret","newPassword":"next"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d: %s", rec.Code, rec.Body)
	}
	if ok, _ := f.gate.Login(ctx, "admin", "next"); !ok {
		t.Error("new password should log in")
	}
}

func TestVerifyTwoFactorWithoutPendingLogin(t *testing.T) {
	f := newFixture(t)
	rec := serve(f.auth.VerifyTwoFactor, http.MethodPost, "/", `{"code":"123456"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func multipartUpload(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestMediaUploadInline(t *testing.T) {
	f := newFixture(t)

	img := image.NewRGBA(image.Rect(0, 0, 2000, 10))
	for x := range 2000 {
		img.Set(x, 5, color.RGBA{R: 255, A: 255})
	}
	var pngData bytes.Buffer
	if err := png.Encode(&pngData, img); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	f.admin.MediaUpload(rec, multipartUpload(t, "banner.png", pngData.Bytes()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	got := decodeBody[uploadResponse](t, rec)
	if got.Stored || got.ContentType != "image/png" || !strings.HasPrefix(got.URL, "data:image/png;base64,") {
		t.Errorf("upload = %+v", got)
	}

	rec = httptest.NewRecorder()
	f.admin.MediaUpload(rec, multipartUpload(t, "notes.txt", []byte("plain text")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("text upload status = %d", rec.Code)
	}
}

func TestMediaDeleteWithoutStorage(t *testing.T) {
	f := newFixture(t)
	rec := serve(f.admin.MediaDelete, http.MethodDelete, "/media?url=x", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		filename string
		want     string
	}{
		{"pdf", "%PDF-1.7\n", "cv.pdf", "application/pdf"},
		{"svg", `<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"/>`, "logo.svg", "image/svg+xml"},
		{"text", "hello", "notes.txt", "text/plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectContentType([]byte(tt.data), tt.filename); got != tt.want {
				t.Errorf("detectContentType = %q, want %q", got, tt.want)
			}
		})
	}
}
