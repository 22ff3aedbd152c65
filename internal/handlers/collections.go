package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Collection serves list, create, update and delete for one collection of
// the document. T is the record type and P its patch type.
type Collection[T, P any] struct {
	name   string
	list   func() []T
	create func(context.Context, T) (*T, error)
	update func(context.Context, string, P) (*T, error)
	remove func(context.Context, string) (bool, error)
}

// List returns every record.
func (c *Collection[T, P]) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.list())
}

// Create stores the body as a new record. Any id in the body is ignored.
func (c *Collection[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	var item T
	if !decodeJSON(w, r, maxJSONBody, &item) {
		return
	}
	created, err := c.create(r.Context(), item)
	if err != nil {
		writeStoreError(w, "add "+c.name, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update merges the body into the record named by the {id} URL parameter.
func (c *Collection[T, P]) Update(w http.ResponseWriter, r *http.Request) {
	var patch P
	if !decodeJSON(w, r, maxJSONBody, &patch) {
		return
	}
	updated, err := c.update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeStoreError(w, "update "+c.name, err)
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes the record named by the {id} URL parameter.
func (c *Collection[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
	ok, err := c.remove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "delete "+c.name, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Routes mounts the collection handlers on a sub-router.
func (c *Collection[T, P]) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.List)
	r.Post("/", c.Create)
	r.Patch("/{id}", c.Update)
	r.Put("/{id}", c.Update)
	r.Delete("/{id}", c.Delete)
	return r
}
