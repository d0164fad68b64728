package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dgallion1/constellate/internal/library"
	"github.com/dgallion1/constellate/internal/outline"
	"github.com/go-chi/chi/v5"
)

type docSummary struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Pages       int    `json:"pages"`
	ContentHash string `json:"content_hash"`
	URL         string `json:"url"`
}

// handleListConstellations lists every loaded document.
func (s *Server) handleListConstellations(w http.ResponseWriter, r *http.Request) {
	docs := []docSummary{}
	for _, c := range s.lib.List() {
		hash, _ := s.lib.Hash(c.Slug)
		docs = append(docs, docSummary{
			Slug:        c.Slug,
			Title:       c.Title,
			Pages:       c.Len(),
			ContentHash: hash,
			URL:         s.renderer.PageHref(c.Slug, 0),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"constellations": docs})
}

// handleGetConstellation returns a document in its stored form.
func (s *Server) handleGetConstellation(w http.ResponseWriter, r *http.Request) {
	c, err := s.lib.Get(chi.URLParam(r, "slug"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	c.Encode(w)
}

// handleOutline returns the outline and prev/next links for ?page=N.
// Without a page nothing is selected and there are no links. A page outside
// the document selects nothing and has an empty nav.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	c, err := s.lib.Get(chi.URLParam(r, "slug"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}

	page, hasPage := -1, false
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			jsonError(w, "page must be an integer", http.StatusBadRequest)
			return
		}
		page, hasPage = n, true
	}

	tree, err := outline.Build(c, page)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	roots := tree.Roots
	if roots == nil {
		roots = []*outline.Node{}
	}
	resp := map[string]any{
		"slug":    c.Slug,
		"title":   c.Title,
		"pages":   c.Len(),
		"outline": roots,
	}
	if hasPage {
		resp["page"] = page
		resp["nav"] = outline.Navigate(page, c.Len())
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDeleteConstellation removes a document from the library.
func (s *Server) handleDeleteConstellation(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	err := s.lib.Delete(slug)
	switch {
	case errors.Is(err, library.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, library.ErrInvalidSlug):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		s.log.Error("delete failed", "slug", slug, "error", err)
		jsonError(w, "failed to delete", http.StatusInternalServerError)
		return
	}
	s.log.Info("deleted constellation", "slug", slug)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": slug})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
