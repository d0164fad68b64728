package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/dgallion1/constellate/internal/constellation"
	"github.com/dgallion1/constellate/internal/library"
	"github.com/dgallion1/constellate/internal/render"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.renderer.Index(&buf, s.lib.List()); err != nil {
		s.log.Error("render index failed", "error", err)
		http.Error(w, "failed to render index", http.StatusInternalServerError)
		return
	}
	writeHTML(w, buf.Bytes())
}

func (s *Server) handleCodeCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(s.renderer.Stylesheet())
}

// handleDocRedirect sends /{slug} to the title page.
func (s *Server) handleDocRedirect(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if _, err := s.lib.Get(slug); err != nil {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, s.renderer.PageHref(slug, 0), http.StatusFound)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	c, err := s.lib.Get(slug)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Page(&buf, c, page); err != nil {
		s.pageError(w, r, err)
		return
	}
	writeHTML(w, buf.Bytes())
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, render.ErrPageNotFound), errors.Is(err, library.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, constellation.ErrMalformedDocument):
		s.log.Error("malformed document", "path", r.URL.Path, "error", err)
		http.Error(w, "malformed document", http.StatusInternalServerError)
	default:
		s.log.Error("render page failed", "path", r.URL.Path, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}
