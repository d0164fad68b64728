// Package site writes the library out as a static website.
package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/dgallion1/constellate/internal/constellation"
	"github.com/dgallion1/constellate/internal/library"
	"github.com/dgallion1/constellate/internal/render"
	"golang.org/x/sync/errgroup"
)

// maxParallelPages bounds concurrent page renders.
const maxParallelPages = 8

// Stats counts what an export wrote.
type Stats struct {
	Documents int
	Pages     int
}

// Export renders every document in lib into outDir:
//
//	index.html
//	assets/code.css
//	<slug>/index.html      redirect to page 0
//	<slug>/<i>/index.html  one per page
//
// Any page that fails to render fails the whole export.
func Export(ctx context.Context, lib *library.Library, r *render.Renderer, outDir string) (Stats, error) {
	docs := lib.List()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Stats{}, err
	}

	var index bytes.Buffer
	if err := r.Index(&index, docs); err != nil {
		return Stats{}, err
	}
	if err := writeFile(filepath.Join(outDir, "index.html"), index.Bytes()); err != nil {
		return Stats{}, err
	}
	if err := writeFile(filepath.Join(outDir, filepath.FromSlash(strings.TrimPrefix(render.CodeStylesheetPath, "/"))), r.Stylesheet()); err != nil {
		return Stats{}, err
	}

	var pages atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelPages)

	for _, c := range docs {
		if err := writeFile(filepath.Join(outDir, c.Slug, "index.html"), redirectPage(r.PageHref(c.Slug, 0))); err != nil {
			return Stats{}, err
		}
		for i := range c.Len() {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := exportPage(r, c, i, outDir); err != nil {
					return err
				}
				pages.Add(1)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	return Stats{Documents: len(docs), Pages: int(pages.Load())}, nil
}

func exportPage(r *render.Renderer, c *constellation.Constellation, i int, outDir string) error {
	var buf bytes.Buffer
	if err := r.Page(&buf, c, i); err != nil {
		return fmt.Errorf("%s/%d: %w", c.Slug, i, err)
	}
	return writeFile(filepath.Join(outDir, c.Slug, strconv.Itoa(i), "index.html"), buf.Bytes())
}

var redirectTmpl = template.Must(template.New("redirect").Parse(
	`<!doctype html><meta charset="utf-8"><meta http-equiv="refresh" content="0; url={{.}}"><link rel="canonical" href="{{.}}"><a href="{{.}}">{{.}}</a>
`))

func redirectPage(href string) []byte {
	var buf bytes.Buffer
	_ = redirectTmpl.Execute(&buf, href)
	return buf.Bytes()
}

// CopyStatic copies the files under src into outDir/static.
func CopyStatic(src, outDir string) error {
	dst := filepath.Join(outDir, "static")
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(filepath.Join(dst, rel), 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return writeFile(filepath.Join(dst, rel), data)
	})
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
