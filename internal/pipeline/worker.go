package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/constellate/internal/constellation"
	"github.com/dgallion1/constellate/internal/doctree"
	"github.com/dgallion1/constellate/internal/library"
	"github.com/dgallion1/constellate/internal/paginate"
	"github.com/dgallion1/constellate/internal/parser"
)

// Worker converts a single uploaded file into a stored constellation.
type Worker struct {
	lib       *library.Library
	log       *slog.Logger
	pageCfg   paginate.Config
	parseOpts parser.Options
}

func NewWorker(lib *library.Library, log *slog.Logger, pageCfg paginate.Config, parseOpts parser.Options) *Worker {
	return &Worker{
		lib:       lib,
		log:       log,
		pageCfg:   pageCfg,
		parseOpts: parseOpts,
	}
}

// Process runs the full import pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parseOpts)
	if err != nil {
		w.fail(log, job, "parsing", err)
		return
	}

	tree, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		w.fail(log, job, "parsing", fmt.Errorf("parse: %w", err))
		return
	}
	if job.Title != "" {
		tree.Title = job.Title
	}

	slug, err := jobSlug(job, tree)
	if err != nil {
		w.fail(log, job, "parsing", err)
		return
	}
	log = log.With("slug", slug)

	if err := ctx.Err(); err != nil {
		w.fail(log, job, "parsing", err)
		return
	}

	// Phase 2: Paginate
	job.SetStatus(StatusPaginating, "paginating")
	c, err := paginate.Build(tree, slug, w.pageCfg)
	if err != nil {
		w.fail(log, job, "paginating", err)
		return
	}
	job.SetCounts(countSections(tree), c.Len())
	log.Info("paginated document", "pages", c.Len())

	// Phase 2.5: Dedup check
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		w.fail(log, job, "paginating", fmt.Errorf("encode: %w", err))
		return
	}
	hash := library.ContentHash(buf.Bytes())
	job.SetResult(slug, hash)

	if existing, ok := w.lib.Hash(slug); ok && existing == hash {
		log.Info("duplicate document, skipping")
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	if err := ctx.Err(); err != nil {
		w.fail(log, job, "paginating", err)
		return
	}

	// Phase 3: Store
	job.SetStatus(StatusStoring, "storing")
	stored, err := w.lib.Put(c)
	if err != nil {
		w.fail(log, job, "storing", fmt.Errorf("store: %w", err))
		return
	}
	job.SetResult(slug, stored)

	log.Info("import complete", "pages", c.Len(), "content_hash", stored)
	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) fail(log *slog.Logger, job *Job, phase string, err error) {
	log.Error("import failed", "phase", phase, "error", err)
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, phase)
}

// jobSlug picks the requested slug, else one derived from the file name,
// else from the title.
func jobSlug(job *Job, tree *doctree.DocTree) (string, error) {
	if job.Slug != "" {
		if !library.ValidSlug(job.Slug) {
			return "", fmt.Errorf("%w: %q", library.ErrInvalidSlug, job.Slug)
		}
		return job.Slug, nil
	}
	if s := library.Slugify(constellation.SlugFromPath(job.Filename)); s != "" {
		return s, nil
	}
	if s := library.Slugify(tree.Title); s != "" {
		return s, nil
	}
	return "", fmt.Errorf("%w: cannot derive a slug from %q", library.ErrInvalidSlug, job.Filename)
}

func countSections(tree *doctree.DocTree) int {
	n := 0
	tree.Walk(func(*doctree.DocNode, int) { n++ })
	return n
}
