package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/constellate/internal/library"
	"github.com/dgallion1/constellate/internal/parser"
	"github.com/dgallion1/constellate/internal/pipeline"
	"github.com/spf13/cobra"
)

func importCmd(a *app) *cobra.Command {
	var slug, title string
	var pageSize int

	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Convert notebooks and documents into constellations",
		Long: "Convert .ipynb, .md, .html, .txt, .csv, .docx and .pdf files into\n" +
			"constellations stored in the library directory. Unchanged imports are skipped.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (slug != "" || title != "") && len(args) > 1 {
				return errors.New("--slug and --title need a single file")
			}
			if cmd.Flags().Changed("page-size") {
				a.cfg.PageSizeWords = pageSize
			}
			log := a.logger(os.Stderr)

			lib := library.New(a.cfg.Dir, log)
			if err := lib.Load(cmd.Context()); err != nil {
				log.Warn("some constellations failed to load", "error", err)
			}

			// Every file is queued up front, so the queue must hold them all.
			cfg := a.cfg
			cfg.MaxQueueSize = max(cfg.MaxQueueSize, len(args))
			orch := pipeline.NewOrchestrator(cfg, lib, log)
			orch.Start(cmd.Context())
			defer orch.Stop()

			var jobs []*pipeline.Job
			for _, path := range args {
				if !parser.IsSupportedExtension(path) {
					return fmt.Errorf("%w: %s", parser.ErrUnsupportedFormat, path)
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				job := pipeline.NewJob(filepath.Base(path), title, slug, data)
				if err := orch.Submit(job); err != nil {
					return err
				}
				jobs = append(jobs, job)
			}

			failed := 0
			out := cmd.OutOrStdout()
			for _, job := range jobs {
				snap := job.Wait(cmd.Context())
				switch snap.Status {
				case pipeline.StatusCompleted:
					fmt.Fprintf(out, "%s -> %s (%d pages)\n", snap.Filename, filepath.Join(lib.Dir(), snap.Slug+".constellate"), snap.Progress.Pages)
				case pipeline.StatusDupSkipped:
					fmt.Fprintf(out, "%s -> %s unchanged\n", snap.Filename, snap.Slug)
				default:
					failed++
					fmt.Fprintf(out, "%s: %s %v\n", snap.Filename, snap.Status, snap.Progress.Errors)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d imports failed", failed, len(jobs))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&slug, "slug", "", "slug for the imported document (single file)")
	cmd.Flags().StringVar(&title, "title", "", "title for the imported document (single file)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "target words per page (PAGE_SIZE_WORDS)")
	return cmd
}
