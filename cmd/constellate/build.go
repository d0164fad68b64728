package main

import (
	"fmt"
	"os"

	"github.com/dgallion1/constellate/internal/library"
	"github.com/dgallion1/constellate/internal/site"
	"github.com/spf13/cobra"
)

func buildCmd(a *app) *cobra.Command {
	var out, basePath string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render every constellation into a static site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("base-path") {
				a.cfg.BasePath = basePath
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}
			log := a.logger(os.Stderr)

			renderer, err := a.renderer()
			if err != nil {
				return err
			}

			lib := library.New(a.cfg.Dir, log)
			lib.Strict = true
			if err := lib.Load(cmd.Context()); err != nil {
				return fmt.Errorf("load %s: %w", a.cfg.Dir, err)
			}

			stats, err := site.Export(cmd.Context(), lib, renderer, out)
			if err != nil {
				return err
			}
			if a.cfg.StaticDir != "" {
				if err := site.CopyStatic(a.cfg.StaticDir, out); err != nil {
					return fmt.Errorf("copy static files: %w", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d pages from %d constellations to %s\n", stats.Pages, stats.Documents, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "site", "output directory")
	cmd.Flags().StringVar(&basePath, "base-path", "", "URL prefix the site is served under (BASE_PATH)")
	return cmd
}
