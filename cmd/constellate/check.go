package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgallion1/constellate/internal/constellation"
	"github.com/dgallion1/constellate/internal/library"
	"github.com/dgallion1/constellate/internal/outline"
	"github.com/spf13/cobra"
)

func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [files...]",
		Short: "Validate constellations; exits non-zero if any is malformed",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				log := a.logger(os.Stderr)
				lib := library.New(a.cfg.Dir, log)
				err := lib.Load(cmd.Context())
				for _, c := range lib.List() {
					fmt.Fprintf(out, "ok   %s (%d pages)\n", c.Slug, c.Len())
				}
				if err != nil {
					for _, e := range unjoin(err) {
						fmt.Fprintf(out, "FAIL %v\n", e)
					}
					return errors.New("malformed constellations found")
				}
				return nil
			}

			failed := 0
			for _, path := range args {
				c, err := checkFile(path)
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %v\n", err)
					continue
				}
				fmt.Fprintf(out, "ok   %s (%d pages)\n", path, c.Len())
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files are malformed", failed, len(args))
			}
			return nil
		},
	}
}

func checkFile(path string) (*constellation.Constellation, error) {
	c, err := constellation.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if _, err := outline.Build(c, -1); err != nil {
		return nil, err
	}
	return c, nil
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
