package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/constellate/internal/config"
	"github.com/dgallion1/constellate/internal/render"
	"github.com/dgallion1/constellate/internal/theme"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// maxprocs.Set only fails on an invalid GOMAXPROCS, where runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries the settings shared by every command.
type app struct {
	cfg     config.Config
	envFile string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var dir, themeName, mode, logLevel string

	root := &cobra.Command{
		Use:           "constellate",
		Short:         "Serve and build constellation sites",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.envFile != "" {
				a.cfg = config.Load(a.envFile)
			} else {
				a.cfg = config.Load()
			}
			flags := cmd.Flags()
			if flags.Changed("dir") {
				a.cfg.Dir = dir
			}
			if flags.Changed("theme") {
				a.cfg.Theme = themeName
			}
			if flags.Changed("mode") {
				a.cfg.ColorMode = mode
			}
			if flags.Changed("log-level") {
				a.cfg.LogLevel = logLevel
			}
			return a.cfg.Validate()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.envFile, "env-file", "", "load settings from this .env file (default .env when present)")
	pf.StringVarP(&dir, "dir", "d", "", "constellation directory (CONSTELLATION_DIR)")
	pf.StringVar(&themeName, "theme", "", "site theme (CONSTELLATE_THEME)")
	pf.StringVar(&mode, "mode", "", "color mode: light|dark (COLOR_MODE)")
	pf.StringVar(&logLevel, "log-level", "", "debug|info|warn|error (LOG_LEVEL)")

	root.AddCommand(
		serveCmd(a),
		buildCmd(a),
		importCmd(a),
		checkCmd(a),
		outlineCmd(a),
		showCmd(a),
	)
	return root
}

// logger returns a JSON logger at the configured level.
func (a *app) logger(w io.Writer) *slog.Logger {
	level, err := a.cfg.LogLevelValue()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func (a *app) colorMode() theme.ColorMode {
	// Validate already rejected bad modes.
	mode, _ := theme.ParseColorMode(a.cfg.ColorMode)
	return mode
}

// renderer builds the page renderer for the configured theme.
func (a *app) renderer() (*render.Renderer, error) {
	themes, err := a.cfg.Themes()
	if err != nil {
		return nil, err
	}
	t, err := themes.Get(a.cfg.Theme)
	if err != nil {
		return nil, err
	}
	return render.New(render.Options{
		Theme:        t,
		Mode:         a.colorMode(),
		PanelURL:     a.cfg.PanelURL,
		BasePath:     a.cfg.BasePath,
		MaxTableRows: a.cfg.MaxTableRows,
	})
}
