package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/vanderheijden86/treelist/pkg/catalog"
	"github.com/vanderheijden86/treelist/pkg/config"
	"github.com/vanderheijden86/treelist/pkg/export"
	"github.com/vanderheijden86/treelist/pkg/tree"
	"github.com/vanderheijden86/treelist/pkg/ui"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// options holds the parsed command line.
type options struct {
	help       bool
	version    bool
	configPath string
	catalogs   string
	robotRows  bool
	activate   string
	exportMD   string
	exportSVG  string
	exportPNG  string
	debugLog   string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, term.IsTerminal(int(os.Stdout.Fd()))))
}

func parseFlags(args []string, stderr io.Writer) (*options, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("tl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.BoolVar(&opts.help, "help", false, "Show help")
	fs.BoolVar(&opts.version, "version", false, "Show version")
	fs.StringVar(&opts.configPath, "config", "", "Config file (default: .tl/config.yaml found by walking up from the current directory)")
	fs.StringVar(&opts.catalogs, "catalog", "", "Comma-separated catalog files or directories (overrides config)")
	fs.BoolVar(&opts.robotRows, "robot-rows", false, "Output the flat rows as JSON and exit")
	fs.StringVar(&opts.activate, "activate", "", "Comma-separated row indices to activate, in order, before output")
	fs.StringVar(&opts.exportMD, "export-md", "", "Export the rows to a Markdown file")
	fs.StringVar(&opts.exportSVG, "export-svg", "", "Export the rows to an SVG file")
	fs.StringVar(&opts.exportPNG, "export-png", "", "Export the rows to a PNG file")
	fs.StringVar(&opts.debugLog, "debug-log", "", "Write debug logging, including tree dumps, to this file")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	return opts, fs, nil
}

func run(args []string, stdout, stderr io.Writer, isTTY bool) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.help {
		fmt.Fprintln(stdout, "Usage: tl [options]")
		fmt.Fprintln(stdout, "\nAn expandable list of cities: activate a city to show its description.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return 0
	}

	if opts.version {
		fmt.Fprintf(stdout, "tl %s\n", version)
		return 0
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	paths := cfg.CatalogPaths()
	if opts.catalogs != "" {
		paths = config.ExpandCatalogs(splitList(opts.catalogs))
	}

	tuiMode := isTTY && !opts.robotRows && opts.exportMD == "" && opts.exportSVG == "" && opts.exportPNG == ""

	// Logging: the TUI owns the terminal, so log output goes to the debug
	// file or nowhere.
	if opts.debugLog != "" {
		f, err := tea.LogToFile(opts.debugLog, "tl")
		if err != nil {
			fmt.Fprintf(stderr, "Error opening debug log: %v\n", err)
			return 1
		}
		defer f.Close()
	} else if tuiMode {
		log.SetOutput(io.Discard)
	}

	cities, err := catalog.LoadAll(context.Background(), paths)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading catalog: %v\n", err)
		return 1
	}

	ctrl := tree.NewController(tree.New[catalog.City](),
		tree.WithIDGenerator[catalog.City](cfg.IDGenerator()),
		tree.WithDebugLog[catalog.City](opts.debugLog != ""),
	)
	ctrl.AddRoots(cities)

	if err := applyActivations(ctrl, opts.activate); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if !tuiMode {
		return runBatch(ctrl, opts, stdout, stderr)
	}

	return runTUI(ctrl, cfg, paths, stderr)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	return config.Discover()
}

// applyActivations activates each comma-separated row index in turn.
func applyActivations(ctrl *tree.Controller[catalog.City], list string) error {
	for _, field := range splitList(list) {
		idx, err := strconv.Atoi(field)
		if err != nil {
			return fmt.Errorf("invalid --activate index %q: %w", field, err)
		}
		if _, err := ctrl.Activate(idx); err != nil {
			return fmt.Errorf("activating row %d: %w", idx, err)
		}
	}
	return nil
}

// runBatch handles exports and robot output, falling back to plain rows
// when stdout is not a terminal.
func runBatch(ctrl *tree.Controller[catalog.City], opts *options, stdout, stderr io.Writer) int {
	rows := ctrl.Rows()
	wrote := false

	if opts.exportMD != "" {
		fmt.Fprintf(stderr, "Exporting to %s...\n", opts.exportMD)
		md, err := export.GenerateMarkdown(rows, "Cities")
		if err == nil {
			err = os.WriteFile(opts.exportMD, []byte(md), 0o644)
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error exporting: %v\n", err)
			return 1
		}
		wrote = true
	}

	if opts.exportSVG != "" {
		fmt.Fprintf(stderr, "Exporting to %s...\n", opts.exportSVG)
		if err := writeFile(opts.exportSVG, func(w io.Writer) error { return export.WriteSVG(w, rows) }); err != nil {
			fmt.Fprintf(stderr, "Error exporting: %v\n", err)
			return 1
		}
		wrote = true
	}

	if opts.exportPNG != "" {
		fmt.Fprintf(stderr, "Exporting to %s...\n", opts.exportPNG)
		if err := export.SavePNG(opts.exportPNG, rows); err != nil {
			fmt.Fprintf(stderr, "Error exporting: %v\n", err)
			return 1
		}
		wrote = true
	}

	if opts.robotRows {
		if err := export.RowsJSON(stdout, rows); err != nil {
			fmt.Fprintf(stderr, "Error encoding rows: %v\n", err)
			return 1
		}
		return 0
	}

	if wrote {
		fmt.Fprintln(stderr, "Done!")
		return 0
	}

	if err := export.WriteText(stdout, rows); err != nil {
		fmt.Fprintf(stderr, "Error writing rows: %v\n", err)
		return 1
	}
	return 0
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runTUI(ctrl *tree.Controller[catalog.City], cfg *config.Config, paths []string, stderr io.Writer) int {
	var worker *ui.BackgroundWorker
	if cfg.WatchEnabled() && len(paths) > 0 {
		w, err := ui.NewBackgroundWorker(ui.WorkerConfig{Paths: paths})
		if err != nil {
			log.Printf("warning: catalog watching disabled: %v", err)
		} else {
			worker = w
			worker.SetBaseline(catalog.Hash(rootCities(ctrl)))
			defer worker.Stop()
		}
	}

	m := ui.NewModel(ctrl, ui.DefaultTheme(lipgloss.DefaultRenderer()), ui.ModelConfig{
		CatalogPaths: paths,
		DetailPane:   cfg.DetailPaneEnabled(),
		Expand:       cfg.UI.Expand,
		Worker:       worker,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if worker != nil {
		worker.SetSender(p)
		if err := worker.Start(); err != nil {
			log.Printf("warning: catalog watching disabled: %v", err)
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(stderr, "Error running tl: %v\n", err)
		return 1
	}
	return 0
}

// rootCities returns the payloads of the current roots.
func rootCities(ctrl *tree.Controller[catalog.City]) []catalog.City {
	roots := ctrl.Tree().Roots()
	cities := make([]catalog.City, 0, len(roots))
	for _, r := range roots {
		if city, ok := r.Payload(); ok {
			cities = append(cities, city)
		}
	}
	return cities
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
