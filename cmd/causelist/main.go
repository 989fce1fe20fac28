// Command causelist runs the state → district → complex → court cascade
// against the backend without a browser and requests one cause list.
//
//	causelist -state Delhi -district North -complex ComplexA -court Court1 \
//	    -kind criminal -date 2024-01-15 -out result.xlsx
//
// With -list it prints the options of the first level left unset instead.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"causelist/internal/causelist"
	"causelist/internal/causelist/export"
	"causelist/internal/causelist/models"
	"causelist/internal/causelist/selector"
	"causelist/internal/platform/config"
	"causelist/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configDir string
	backend   string
	values    [4]string
	kind      string
	date      string
	out       string
	list      bool
	verbose   bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("causelist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configDir, "config", ".", "directory holding an optional causelist.yaml")
	fs.StringVar(&o.backend, "backend", "", "backend base URL (overrides config)")
	fs.StringVar(&o.values[models.LevelState], "state", "", "state name as listed by the backend")
	fs.StringVar(&o.values[models.LevelDistrict], "district", "", "district name")
	fs.StringVar(&o.values[models.LevelComplex], "complex", "", "court complex name")
	fs.StringVar(&o.values[models.LevelCourt], "court", "", "court name")
	fs.StringVar(&o.kind, "kind", string(models.KindCriminal), "cause list kind: criminal or civil")
	fs.StringVar(&o.date, "date", time.Now().Format(models.InputDateLayout), "cause list date, YYYY-MM-DD")
	fs.StringVar(&o.out, "out", "", "write returned rows to this .json, .csv or .xlsx file")
	fs.BoolVar(&o.list, "list", false, "print the options of the first unset level and exit")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return o, nil
}

// printAlerter shows alerts on the terminal.
type printAlerter struct {
	w io.Writer
}

func (a printAlerter) Alert(_ context.Context, message string) {
	fmt.Fprintln(a.w, message)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	kind, err := models.ParseKind(opts.kind)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := config.Load(opts.configDir)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if opts.backend != "" {
		cfg.Backend.BaseURL = strings.TrimRight(opts.backend, "/")
	}
	cfg.Log.Format = "text"
	cfg.Log.Level = "warn"
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	log, err := logger.NewWriter(stderr, cfg.Log)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	client, err := causelist.NewBackend(cfg.Backend, log, nil)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	cat, err := causelist.NewCatalog(client, causelist.NewCache(cfg.Cache, nil), log, nil)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	sel, err := selector.New(cat, cat, printAlerter{w: stdout}, selector.WithLogger(log))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := sel.LoadStates(ctx); err != nil {
		fmt.Fprintf(stderr, "load states: %v\n", err)
		return 1
	}
	for _, level := range models.Levels {
		value := opts.values[level]
		if value == "" {
			if opts.list {
				return printOptions(stdout, sel.Snapshot().List(level))
			}
			break
		}
		available := sel.Snapshot().List(level)
		if !available.Contains(value) {
			fmt.Fprintf(stderr, "%s %q not found; available: %s\n", level, value, strings.Join(available.Labels, ", "))
			return 1
		}
		if err := sel.Select(ctx, level, value); err != nil {
			fmt.Fprintf(stderr, "select %s: %v\n", level, err)
			return 1
		}
	}
	if opts.list {
		fmt.Fprintln(stderr, "every level is already set")
		return 2
	}

	sel.SetDate(opts.date)
	res, err := sel.Submit(ctx, kind)
	if err != nil {
		if !models.IsValidation(err) {
			fmt.Fprintf(stderr, "submit: %v\n", err)
		}
		return 1
	}

	if opts.out != "" {
		if err := export.WriteFile(opts.out, res.Entries); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "wrote %d rows to %s\n", len(res.Entries), opts.out)
	}
	return 0
}

func printOptions(w io.Writer, list models.OptionList) int {
	for _, label := range list.Labels {
		fmt.Fprintln(w, label)
	}
	return 0
}
