package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/example/morningpaint/internal/config"
	"github.com/example/morningpaint/internal/logging"
	"github.com/example/morningpaint/internal/notify"
	"github.com/example/morningpaint/internal/paper"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs          *flag.FlagSet
	program     string
	notifier    *notify.Notifier
	config      *config.Config
	stdout      io.Writer
	verbose     bool
	saveAlerts  bool
	exportAlert bool
	copyAlerts  bool
	paperName   string
	paper       paper.Paper
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	return newRootWith(cfg, notify.New(notify.LoadPreferences()), os.Stdout)
}

func newRootWith(cfg *config.Config, n *notify.Notifier, stdout io.Writer) *root {
	r := &root{
		fs:       flag.NewFlagSet("morningpaint", flag.ContinueOnError),
		program:  "morningpaint",
		notifier: n,
		config:   cfg,
		stdout:   stdout,
	}
	r.fs.BoolVar(&r.verbose, "v", false, "log debug output to stderr")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving tiles")
	r.fs.BoolVar(&r.exportAlert, "notify-export", cfg.Notify.Export, "show a desktop notification after exporting an image")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	// Precedence: CLI > Env > Config > Default. Env and config are already
	// merged into cfg, so an empty flag falls back to cfg.Paper.
	r.fs.StringVar(&r.paperName, "paper", "", "paper preset, custom paper or .paper file")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) subcommand(name string) string {
	return strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return &UsageError{of: r}
		}
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	level := slog.LevelWarn
	if r.verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(logging.NewHandler(os.Stderr, level)))

	if r.notifier != nil {
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventExport, r.exportAlert)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}

	name := r.paperName
	if name == "" {
		name = r.config.Paper
	}
	p, err := r.config.PaperLoader().Load(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load paper '%s': %v. using default.\n", name, err)
		p = paper.Default()
	}
	r.paper = p

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var cmd runnable
	switch cmdName {
	case "paint":
		cmd, err = parsePaintCmd(subArgs, r)
	case "fill":
		cmd, err = parseFillCmd(subArgs, r)
	case "export":
		cmd, err = parseExportCmd(subArgs, r)
	case "mix":
		cmd, err = parseMixCmd(subArgs, r)
	case "view":
		cmd, err = parseViewCmd(subArgs, r)
	case "tiles":
		cmd, err = parseTilesCmd(subArgs, r)
	case "papers":
		cmd, err = parsePapersCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
