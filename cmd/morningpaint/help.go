package main

import (
	"bytes"
	"embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"
	"text/template"

	"github.com/example/morningpaint/internal/logging"
)

//go:embed templates/*.txt
var helpFS embed.FS

var (
	helpOnce sync.Once
	helpTmpl *template.Template
)

func parseHelpTemplates() {
	helpTmpl = template.Must(template.New("").Funcs(map[string]any{
		"flags": func(fs *flag.FlagSet) []flagInfo {
			result := []flagInfo{}
			if fs == nil {
				return result
			}
			fs.VisitAll(func(f *flag.Flag) {
				result = append(result, flagInfo{f.Name, f.DefValue, f.Usage})
			})
			return result
		},
	}).ParseFS(helpFS, "templates/*.txt"))
}

type flagInfo struct {
	Name     string
	DefValue string
	Usage    string
}

type HelpData interface {
	Program() string
	Template() string
	FlagSet() *flag.FlagSet
}

type UsageError struct {
	of  HelpData
	err error
}

func usageErrorf(of HelpData, format string, args ...any) *UsageError {
	return &UsageError{of: of, err: fmt.Errorf(format, args...)}
}

func (e *UsageError) Error() string {
	help, err := e.renderHelp()
	if err != nil {
		return err.Error()
	}
	if e.err != nil {
		return fmt.Sprintf("error: %v\n\n%s", e.err, help)
	}
	return help
}

func (e *UsageError) Unwrap() error { return e.err }

func (e *UsageError) renderHelp() (string, error) {
	helpOnce.Do(parseHelpTemplates)
	var buf bytes.Buffer
	err := helpTmpl.ExecuteTemplate(&buf, e.of.Template(), e.of)
	if err != nil {
		logging.Logger().Error("render help template", "template", e.of.Template(), "err", err)
		return "", err
	}
	return buf.String(), nil
}

func usageFunc(h HelpData) func() {
	return func() {
		fmt.Fprint(os.Stderr, (&UsageError{of: h}).Error())
	}
}

// parseFlags parses args into fs, turning -h into a UsageError.
func parseFlags(fs *flag.FlagSet, of HelpData, args []string) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return &UsageError{of: of}
		}
		return &UsageError{of: of, err: err}
	}
	return nil
}

func (r *root) Template() string { return "root.txt" }

func (c *paintCmd) Template() string { return "paint.txt" }

func (c *fillCmd) Template() string { return "fill.txt" }

func (c *exportCmd) Template() string { return "export.txt" }

func (c *mixCmd) Template() string { return "mix.txt" }

func (c *viewCmd) Template() string { return "view.txt" }

func (c *tilesCmd) Template() string { return "tiles.txt" }

func (c *papersCmd) Template() string { return "papers.txt" }

func (c *configCmd) Template() string { return "config.txt" }

func (v *versionCmd) Template() string { return "version.txt" }
