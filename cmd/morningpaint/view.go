package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/google/uuid"

	"github.com/example/morningpaint/internal/clipboard"
	"github.com/example/morningpaint/internal/logging"
	"github.com/example/morningpaint/internal/paper"
	"github.com/example/morningpaint/internal/script"
	"github.com/example/morningpaint/internal/viewer"
)

type viewCmd struct {
	*root
	fs        *flag.FlagSet
	store     storeFlags
	brush     brushFlags
	record    string
	exportDir string
}

func (c *viewCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *viewCmd) Program() string { return c.subcommand("view") }

func parseViewCmd(args []string, r *root) (*viewCmd, error) {
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	cmd := &viewCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	cmd.store.register(fs, r)
	cmd.brush.register(fs, r)
	fs.StringVar(&cmd.record, "record", "", "write every stroke to this script file on exit")
	fs.StringVar(&cmd.exportDir, "export-dir", ".", "directory Ctrl+E exports into")
	if err := parseFlags(fs, cmd, args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

type systemClipboard struct{}

func (systemClipboard) WriteImage(img image.Image) error { return clipboard.WriteImage(img) }

func (systemClipboard) ReadImage() (image.Image, error) { return clipboard.ReadImage() }

// papers returns the presets followed by the custom papers.
func (r *root) papers() []paper.Paper {
	all := paper.Presets()
	for _, id := range sortedKeys(r.config.Papers) {
		all = append(all, r.config.Papers[id])
	}
	return all
}

func (c *viewCmd) Run() error {
	spec, err := c.brush.spec()
	if err != nil {
		return err
	}
	ctx := context.Background()
	cv, st, err := c.store.load(ctx, c.root)
	if err != nil {
		return err
	}
	session := uuid.NewString()
	logging.Logger().Info("paint session", "id", session, "store", c.store.path, "tiles", cv.Store().Len())

	opts := []viewer.Option{
		viewer.WithTitle(fmt.Sprintf("Morning Paint - %s", c.store.path)),
		viewer.WithPaper(c.paper, c.papers()),
		viewer.WithBrush(spec),
		viewer.WithSaver(st),
		viewer.WithNotifier(c.notifier),
		viewer.WithClipboard(systemClipboard{}),
		viewer.WithExport(c.config.ExportOptions(c.paper), c.exportDir),
	}
	var rec *script.Recorder
	if c.record != "" {
		rec = &script.Recorder{}
		opts = append(opts, viewer.WithRecorder(rec))
	}
	viewer.New(cv, opts...).Run()

	if err := c.store.save(ctx, c.root, cv, st); err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	f, err := os.Create(c.record)
	if err != nil {
		return fmt.Errorf("create record file: %w", err)
	}
	defer f.Close()
	if err := script.Write(f, rec.Ops()); err != nil {
		return fmt.Errorf("write %s: %w", c.record, err)
	}
	logging.Logger().Info("session recorded", "id", session, "file", c.record, "ops", len(rec.Ops()))
	return nil
}
