package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/example/morningpaint/internal/clipboard"
	"github.com/example/morningpaint/internal/export"
)

var (
	writeClipboardImage = clipboard.WriteImage
	readClipboardImage  = clipboard.ReadImage
)

type exportCmd struct {
	*root
	fs                *flag.FlagSet
	store             storeFlags
	output            string
	toClipboard       bool
	background        string
	bgFromClipboard   bool
	backgroundAt      string
	backgroundOpacity int
	maxDimension      int
	now               func() time.Time
}

func (c *exportCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *exportCmd) Program() string { return c.subcommand("export") }

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	cmd := &exportCmd{root: r, fs: fs, now: time.Now}
	fs.Usage = usageFunc(cmd)
	cmd.store.register(fs, r)
	fs.StringVar(&cmd.output, "output", "", "output file; .pdf writes a PDF, anything else an image (default morning-paint-<time>.png)")
	fs.BoolVar(&cmd.toClipboard, "to-clipboard", false, "copy the image to the clipboard instead of writing a file")
	fs.BoolVar(&cmd.toClipboard, "to-clip", false, "copy the image to the clipboard (alias)")
	fs.StringVar(&cmd.background, "background", "", "reference image drawn under the paint")
	fs.BoolVar(&cmd.bgFromClipboard, "background-from-clipboard", false, "use the clipboard image as the reference image")
	fs.StringVar(&cmd.backgroundAt, "background-at", "", "world rectangle x0,y0,x1,y1 for the reference image (default: painting origin at natural size)")
	fs.IntVar(&cmd.backgroundOpacity, "background-opacity", r.config.Export.BackgroundOpacity, "reference image opacity percent")
	fs.IntVar(&cmd.maxDimension, "max-dimension", r.config.Export.MaxDimension, "largest output side in pixels")
	if err := parseFlags(fs, cmd, args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	if cmd.toClipboard && cmd.output != "" {
		return nil, usageErrorf(cmd, "-output cannot be combined with -to-clipboard")
	}
	if cmd.background != "" && cmd.bgFromClipboard {
		return nil, usageErrorf(cmd, "-background cannot be combined with -background-from-clipboard")
	}
	return cmd, nil
}

func parseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("rectangle %q: want x0,y0,x1,y1", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("rectangle %q: %w", s, err)
		}
		v[i] = n
	}
	return image.Rect(v[0], v[1], v[2], v[3]), nil
}

func (c *exportCmd) loadBackground() (image.Image, error) {
	switch {
	case c.bgFromClipboard:
		img, err := readClipboardImage()
		if err != nil {
			return nil, fmt.Errorf("read clipboard image: %w", err)
		}
		return img, nil
	case c.background != "":
		img, err := imaging.Open(c.background, imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("open background %s: %w", c.background, err)
		}
		return img, nil
	}
	return nil, nil
}

func (c *exportCmd) Run() error {
	ctx := context.Background()
	cv, _, err := c.store.load(ctx, c.root)
	if err != nil {
		return err
	}
	opts := c.config.ExportOptions(c.paper)
	opts.BackgroundOpacity = c.backgroundOpacity
	opts.MaxDimension = c.maxDimension
	bg, err := c.loadBackground()
	if err != nil {
		return err
	}
	if bg != nil {
		opts.Background = bg
		if c.backgroundAt != "" {
			if opts.BackgroundRect, err = parseRect(c.backgroundAt); err != nil {
				return err
			}
		} else {
			at := cv.Store().Bounds().Min
			opts.BackgroundRect = image.Rectangle{Min: at, Max: at.Add(bg.Bounds().Size())}
		}
	}
	img, err := export.Flatten(cv.Store(), opts)
	if errors.Is(err, export.ErrEmpty) {
		return fmt.Errorf("nothing to export in %s: %w", c.store.path, err)
	}
	if err != nil {
		return err
	}

	if c.toClipboard {
		if err := writeClipboardImage(img); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		c.notifier.Copy("painting")
		fmt.Fprintf(c.stdout, "copied %dx%d image to the clipboard\n", img.Bounds().Dx(), img.Bounds().Dy())
		return nil
	}

	out := c.output
	if out == "" {
		out = export.FileName(c.now(), ".png")
	}
	if err := export.Save(out, img); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	c.notifier.Export(out, img)
	fmt.Fprintf(c.stdout, "exported %dx%d image to %s\n", img.Bounds().Dx(), img.Bounds().Dy(), out)
	return nil
}
