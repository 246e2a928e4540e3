package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/morningpaint/internal/brush"
	"github.com/example/morningpaint/internal/paper"
	"github.com/example/morningpaint/internal/pigment"
	"github.com/example/morningpaint/internal/watercolor"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	var currentPaper string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(line, "["), "]"))
			currentPaper = ""
			if name, ok := strings.CutPrefix(section, "paper."); ok && name != "" {
				currentPaper = name
				// Start from the preset of the same name, if any, so missing
				// keys inherit.
				p, found := paper.Preset(name)
				if !found {
					p = paper.Paper{ID: name, Label: name, Background: paper.Presets()[0].Background}
				}
				cfg.Papers[name] = p
			}
			continue
		}

		// Key = Value or Key: Value
		var key, value string
		if k, v, ok := strings.Cut(line, "="); ok {
			key, value = k, v
		} else if k, v, ok := strings.Cut(line, ":"); ok {
			key, value = k, v
		} else {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") && len(value) >= 2 {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentPaper != "":
			p := cfg.Papers[currentPaper]
			err = p.Set(key, value)
			p.ID = currentPaper
			cfg.Papers[currentPaper] = p
		case section == "":
			err = setRootField(cfg, key, value)
		case section == "brush":
			err = setBrushField(&cfg.Brush, key, value)
		case section == "export":
			err = setExportField(&cfg.Export, key, value)
		case section == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		}
		if err != nil {
			if section == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", section, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch key {
	case "paper":
		cfg.Paper = value
	case "save_dir":
		cfg.SaveDir = value
	case "tile_size":
		n, err := positiveInt(key, value)
		if err != nil {
			return err
		}
		if err := watercolor.CheckTileSize(n); err != nil {
			return fmt.Errorf("invalid tile_size: %w", err)
		}
		cfg.TileSize = n
	case "history":
		n, err := positiveInt(key, value)
		if err != nil {
			return err
		}
		cfg.History = n
	case "seed":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %w", err)
		}
		cfg.Seed = n
	}
	return nil
}

func setBrushField(b *Brush, key, value string) error {
	switch key {
	case "kind", "brush":
		k, err := brush.ParseKind(value)
		if err != nil {
			return err
		}
		b.Kind = k
	case "size":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid size: %w", err)
		}
		b.Size = f
	case "color", "colour":
		c, err := pigment.ParseColor(value)
		if err != nil {
			return err
		}
		b.Color = c
	case "opacity":
		n, err := positiveInt(key, value)
		if err != nil {
			return err
		}
		b.Opacity = n
	}
	return nil
}

func setExportField(e *Export, key, value string) error {
	switch key {
	case "max_dimension":
		n, err := positiveInt(key, value)
		if err != nil {
			return err
		}
		e.MaxDimension = n
	case "background_opacity":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > 100 {
			return fmt.Errorf("invalid background_opacity %q: want 0-100", value)
		}
		e.BackgroundOpacity = n
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch key {
	case "save":
		n.Save = b
	case "export":
		n.Export = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func positiveInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}
