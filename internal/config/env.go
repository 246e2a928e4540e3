package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/example/morningpaint/internal/brush"
	"github.com/example/morningpaint/internal/pigment"
	"github.com/example/morningpaint/internal/watercolor"
)

// EnvPrefix prefixes every environment override, e.g. MORNINGPAINT_PAPER.
const EnvPrefix = "MORNINGPAINT"

// Env lists the environment overrides. Unset variables leave their field nil.
type Env struct {
	Paper        *string  `envconfig:"PAPER"`
	SaveDir      *string  `envconfig:"SAVE_DIR"`
	TileSize     *int     `envconfig:"TILE_SIZE"`
	History      *int     `envconfig:"HISTORY"`
	Seed         *uint64  `envconfig:"SEED"`
	Brush        *string  `envconfig:"BRUSH"`
	BrushSize    *float64 `envconfig:"BRUSH_SIZE"`
	Color        *string  `envconfig:"COLOR"`
	Opacity      *int     `envconfig:"OPACITY"`
	MaxDimension *int     `envconfig:"MAX_DIMENSION"`
}

// ReadEnv reads the overrides from the process environment.
func ReadEnv() (Env, error) {
	var e Env
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return Env{}, fmt.Errorf("read environment: %w", err)
	}
	return e, nil
}

// Apply copies every set override into cfg.
func (e Env) Apply(cfg *Config) error {
	if e.Paper != nil {
		cfg.Paper = *e.Paper
	}
	if e.SaveDir != nil {
		cfg.SaveDir = *e.SaveDir
	}
	if e.TileSize != nil {
		if err := watercolor.CheckTileSize(*e.TileSize); err != nil {
			return fmt.Errorf("%s_TILE_SIZE: %w", EnvPrefix, err)
		}
		cfg.TileSize = *e.TileSize
	}
	if e.History != nil {
		if *e.History <= 0 {
			return fmt.Errorf("%s_HISTORY must be positive", EnvPrefix)
		}
		cfg.History = *e.History
	}
	if e.Seed != nil {
		cfg.Seed = *e.Seed
	}
	if e.Brush != nil {
		k, err := brush.ParseKind(*e.Brush)
		if err != nil {
			return fmt.Errorf("%s_BRUSH: %w", EnvPrefix, err)
		}
		cfg.Brush.Kind = k
	}
	if e.BrushSize != nil {
		cfg.Brush.Size = *e.BrushSize
	}
	if e.Color != nil {
		c, err := pigment.ParseColor(*e.Color)
		if err != nil {
			return fmt.Errorf("%s_COLOR: %w", EnvPrefix, err)
		}
		cfg.Brush.Color = c
	}
	if e.Opacity != nil {
		cfg.Brush.Opacity = *e.Opacity
	}
	if e.MaxDimension != nil {
		cfg.Export.MaxDimension = *e.MaxDimension
	}
	return nil
}
