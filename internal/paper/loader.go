package paper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Loader finds papers by name or path.
type Loader struct {
	ConfigDir string
	SystemDir string
	// Custom papers, usually from the config file, take precedence over
	// presets.
	Custom map[string]Paper
}

// NewLoader creates a Loader with standard paths.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "morningpaint", "papers"),
		SystemDir: "/usr/share/morningpaint/papers",
	}
}

// Load resolves name in order: an existing file path, a custom paper, a
// preset, ConfigDir, then SystemDir. An empty name is the default paper.
func (l *Loader) Load(name string) (Paper, error) {
	if name == "" {
		return Default(), nil
	}

	if _, err := os.Stat(name); err == nil {
		return parseFile(name)
	}

	key := strings.ToLower(name)
	if p, ok := l.Custom[key]; ok {
		return p, nil
	}
	if p, ok := Preset(key); ok {
		return p, nil
	}

	filename := key
	if !strings.HasSuffix(filename, ".paper") {
		filename += ".paper"
	}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return parseFile(path)
		}
	}
	return Paper{}, fmt.Errorf("paper %q not found", name)
}

func parseFile(path string) (Paper, error) {
	f, err := os.Open(path)
	if err != nil {
		return Paper{}, err
	}
	defer f.Close()
	p, err := Parse(f)
	if err != nil {
		return Paper{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}
