package paper

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/example/morningpaint/internal/pigment"
)

// Parse reads a paper definition from an io.Reader.
// The format is a simple key-value pair per line:
//
//	ID: sketchbook
//	Label: Sketchbook
//	Background: #F7F3E8
//	Pattern: dots
func Parse(r io.Reader) (Paper, error) {
	p := Paper{ID: "custom", Label: "Custom", Background: presets[0].Background}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if err := p.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return Paper{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return p, scanner.Err()
}

// Set applies one key. Unknown keys are ignored for forward compatibility.
func (p *Paper) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "id":
		p.ID = strings.ToLower(value)
	case "label", "name":
		p.Label = value
	case "background", "bg":
		c, err := pigment.ParseColor(value)
		if err != nil {
			return fmt.Errorf("invalid color for key %s: %w", key, err)
		}
		p.Background = c
	case "pattern", "grid":
		pat, err := ParsePattern(value)
		if err != nil {
			return err
		}
		p.Pattern = pat
	}
	return nil
}

// String renders p in the format read by Parse.
func (p Paper) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID: %s\n", p.ID)
	fmt.Fprintf(&b, "Label: %s\n", p.Label)
	fmt.Fprintf(&b, "Background: %s\n", pigment.Hex(p.Background))
	fmt.Fprintf(&b, "Pattern: %s\n", p.Pattern)
	return b.String()
}
