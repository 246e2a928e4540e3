package export

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
)

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePDF writes a single page document sized to img, one point per pixel.
func WritePDF(w io.Writer, img image.Image) error {
	b := img.Bounds()
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	wd, ht := float64(b.Dx()), float64(b.Dy())
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: wd, Ht: ht},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("painting", opt, bytes.NewReader(data))
	p.ImageOptions("painting", 0, 0, wd, ht, false, opt, 0, "")
	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// Save writes img to path. A .pdf extension produces a PDF; anything else is
// handed to imaging, which picks the format from the extension.
func Save(path string, img image.Image) error {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := WritePDF(f, img); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
