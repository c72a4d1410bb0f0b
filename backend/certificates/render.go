// Package certificates draws certificate images.
package certificates

import (
	"bytes"
	"fmt"
	"image/color"

	"lms/backend/models"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Page geometry is landscape US letter in points, drawn at scale.
const (
	pageWidth  = 792.0
	pageHeight = 612.0
	scale      = 2.0
)

var (
	background = color.RGBA{R: 0xf8, G: 0xfa, B: 0xfc, A: 0xff}
	accent     = color.RGBA{R: 0x4f, G: 0x46, B: 0xe5, A: 0xff}
	ink        = color.RGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}
	muted      = color.RGBA{R: 0x64, G: 0x74, B: 0x8b, A: 0xff}
)

type Renderer struct {
	regular *truetype.Font
	bold    *truetype.Font
}

func NewRenderer() (*Renderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	return &Renderer{regular: regular, bold: bold}, nil
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size * scale,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// Width and Height are the pixel dimensions of rendered certificates.
func (r *Renderer) Width() int  { return int(pageWidth * scale) }
func (r *Renderer) Height() int { return int(pageHeight * scale) }

// RenderPNG draws the certificate. Coordinates below are in points measured from the bottom-left corner.
func (r *Renderer) RenderPNG(a *models.CertificateArtifact) ([]byte, error) {
	dc := gg.NewContext(r.Width(), r.Height())

	x := func(pt float64) float64 { return pt * scale }
	y := func(pt float64) float64 { return (pageHeight - pt) * scale }

	dc.SetColor(background)
	dc.DrawRectangle(0, 0, float64(r.Width()), float64(r.Height()))
	dc.Fill()

	dc.SetColor(accent)
	dc.SetLineWidth(10 * scale)
	dc.DrawRectangle(x(20), y(pageHeight-20), x(pageWidth-40), x(pageHeight-40))
	dc.Stroke()

	center := func(text string, f *truetype.Font, size float64, c color.Color, cx, cy float64) {
		dc.SetFontFace(face(f, size))
		dc.SetColor(c)
		dc.DrawStringAnchored(text, x(cx), y(cy), 0.5, 0)
	}

	center("Certificate of Completion", r.bold, 40, ink, pageWidth/2, pageHeight-120)
	center("This certifies that", r.regular, 20, ink, pageWidth/2, pageHeight-200)
	center(a.LearnerName, r.bold, 30, accent, pageWidth/2, pageHeight-250)
	center("has successfully completed the course:", r.regular, 20, ink, pageWidth/2, pageHeight-310)
	center(a.CourseTitle, r.bold, 26, ink, pageWidth/2, pageHeight-360)

	center("Date: "+a.IssuedOn, r.regular, 14, ink, 150, 100)
	center("Instructor Signature", r.regular, 14, ink, pageWidth-150, 100)
	dc.SetColor(ink)
	dc.SetLineWidth(1 * scale)
	dc.DrawLine(x(80), y(120), x(220), y(120))
	dc.DrawLine(x(pageWidth-220), y(120), x(pageWidth-80), y(120))
	dc.Stroke()

	dc.SetFontFace(face(r.regular, 10))
	dc.SetColor(muted)
	dc.DrawStringAnchored("Certificate ID: "+a.CertificateID, x(pageWidth-30), y(30), 1, 0)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
