package export

import (
	"fmt"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/geom"
)

const (
	pdfMargin   = 15.0 // mm
	pdfHeader   = 10.0 // mm reserved for the caption
	pdfMinWidth = 0.2  // mm
)

// WritePDF renders every frame of every object of s as a flat A4 page,
// viewed down the z axis with y up. Strokes keep their colors and line
// widths scale with thickness.
func WritePDF(w io.Writer, s domain.Story) error {
	p := buildPDF(s)
	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func buildPDF(s domain.Story) *gofpdf.Fpdf {
	p := gofpdf.New("P", "mm", "A4", "")
	p.SetTitle(s.Title, true)
	p.SetFont("Helvetica", "", 10)
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")

	for _, o := range s.Objects {
		b := o.Bounds()
		for i, f := range o.Frames {
			p.AddPage()
			p.SetTextColor(0, 0, 0)
			p.Text(pdfMargin, pdfMargin, fmt.Sprintf("%s - %s - frame %d/%d", s.Title, o.Name, i+1, len(o.Frames)))
			if !b.IsEmpty() {
				drawFrame(p, f, b)
			}
		}
	}
	return p
}

// drawFrame fits the object's bounds into the page so every frame of an
// object shares one scale.
func drawFrame(p *gofpdf.Fpdf, f domain.Frame, b geom.Bounds) {
	pw, ph := p.GetPageSize()
	top := pdfMargin + pdfHeader
	aw, ah := pw-2*pdfMargin, ph-top-pdfMargin

	size := b.Size()
	scale := math.Inf(1)
	if size.X > 0 {
		scale = aw / size.X
	}
	if size.Y > 0 {
		scale = math.Min(scale, ah/size.Y)
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}
	c := b.Center()
	cx, cy := pdfMargin+aw/2, top+ah/2
	toPage := func(v geom.Vec3) (float64, float64) {
		return cx + (v.X-c.X)*scale, cy - (v.Y-c.Y)*scale
	}

	for _, s := range f.Strokes {
		p.SetDrawColor(channel(s.Color.Red), channel(s.Color.Green), channel(s.Color.Blue))
		p.SetAlpha(clamp01(s.Color.Alpha), "Normal")
		p.SetLineWidth(math.Max(pdfMinWidth, s.Thickness*scale/6000))
		for i := 1; i < len(s.Points); i++ {
			x1, y1 := toPage(s.Points[i-1])
			x2, y2 := toPage(s.Points[i])
			p.Line(x1, y1, x2, y2)
		}
	}
	p.SetAlpha(1, "Normal")
}

func channel(v float64) int {
	return int(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
