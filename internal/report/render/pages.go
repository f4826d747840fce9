package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"successplan/internal/domain"
	"successplan/internal/report"
)

// A4 portrait at 72 dpi, 20mm margins.
const (
	PageWidth  = 595
	PageHeight = 842
	margin     = 57
)

type faces struct {
	title, heading, body, detail font.Face
}

func loadFaces() (faces, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return faces{}, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return faces{}, fmt.Errorf("parse bold font: %w", err)
	}
	return faces{
		title:   truetype.NewFace(bold, &truetype.Options{Size: 24}),
		heading: truetype.NewFace(bold, &truetype.Options{Size: 16}),
		body:    truetype.NewFace(regular, &truetype.Options{Size: 11}),
		detail:  truetype.NewFace(regular, &truetype.Options{Size: 9}),
	}, nil
}

type layout struct {
	faces faces
	pages []image.Image
	dc    *gg.Context
	y     float64
}

func (l *layout) newPage() {
	if l.dc != nil {
		l.pages = append(l.pages, l.dc.Image())
	}
	l.dc = gg.NewContext(PageWidth, PageHeight)
	l.dc.SetColor(color.White)
	l.dc.Clear()
	l.dc.SetColor(color.Black)
	l.y = margin
}

// ensure starts a new page when fewer than h points remain.
func (l *layout) ensure(h float64) {
	if l.y+h > PageHeight-margin {
		l.newPage()
	}
}

func (l *layout) line(face font.Face, s string, indent float64) {
	l.dc.SetFontFace(face)
	for _, w := range l.dc.WordWrap(s, PageWidth-2*margin-indent) {
		_, h := l.dc.MeasureString(w)
		l.ensure(h * 1.6)
		l.y += h * 1.6
		l.dc.DrawString(w, margin+indent, l.y)
	}
}

func (l *layout) sparkline(series []float64) {
	if len(series) < 2 {
		return
	}
	const w, h = 160.0, 28.0
	l.ensure(h + 8)
	lo, hi := series[0], series[0]
	for _, v := range series {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	top := l.y + 4
	for i, v := range series {
		x := margin + 12 + w*float64(i)/float64(len(series)-1)
		y := top + h - h*(v-lo)/span
		if i == 0 {
			l.dc.MoveTo(x, y)
		} else {
			l.dc.LineTo(x, y)
		}
	}
	l.dc.SetLineWidth(1.5)
	l.dc.SetRGB(0.2, 0.4, 0.8)
	l.dc.Stroke()
	l.dc.SetColor(color.Black)
	l.y = top + h + 4
}

func (l *layout) cover(b report.Block) {
	l.y = PageHeight / 3
	for i, it := range b.Items {
		face := l.faces.body
		switch i {
		case 0:
			face = l.faces.title
		case 1:
			face = l.faces.heading
		}
		l.dc.SetFontFace(face)
		_, h := l.dc.MeasureString(it.Text)
		l.y += h * 1.8
		l.dc.DrawStringAnchored(it.Text, PageWidth/2, l.y, 0.5, 0)
	}
	l.newPage()
}

// Pages lays blocks out on A4 pages. The cover block gets a page of its own.
func Pages(blocks []report.Block) ([]image.Image, error) {
	f, err := loadFaces()
	if err != nil {
		return nil, err
	}
	l := &layout{faces: f}
	l.newPage()
	for _, b := range blocks {
		if b.Section == report.SectionCover {
			l.cover(b)
			continue
		}
		l.ensure(60)
		l.line(f.heading, b.Title, 0)
		l.y += 4
		for _, it := range b.Items {
			l.line(f.body, it.Text, 0)
			if it.Detail != "" {
				l.line(f.detail, it.Detail, 12)
			}
			l.sparkline(it.Series)
		}
		l.y += 12
	}
	if l.y > margin || len(l.pages) == 0 {
		l.pages = append(l.pages, l.dc.Image())
	}
	return l.pages, nil
}

// EncodePNG encodes one page.
func EncodePNG(page image.Image) ([]byte, error) {
	dc := gg.NewContextForImage(page)
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePages renders blocks and writes <dir>/<Filename>-<n>.png for each page.
// It returns the written paths.
func WritePages(dir string, plan *domain.SuccessPlan, blocks []report.Block) ([]string, error) {
	pages, err := Pages(blocks)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	base := report.Filename(plan)
	paths := make([]string, 0, len(pages))
	for i, p := range pages {
		path := filepath.Join(dir, fmt.Sprintf("%s-%d.png", base, i+1))
		if err := gg.SavePNG(path, p); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
