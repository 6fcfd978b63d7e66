package canvas

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// CaptionStyle controls how captions are rendered.
type CaptionStyle struct {
	// Size is the font size in pixels.
	Size float64
	// TopBaseline is the baseline of the top caption, from the top edge.
	TopBaseline int
	// BottomMargin is the distance of the bottom caption's baseline from
	// the bottom edge.
	BottomMargin int
	// Outline draws an outline of this many pixels around each glyph.
	Outline      int
	Color        color.Color
	OutlineColor color.Color
}

// DefaultCaptionStyle is 35px bold white text with baselines 35px from the
// top and 5px from the bottom, without outline.
func DefaultCaptionStyle() CaptionStyle {
	return CaptionStyle{
		Size:         35,
		TopBaseline:  35,
		BottomMargin: 5,
		Color:        color.White,
		OutlineColor: color.Black,
	}
}

var (
	boldOnce sync.Once
	boldFont *opentype.Font
	boldErr  error

	facesMu sync.Mutex
	faces   = map[float64]font.Face{}
)

// face returns the bold face at size, parsing the font on first use.
func face(size float64) (font.Face, error) {
	boldOnce.Do(func() {
		boldFont, boldErr = opentype.Parse(gobold.TTF)
	})
	if boldErr != nil {
		return nil, fmt.Errorf("parse font: %w", boldErr)
	}

	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(boldFont, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	faces[size] = f
	return f, nil
}

// DrawCaptions draws top and bottom centered horizontally. Empty captions
// are skipped.
func (c *Canvas) DrawCaptions(top, bottom string, style CaptionStyle) error {
	if style.Size <= 0 {
		return fmt.Errorf("caption size must be positive, got %v", style.Size)
	}
	if style.Color == nil {
		style.Color = color.White
	}
	if style.OutlineColor == nil {
		style.OutlineColor = color.Black
	}

	f, err := face(style.Size)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Faces are not safe for concurrent use.
	facesMu.Lock()
	defer facesMu.Unlock()

	b := c.img.Bounds()
	c.drawCentered(f, top, b.Min.Y+style.TopBaseline, style)
	c.drawCentered(f, bottom, b.Max.Y-style.BottomMargin, style)
	return nil
}

func (c *Canvas) drawCentered(f font.Face, text string, baseline int, style CaptionStyle) {
	if text == "" {
		return
	}

	b := c.img.Bounds()
	d := &font.Drawer{Dst: c.img, Face: f}
	advance := d.MeasureString(text)
	origin := fixed.Point26_6{
		X: fixed.I(b.Min.X+b.Dx()/2) - advance/2,
		Y: fixed.I(baseline),
	}

	if o := style.Outline; o > 0 {
		d.Src = image.NewUniform(style.OutlineColor)
		for dy := -o; dy <= o; dy++ {
			for dx := -o; dx <= o; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				d.Dot = origin.Add(fixed.P(dx, dy))
				d.DrawString(text)
			}
		}
	}

	d.Src = image.NewUniform(style.Color)
	d.Dot = origin
	d.DrawString(text)
}
