package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/dgnsrekt/memegen/internal/fit"
)

// Canvas is a fixed-size RGBA surface. It is safe for concurrent use.
type Canvas struct {
	mu   sync.RWMutex
	img  *image.RGBA
	mode fit.Mode
}

// New creates a transparent canvas using the classic fit mode.
func New(width, height int) *Canvas {
	return &Canvas{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		mode: fit.ModeClassic,
	}
}

// SetMode changes how images are placed by Draw.
func (c *Canvas) SetMode(m fit.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
}

// Mode returns the fit mode.
func (c *Canvas) Mode() fit.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Bounds returns the canvas rectangle. The size never changes.
func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Bounds()
}

// Frame returns the canvas size as a fit.Frame.
func (c *Canvas) Frame() fit.Frame {
	b := c.img.Bounds()
	return fit.Frame{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Draw fills the canvas black and draws img at its fitted placement. Parts
// of the image that fall outside the canvas are clipped.
func (c *Canvas) Draw(img image.Image) (fit.Placement, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.mode.Apply(c.Frame(), fit.SourceOf(img.Bounds()))
	if err != nil {
		return fit.Placement{}, err
	}

	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	r := p.Rect()
	w, h := max(r.Dx(), 1), max(r.Dy(), 1)
	scaled := imaging.Resize(img, w, h, imaging.Lanczos)
	draw.Draw(c.img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Min.Y+h), scaled, image.Point{}, draw.Over)

	log.Debug("image drawn", "source", img.Bounds().Size(), "render", r, "mode", c.mode)
	return p, nil
}

// Clear resets every pixel to transparent.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	draw.Draw(c.img, c.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// Image returns a copy of the current pixels.
func (c *Canvas) Image() *image.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := image.NewRGBA(c.img.Bounds())
	copy(out.Pix, c.img.Pix)
	return out
}

// At returns the color of one pixel.
func (c *Canvas) At(x, y int) color.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.img.RGBAAt(x, y)
}
