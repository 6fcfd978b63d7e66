package fit

import (
	"image"
	"math"
)

// Frame is the fixed target area an image is drawn into.
type Frame struct {
	Width  float64
	Height float64
}

// Source is the natural, unscaled size of the image being placed.
type Source struct {
	Width  float64
	Height float64
}

// Placement is the scaled size of a Source and the top-left coordinate at
// which to draw it inside a Frame.
type Placement struct {
	RenderWidth  float64
	RenderHeight float64
	OffsetX      float64
	OffsetY      float64
}

// Orientation names the branch Fit takes for a source.
type Orientation int

const (
	// Landscape sources (and squares) are scaled to the frame width.
	Landscape Orientation = iota
	// Portrait sources are scaled to the frame height.
	Portrait
)

// String returns "portrait" or "landscape".
func (o Orientation) String() string {
	if o == Portrait {
		return "portrait"
	}
	return "landscape"
}

// Validate reports whether both frame dimensions are usable.
func (f Frame) Validate() error {
	if err := checkDimension("frame width", f.Width); err != nil {
		return err
	}
	return checkDimension("frame height", f.Height)
}

// Validate reports whether both source dimensions are usable.
func (s Source) Validate() error {
	if err := checkDimension("source width", s.Width); err != nil {
		return err
	}
	return checkDimension("source height", s.Height)
}

// Orientation reports the branch Fit takes for s: Portrait when s is
// narrower than it is tall, Landscape otherwise.
func (s Source) Orientation() Orientation {
	if s.AspectRatio() < 1 {
		return Portrait
	}
	return Landscape
}

// AspectRatio returns width divided by height.
func (s Source) AspectRatio() float64 {
	return s.Width / s.Height
}

// SourceOf returns the natural size of an image's bounds.
func SourceOf(r image.Rectangle) Source {
	return Source{Width: float64(r.Dx()), Height: float64(r.Dy())}
}

func checkDimension(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return &DimensionError{Field: field, Value: v}
	}
	return nil
}

// Fit scales a source into a frame keeping its aspect ratio.
//
// A source narrower than it is tall fills the frame height and is centered
// horizontally. Any other source, squares included, fills the frame width
// and is centered vertically. Inputs are not validated; non-positive or
// non-finite values produce NaN or infinite results.
func Fit(frameWidth, frameHeight, sourceWidth, sourceHeight float64) Placement {
	aspectRatio := sourceWidth / sourceHeight

	if aspectRatio < 1 {
		renderWidth := frameHeight * aspectRatio
		return Placement{
			RenderWidth:  renderWidth,
			RenderHeight: frameHeight,
			OffsetX:      (frameWidth - renderWidth) / 2,
			OffsetY:      0,
		}
	}

	renderHeight := frameWidth / aspectRatio
	return Placement{
		RenderWidth:  frameWidth,
		RenderHeight: renderHeight,
		OffsetX:      0,
		OffsetY:      (frameHeight - renderHeight) / 2,
	}
}

// Compute validates its inputs and then applies Fit.
func Compute(frame Frame, source Source) (Placement, error) {
	if err := frame.Validate(); err != nil {
		return Placement{}, err
	}
	if err := source.Validate(); err != nil {
		return Placement{}, err
	}
	return Fit(frame.Width, frame.Height, source.Width, source.Height), nil
}

// Contain scales a source so it always lies inside the frame, choosing the
// constraining axis by comparing the source ratio with the frame ratio.
// For square frames it agrees with Fit.
func Contain(frameWidth, frameHeight, sourceWidth, sourceHeight float64) Placement {
	if sourceWidth/sourceHeight < frameWidth/frameHeight {
		scale := frameHeight / sourceHeight
		renderWidth := sourceWidth * scale
		return Placement{
			RenderWidth:  renderWidth,
			RenderHeight: frameHeight,
			OffsetX:      (frameWidth - renderWidth) / 2,
		}
	}

	scale := frameWidth / sourceWidth
	renderHeight := sourceHeight * scale
	return Placement{
		RenderWidth:  frameWidth,
		RenderHeight: renderHeight,
		OffsetY:      (frameHeight - renderHeight) / 2,
	}
}

// Rect returns the placement as a pixel rectangle, rounding each edge to
// the nearest integer.
func (p Placement) Rect() image.Rectangle {
	x0 := int(math.Round(p.OffsetX))
	y0 := int(math.Round(p.OffsetY))
	x1 := int(math.Round(p.OffsetX + p.RenderWidth))
	y1 := int(math.Round(p.OffsetY + p.RenderHeight))
	return image.Rect(x0, y0, x1, y1)
}
