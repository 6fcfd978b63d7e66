package ui

import (
	"image"
	"strings"

	"github.com/disintegration/imaging"
	te "github.com/muesli/termenv"
)

const halfBlock = "▀"

// renderPreview draws img in cols terminal columns. Each cell shows two
// vertically stacked pixels: the upper one as the foreground of a half
// block and the lower one as its background.
func renderPreview(img image.Image, cols int, profile te.Profile) string {
	if img == nil || cols <= 0 {
		return ""
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	rows := cols * b.Dy() / b.Dx()
	if rows%2 == 1 {
		rows++
	}
	rows = max(rows, 2)

	small := imaging.Resize(img, cols, rows, imaging.Box)

	var sb strings.Builder
	for y := 0; y < rows; y += 2 {
		for x := 0; x < cols; x++ {
			upper := small.NRGBAAt(x, y)
			lower := small.NRGBAAt(x, y+1)
			sb.WriteString(profile.String(halfBlock).
				Foreground(profile.FromColor(upper)).
				Background(profile.FromColor(lower)).
				String())
		}
		if y+2 < rows {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
