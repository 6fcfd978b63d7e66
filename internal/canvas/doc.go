// Package canvas is the raster surface a meme is composed on. It applies a
// fit.Placement to draw the loaded image over a black background and
// renders the top and bottom captions.
package canvas
