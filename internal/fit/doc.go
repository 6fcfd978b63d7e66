// Package fit computes where an image of arbitrary size lands inside a
// fixed frame so that it is scaled without distortion and centered on the
// axis it does not fill.
//
// The calculation is pure: it reads only its arguments and returns a
// Placement value. It is safe to call from any number of goroutines.
package fit
