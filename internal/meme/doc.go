// Package meme drives a meme composition session: an image is loaded and
// fitted into the frame, captions are generated over it, the result can be
// read aloud, and clearing starts over. Which of those commands is allowed
// depends on the session State.
package meme
