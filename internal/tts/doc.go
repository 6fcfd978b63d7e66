// Package tts reads meme captions aloud. It defines the contracts between
// speech engines and the audio player and provides the Speaker that ties
// them together with the audio cache.
package tts
