// Package audio plays mono 16-bit PCM through oto and provides the small
// PCM helpers the speaker needs to match engine and device sample rates.
package audio
