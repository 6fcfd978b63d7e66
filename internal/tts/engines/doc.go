// Package engines implements tts.Engine with piper (offline), gTTS
// (online, through gtts-cli and ffmpeg) and a silent mock.
package engines
