package audio

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pcmOf(samples ...int16) []byte {
	b := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(s))
	}
	return b
}

func samplesOf(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

func TestDuration(t *testing.T) {
	assert.Equal(t, time.Second, Duration(make([]byte, 44100*2), 44100))
	assert.Equal(t, 500*time.Millisecond, Duration(make([]byte, 22050), 22050))
	assert.Equal(t, time.Duration(0), Duration(make([]byte, 100), 0))
}

func TestResample_SameRateIsIdentity(t *testing.T) {
	in := pcmOf(1, 2, 3)
	assert.Equal(t, in, Resample(in, 44100, 44100))
	assert.Equal(t, in, Resample(in, 0, 44100))
}

func TestResample_Upsample(t *testing.T) {
	out := Resample(pcmOf(0, 100, 200, 300), 22050, 44100)
	require.Len(t, out, 16)
	assert.Equal(t, []int16{0, 50, 100, 150, 200, 250, 300, 300}, samplesOf(out))
}

func TestResample_Downsample(t *testing.T) {
	out := Resample(pcmOf(0, 10, 20, 30, 40, 50), 48000, 24000)
	assert.Equal(t, []int16{0, 20, 40}, samplesOf(out))
}

func TestResample_KeepsDuration(t *testing.T) {
	in := make([]byte, 22050*2)
	out := Resample(in, 22050, 44100)
	assert.Equal(t, Duration(in, 22050), Duration(out, 44100))
}

func TestResample_Extremes(t *testing.T) {
	out := Resample(pcmOf(32767, -32768), 1, 2)
	got := samplesOf(out)
	require.Len(t, got, 4)
	assert.Equal(t, int16(32767), got[0])
	assert.Equal(t, int16(-32768), got[2])
	assert.Equal(t, int16(-32768), got[3])
}

func TestResample_Empty(t *testing.T) {
	assert.Empty(t, Resample([]byte{7}, 22050, 44100))
}
