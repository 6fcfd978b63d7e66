package audio

import (
	"encoding/binary"
	"time"
)

// Duration returns how long mono s16le pcm plays at rate.
func Duration(pcm []byte, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	samples := len(pcm) / 2
	return time.Duration(samples) * time.Second / time.Duration(rate)
}

// Resample converts mono s16le pcm from one sample rate to another with
// linear interpolation. pcm is returned unchanged when the rates match or
// either is not positive. A trailing odd byte is dropped.
func Resample(pcm []byte, from, to int) []byte {
	if from == to || from <= 0 || to <= 0 {
		return pcm
	}

	in := len(pcm) / 2
	if in == 0 {
		return []byte{}
	}

	out := int(int64(in) * int64(to) / int64(from))
	if out == 0 {
		out = 1
	}
	dst := make([]byte, out*2)

	sample := func(i int) float64 {
		if i >= in {
			i = in - 1
		}
		return float64(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	step := float64(from) / float64(to)
	for i := 0; i < out; i++ {
		pos := float64(i) * step
		j := int(pos)
		frac := pos - float64(j)
		v := sample(j)*(1-frac) + sample(j+1)*frac
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(int16(clamp16(v))))
	}
	return dst
}

func clamp16(v float64) float64 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return v
	}
}
