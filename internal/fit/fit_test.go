package fit

import (
	"errors"
	"image"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func TestFit(t *testing.T) {
	type args struct {
		frameWidth   float64
		frameHeight  float64
		sourceWidth  float64
		sourceHeight float64
	}
	tests := []struct {
		name string
		args args
		want Placement
	}{
		{name: "landscape 800x400->400x400", args: args{400, 400, 800, 400}, want: Placement{RenderWidth: 400, RenderHeight: 200, OffsetX: 0, OffsetY: 100}},
		{name: "portrait 200x800->400x400", args: args{400, 400, 200, 800}, want: Placement{RenderWidth: 100, RenderHeight: 400, OffsetX: 150, OffsetY: 0}},
		{name: "square 300x300->400x400", args: args{400, 400, 300, 300}, want: Placement{RenderWidth: 400, RenderHeight: 400, OffsetX: 0, OffsetY: 0}},
		// Square sources always take the width branch, even in a wide frame.
		{name: "square 300x300->600x400", args: args{600, 400, 300, 300}, want: Placement{RenderWidth: 600, RenderHeight: 600, OffsetX: 0, OffsetY: -100}},
		{name: "square 300x300->400x600", args: args{400, 600, 300, 300}, want: Placement{RenderWidth: 400, RenderHeight: 400, OffsetX: 0, OffsetY: 100}},
		// Upscale
		{name: "landscape 40x30->400x400", args: args{400, 400, 40, 30}, want: Placement{RenderWidth: 400, RenderHeight: 300, OffsetX: 0, OffsetY: 50}},
		{name: "portrait 30x40->400x400", args: args{400, 400, 30, 40}, want: Placement{RenderWidth: 300, RenderHeight: 400, OffsetX: 50, OffsetY: 0}},
		// Downscale
		{name: "landscape 4000x3000->400x400", args: args{400, 400, 4000, 3000}, want: Placement{RenderWidth: 400, RenderHeight: 300, OffsetX: 0, OffsetY: 50}},
		{name: "portrait 1080x1920->400x400", args: args{400, 400, 1080, 1920}, want: Placement{RenderWidth: 225, RenderHeight: 400, OffsetX: 87.5, OffsetY: 0}},
		{name: "panorama 1000x10->400x400", args: args{400, 400, 1000, 10}, want: Placement{RenderWidth: 400, RenderHeight: 4, OffsetX: 0, OffsetY: 198}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := assert.New(t)
			got := Fit(tt.args.frameWidth, tt.args.frameHeight, tt.args.sourceWidth, tt.args.sourceHeight)
			a.InDelta(tt.want.RenderWidth, got.RenderWidth, tolerance)
			a.InDelta(tt.want.RenderHeight, got.RenderHeight, tolerance)
			a.InDelta(tt.want.OffsetX, got.OffsetX, tolerance)
			a.InDelta(tt.want.OffsetY, got.OffsetY, tolerance)
		})
	}
}

// randomDimension returns a value in [1, 5000).
func randomDimension(r *rand.Rand) float64 {
	return 1 + r.Float64()*4999
}

func TestFit_PortraitBranch(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		fw, fh := randomDimension(r), randomDimension(r)
		sh := randomDimension(r)
		sw := sh * (0.01 + r.Float64()*0.98) // ratio strictly below 1

		p := Fit(fw, fh, sw, sh)
		ratio := sw / sh

		require.Equal(t, fh, p.RenderHeight)
		require.Equal(t, fh*ratio, p.RenderWidth)
		require.Equal(t, (fw-p.RenderWidth)/2, p.OffsetX)
		require.Equal(t, 0.0, p.OffsetY)
	}
}

func TestFit_LandscapeBranch(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		fw, fh := randomDimension(r), randomDimension(r)
		sh := randomDimension(r)
		sw := sh * (1 + r.Float64()*20) // ratio at least 1

		p := Fit(fw, fh, sw, sh)
		ratio := sw / sh

		require.Equal(t, fw, p.RenderWidth)
		require.Equal(t, fw/ratio, p.RenderHeight)
		require.Equal(t, (fh-p.RenderHeight)/2, p.OffsetY)
		require.Equal(t, 0.0, p.OffsetX)
	}
}

func TestFit_PreservesAspectRatio(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		fw, fh := randomDimension(r), randomDimension(r)
		sw, sh := randomDimension(r), randomDimension(r)

		p := Fit(fw, fh, sw, sh)
		assert.InEpsilon(t, sw/sh, p.RenderWidth/p.RenderHeight, tolerance, "frame %vx%v source %vx%v", fw, fh, sw, sh)
	}
}

func TestFit_TouchesConstrainingAxis(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	for i := 0; i < 1000; i++ {
		side := randomDimension(r)
		sw, sh := randomDimension(r), randomDimension(r)

		p := Fit(side, side, sw, sh)
		touchesWidth := p.RenderWidth == side
		touchesHeight := p.RenderHeight == side
		if sw == sh {
			assert.True(t, touchesWidth && touchesHeight)
			continue
		}
		assert.NotEqual(t, touchesWidth, touchesHeight, "exactly one axis must touch for %vx%v", sw, sh)
	}

	p := Fit(400, 400, 250, 250)
	assert.Equal(t, 400.0, p.RenderWidth)
	assert.Equal(t, 400.0, p.RenderHeight)
}

func TestFit_ContainedInSquareFrame(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	for i := 0; i < 1000; i++ {
		side := randomDimension(r)
		sw, sh := randomDimension(r), randomDimension(r)

		p := Fit(side, side, sw, sh)
		assertContained(t, Frame{side, side}, p)
	}
}

func TestFit_ContainedWhenBranchAxisConstrains(t *testing.T) {
	// Wide sources in tall frames and tall sources in wide frames.
	cases := []struct {
		frame  Frame
		source Source
	}{
		{Frame{400, 600}, Source{800, 400}},
		{Frame{300, 900}, Source{1920, 1080}},
		{Frame{600, 400}, Source{200, 800}},
		{Frame{1280, 720}, Source{1080, 1920}},
	}
	for _, c := range cases {
		p := Fit(c.frame.Width, c.frame.Height, c.source.Width, c.source.Height)
		assertContained(t, c.frame, p)
	}
}

func assertContained(t *testing.T, frame Frame, p Placement) {
	t.Helper()
	assert.GreaterOrEqual(t, p.OffsetX, 0.0)
	assert.GreaterOrEqual(t, p.OffsetY, 0.0)
	assert.LessOrEqual(t, p.OffsetX+p.RenderWidth, frame.Width*(1+tolerance))
	assert.LessOrEqual(t, p.OffsetY+p.RenderHeight, frame.Height*(1+tolerance))
}

func TestFit_Idempotent(t *testing.T) {
	first := Fit(640, 480, 1234, 987)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Fit(640, 480, 1234, 987))
	}
}

func TestFit_Concurrent(t *testing.T) {
	want := Fit(400, 400, 200, 800)

	var wg sync.WaitGroup
	results := make([]Placement, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Fit(400, 400, 200, 800)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestFit_DoesNotValidate(t *testing.T) {
	// A zero-height source has an infinite ratio and collapses vertically.
	p := Fit(400, 400, 100, 0)
	assert.Equal(t, 400.0, p.RenderWidth)
	assert.Equal(t, 0.0, p.RenderHeight)

	p = Fit(400, 400, 0, 0)
	assert.True(t, math.IsNaN(p.RenderHeight))
}

func TestCompute(t *testing.T) {
	got, err := Compute(Frame{400, 400}, Source{800, 400})
	require.NoError(t, err)
	assert.Equal(t, Placement{RenderWidth: 400, RenderHeight: 200, OffsetX: 0, OffsetY: 100}, got)
}

func TestCompute_InvalidDimension(t *testing.T) {
	tests := []struct {
		name   string
		frame  Frame
		source Source
		field  string
	}{
		{name: "zero frame width", frame: Frame{0, 400}, source: Source{10, 10}, field: "frame width"},
		{name: "negative frame height", frame: Frame{400, -1}, source: Source{10, 10}, field: "frame height"},
		{name: "NaN source width", frame: Frame{400, 400}, source: Source{math.NaN(), 10}, field: "source width"},
		{name: "infinite source height", frame: Frame{400, 400}, source: Source{10, math.Inf(1)}, field: "source height"},
		{name: "zero source height", frame: Frame{400, 400}, source: Source{10, 0}, field: "source height"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.frame, tt.source)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDimension))

			var dimErr *DimensionError
			require.True(t, errors.As(err, &dimErr))
			assert.Equal(t, tt.field, dimErr.Field)
		})
	}
}

func TestContain(t *testing.T) {
	a := assert.New(t)

	// Where Fit overflows a wide frame, Contain pillarboxes.
	p := Contain(600, 400, 300, 300)
	a.InDelta(400, p.RenderWidth, tolerance)
	a.InDelta(400, p.RenderHeight, tolerance)
	a.InDelta(100, p.OffsetX, tolerance)
	a.InDelta(0, p.OffsetY, tolerance)

	r := rand.New(rand.NewSource(6))
	for i := 0; i < 1000; i++ {
		frame := Frame{randomDimension(r), randomDimension(r)}
		sw, sh := randomDimension(r), randomDimension(r)
		p := Contain(frame.Width, frame.Height, sw, sh)
		assertContained(t, frame, p)
		a.InEpsilon(sw/sh, p.RenderWidth/p.RenderHeight, tolerance)
	}

	// Square frames agree with Fit.
	for _, s := range []Source{{800, 400}, {200, 800}, {300, 300}} {
		fp := Fit(400, 400, s.Width, s.Height)
		cp := Contain(400, 400, s.Width, s.Height)
		a.InDelta(fp.RenderWidth, cp.RenderWidth, tolerance)
		a.InDelta(fp.RenderHeight, cp.RenderHeight, tolerance)
		a.InDelta(fp.OffsetX, cp.OffsetX, tolerance)
		a.InDelta(fp.OffsetY, cp.OffsetY, tolerance)
	}
}

func TestMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeClassic, m)

	m, err = ParseMode(" Contain ")
	require.NoError(t, err)
	assert.Equal(t, ModeContain, m)

	_, err = ParseMode("stretch")
	assert.Error(t, err)

	p, err := ModeContain.Apply(Frame{600, 400}, Source{300, 300})
	require.NoError(t, err)
	assert.Equal(t, 400.0, p.RenderWidth)

	p, err = ModeClassic.Apply(Frame{600, 400}, Source{300, 300})
	require.NoError(t, err)
	assert.Equal(t, 600.0, p.RenderHeight)

	_, err = ModeContain.Apply(Frame{600, 400}, Source{0, 300})
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestPlacement_Rect(t *testing.T) {
	p := Fit(400, 400, 1080, 1920)
	assert.Equal(t, image.Rect(88, 0, 313, 400), p.Rect())

	p = Fit(400, 400, 800, 400)
	assert.Equal(t, image.Rect(0, 100, 400, 300), p.Rect())
}

func TestSource_Orientation(t *testing.T) {
	tests := []struct {
		name   string
		source Source
		want   Orientation
	}{
		{"portrait", Source{200, 800}, Portrait},
		{"landscape", Source{800, 200}, Landscape},
		{"square", Source{300, 300}, Landscape},
		{"portrait filling both axes", Source{25, 100}, Portrait},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.source.Orientation())
		})
	}
	assert.Equal(t, "portrait", Portrait.String())
	assert.Equal(t, "landscape", Landscape.String())
}

func TestSource_OrientationWhenPlacementFillsFrame(t *testing.T) {
	// A portrait source whose scaled width matches the frame leaves no
	// offset on either axis.
	p := Fit(100, 400, 25, 100)
	assert.Equal(t, Placement{RenderWidth: 100, RenderHeight: 400}, p)
	assert.Equal(t, Portrait, Source{25, 100}.Orientation())

	p = Contain(100, 400, 25, 100)
	assert.Equal(t, Placement{RenderWidth: 100, RenderHeight: 400}, p)
	assert.Equal(t, Portrait, SourceOf(image.Rect(0, 0, 25, 100)).Orientation())
}

func TestSourceOf(t *testing.T) {
	s := SourceOf(image.Rect(10, 10, 110, 60))
	assert.Equal(t, Source{Width: 100, Height: 50}, s)
	assert.Equal(t, 2.0, s.AspectRatio())
}
