package surface_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goshadereffects/surface"
	"github.com/richinsley/goshadereffects/surface/surfacetest"
)

func testKernel() surface.Kernel {
	return surface.Kernel{
		Name:           "test",
		VertexSource:   "void main() {}",
		FragmentSource: "void main() {}",
		Params: []surface.Param{
			surface.F(surface.UniformTime, 0),
			surface.V2(surface.UniformResolution, 0, 0),
			surface.F(surface.UniformOpacity, 1),
			surface.RGB("u_color", [3]float32{0, 1, 0.53}),
		},
	}
}

type fixture struct {
	dev   *surfacetest.Device
	host  *surfacetest.Host
	clock *surfacetest.Clock
	queue *surface.FrameQueue
	s     *surface.Surface
}

func newFixture(k surface.Kernel, w, h int, ratio float64) *fixture {
	f := &fixture{
		dev:   surfacetest.NewDevice(),
		clock: &surfacetest.Clock{T: 100},
		queue: &surface.FrameQueue{},
	}
	f.host = surfacetest.NewHost(f.dev, w, h, ratio)
	f.s = surface.New(k, f.host, f.queue, f.clock)
	return f
}

func TestInitStartsRunning(t *testing.T) {
	f := newFixture(testKernel(), 400, 300, 1)
	require.Equal(t, surface.Available, f.s.Init())
	assert.Equal(t, surface.StatusRunning, f.s.Status())
	assert.Equal(t, 1, f.queue.Len())
	assert.Equal(t, [4]int{0, 0, 400, 300}, f.s.Viewport())
	assert.Equal(t, 400, f.host.BufferWidth)
	assert.Equal(t, 300, f.host.BufferHeight)
	assert.Len(t, f.dev.Quads, 1)
	assert.Len(t, f.dev.Programs, 1)
	assert.True(t, f.s.Uniforms().Has("u_color"))
	assert.NoError(t, f.s.Err())
}

func TestResizeMatchesScaledBuffer(t *testing.T) {
	cases := []struct {
		w, h   int
		ratio  float64
		bw, bh int
	}{
		{400, 300, 1, 400, 300},
		{800, 600, 1.5, 1200, 900},
		{1920, 1080, 3, 3840, 2160},
		{1, 1, 2, 2, 2},
		{333, 77, 0, 333, 77},
		{10, 10, 1.25, 12, 12},
	}
	for _, tc := range cases {
		f := newFixture(testKernel(), 64, 64, 1)
		require.Equal(t, surface.Available, f.s.Init())
		f.host.Width, f.host.Height, f.host.Ratio = tc.w, tc.h, tc.ratio
		f.s.Resize()
		assert.Equal(t, [4]int{0, 0, tc.bw, tc.bh}, f.s.Viewport(), "%dx%d@%v", tc.w, tc.h, tc.ratio)
		assert.Equal(t, [4]int{0, 0, tc.bw, tc.bh}, f.dev.LastViewport())
		assert.Equal(t, tc.bw, f.host.BufferWidth)
		assert.Equal(t, tc.bh, f.host.BufferHeight)

		// idempotent
		f.s.Resize()
		assert.Equal(t, [4]int{0, 0, tc.bw, tc.bh}, f.s.Viewport())
	}
}

func TestResizeHonoursKernelCap(t *testing.T) {
	k := testKernel()
	k.MaxPixelRatio = 1
	f := newFixture(k, 100, 50, 2)
	require.Equal(t, surface.Available, f.s.Init())
	assert.Equal(t, [4]int{0, 0, 100, 50}, f.s.Viewport())
}

func TestBufferSize(t *testing.T) {
	w, h := surface.BufferSize(0, 0, 2, 2)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
	w, h = surface.BufferSize(100, 200, 4, 0)
	assert.Equal(t, 400, w)
	assert.Equal(t, 800, h)
}

func TestBuildFailureNeverDraws(t *testing.T) {
	for _, stage := range []surface.Stage{surface.StageVertex, surface.StageFragment, surface.StageLink} {
		f := newFixture(testKernel(), 400, 300, 1)
		f.dev.FailStage = stage

		require.Equal(t, surface.BuildFailed, f.s.Init())
		assert.Equal(t, surface.StatusInert, f.s.Status())

		var be *surface.BuildError
		require.True(t, errors.As(f.s.Err(), &be))
		assert.Equal(t, stage, be.Stage)

		for i := 0; i < 10; i++ {
			f.queue.Flush()
			f.clock.Advance(1.0 / 60)
		}
		f.s.Resize()
		f.s.Pause()
		f.s.Resume()
		f.queue.Flush()

		// a second Init does not retry
		assert.Equal(t, surface.BuildFailed, f.s.Init())
		assert.Equal(t, 1, f.dev.Builds)
		assert.Zero(t, f.dev.Draws, "stage %s", stage)
		assert.Zero(t, f.queue.Len())
	}
}

func TestInvalidKernelIsBuildFailure(t *testing.T) {
	k := testKernel()
	k.Params = append(k.Params, surface.F("u_color", 1))
	f := newFixture(k, 400, 300, 1)
	require.Equal(t, surface.BuildFailed, f.s.Init())

	var be *surface.BuildError
	require.ErrorAs(t, f.s.Err(), &be)
	assert.Equal(t, surface.StageValidate, be.Stage)
	assert.Zero(t, f.dev.Builds)
}

func TestUnavailableContext(t *testing.T) {
	f := newFixture(testKernel(), 400, 300, 1)
	f.host.Unsupported = true

	require.Equal(t, surface.NotAvailable, f.s.Init())
	assert.Equal(t, surface.StatusUnavailable, f.s.Status())
	assert.ErrorIs(t, f.s.Err(), surface.ErrUnavailable)

	f.s.Resize()
	f.queue.Flush()
	assert.Zero(t, f.dev.Draws)
	assert.Empty(t, f.dev.Viewports)
}

func TestFrameWritesUniformsAndReschedules(t *testing.T) {
	k := testKernel()
	k.Speed = 0.5
	k.Update = func(u *surface.UniformTable, st surface.State) {
		u.SetRGB("u_color", [3]float32{1, 0, 0})
	}
	f := newFixture(k, 400, 300, 1)
	require.Equal(t, surface.Available, f.s.Init())

	f.clock.Advance(2)
	assert.Equal(t, 1, f.queue.Flush())
	assert.Equal(t, 1, f.dev.Draws)
	assert.Equal(t, 1, f.queue.Len())

	tv, ok := f.dev.Written(surface.UniformTime)
	require.True(t, ok)
	assert.InDelta(t, 1.0, tv[0], 1e-6)

	rv, _ := f.dev.Written(surface.UniformResolution)
	assert.Equal(t, surface.Value{400, 300, 0}, rv)

	cv, _ := f.dev.Written("u_color")
	assert.Equal(t, surface.Value{1, 0, 0}, cv)
	assert.Equal(t, uint64(1), f.s.State().Frames)
}

func TestOutOfViewSkipsDrawButKeepsScheduling(t *testing.T) {
	f := newFixture(testKernel(), 400, 300, 1)
	require.Equal(t, surface.Available, f.s.Init())
	f.host.Hidden = true

	for i := 0; i < 5; i++ {
		f.queue.Flush()
	}
	assert.Zero(t, f.dev.Draws)
	assert.Equal(t, 1, f.queue.Len())

	f.host.Hidden = false
	f.queue.Flush()
	assert.Equal(t, 1, f.dev.Draws)
}

func TestPauseResumeResetsTimeOrigin(t *testing.T) {
	f := newFixture(testKernel(), 400, 300, 1)
	require.Equal(t, surface.Available, f.s.Init())

	f.clock.Advance(5)
	f.queue.Flush()
	assert.InDelta(t, 5, f.s.State().Elapsed, 1e-9)

	f.s.Pause()
	assert.Equal(t, surface.StatusPaused, f.s.Status())
	draws := f.dev.Draws
	f.clock.Advance(3600)
	assert.Zero(t, f.queue.Flush())
	assert.Equal(t, draws, f.dev.Draws)

	f.s.Resume()
	assert.Equal(t, surface.StatusRunning, f.s.Status())
	f.queue.Flush()
	tv, _ := f.dev.Written(surface.UniformTime)
	assert.InDelta(t, 0, tv[0], 1e-6)

	f.clock.Advance(0.5)
	f.queue.Flush()
	tv, _ = f.dev.Written(surface.UniformTime)
	assert.InDelta(t, 0.5, tv[0], 1e-6)
}

func TestPauseTwiceAndResumeTwice(t *testing.T) {
	f := newFixture(testKernel(), 400, 300, 1)
	require.Equal(t, surface.Available, f.s.Init())
	f.s.SetVisible(false)
	f.s.SetVisible(false)
	f.s.SetVisible(true)
	f.s.SetVisible(true)
	// only one frame is ever pending
	assert.Equal(t, 1, f.queue.Flush())
}

func TestOpacityClamped(t *testing.T) {
	f := newFixture(testKernel(), 400, 300, 1)
	require.Equal(t, surface.Available, f.s.Init())
	f.s.SetOpacity(1.7)
	f.queue.Flush()
	ov, _ := f.dev.Written(surface.UniformOpacity)
	assert.Equal(t, float32(1), ov[0])

	f.s.SetOpacity(-3)
	f.queue.Flush()
	ov, _ = f.dev.Written(surface.UniformOpacity)
	assert.Equal(t, float32(0), ov[0])
}

func TestDestroyReleasesEverything(t *testing.T) {
	f := newFixture(testKernel(), 400, 300, 1)
	require.Equal(t, surface.Available, f.s.Init())
	f.s.Destroy()

	assert.Equal(t, surface.StatusDestroyed, f.s.Status())
	assert.Empty(t, f.dev.Programs)
	assert.Empty(t, f.dev.Quads)
	assert.True(t, f.host.Released)
	assert.Zero(t, f.queue.Flush())

	f.s.Resume()
	assert.Zero(t, f.queue.Len())
}

func TestUnusedUniformIsNotFlushed(t *testing.T) {
	f := newFixture(testKernel(), 400, 300, 1)
	f.dev.Unused = []string{"u_color"}
	require.Equal(t, surface.Available, f.s.Init())
	f.queue.Flush()

	loc, ok := f.s.Uniforms().Location("u_color")
	require.True(t, ok)
	assert.Equal(t, surface.Location(-1), loc)
	_, written := f.dev.Uniforms[-1]
	assert.False(t, written)
}

func TestSetSpeedKeepsTimeContinuous(t *testing.T) {
	f := newFixture(testKernel(), 400, 300, 1)
	require.Equal(t, surface.Available, f.s.Init())

	f.clock.Advance(4)
	f.s.SetSpeed(0.5)
	assert.Equal(t, 0.5, f.s.Speed())
	f.queue.Flush()
	assert.InDelta(t, 4, f.s.State().Elapsed, 1e-9)

	f.clock.Advance(2)
	f.queue.Flush()
	assert.InDelta(t, 5, f.s.State().Elapsed, 1e-9)

	f.s.SetSpeed(-1)
	assert.Equal(t, 0.5, f.s.Speed())
}

func TestFrameQueueCancelAndOrdering(t *testing.T) {
	var q surface.FrameQueue
	var got []int
	q.Schedule(func() { got = append(got, 1) })
	h := q.Schedule(func() { got = append(got, 2) })
	q.Schedule(func() {
		got = append(got, 3)
		q.Schedule(func() { got = append(got, 4) })
	})
	h.Cancel()

	assert.Equal(t, 2, q.Flush())
	assert.Equal(t, []int{1, 3}, got)
	assert.Equal(t, 1, q.Flush())
	assert.Equal(t, []int{1, 3, 4}, got)
	assert.Zero(t, q.Flush())
}
