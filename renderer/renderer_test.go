package renderer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/richinsley/goshadereffects/options"
)

func TestScrollOffset(t *testing.T) {
	var s ScrollOffset
	assert.Equal(t, 0.0, s.Add(1), "cannot scroll above the top")
	assert.Equal(t, 120.0, s.Add(-3))
	assert.Equal(t, 80.0, s.Add(1))
	assert.Equal(t, 0.0, s.Add(10))

	s = ScrollOffset{Step: 100}
	assert.Equal(t, 250.0, s.Add(-2.5))
	assert.Equal(t, 250.0, s.Value())
}

func TestVSyncOwner(t *testing.T) {
	assert.Equal(t, 0, vsyncOwner([]bool{false, false, false}, 0))
	assert.Equal(t, 1, vsyncOwner([]bool{true, false, false}, 0))
	assert.Equal(t, 2, vsyncOwner([]bool{false, false, false}, 2))
	assert.Equal(t, 0, vsyncOwner([]bool{false, true, false}, 1))
	assert.Equal(t, -1, vsyncOwner([]bool{true, true}, 0))
	assert.Equal(t, -1, vsyncOwner(nil, 0))
}

func TestSwapInterval(t *testing.T) {
	assert.Equal(t, 1, swapInterval(true))
	assert.Equal(t, 0, swapInterval(false))
}

func TestFixedClock(t *testing.T) {
	c := &FixedClock{FPS: 30}
	assert.Zero(t, c.Now())
	c.Seek(45)
	assert.InDelta(t, 1.5, c.Now(), 1e-12)
}

func TestExportHostWithoutTarget(t *testing.T) {
	h := &exportHost{width: 640, height: 360}
	assert.ErrorIs(t, h.ready(), errNoTarget)
	assert.False(t, h.InView())

	h.target = &Target{width: 640, height: 360}
	assert.NoError(t, h.ready())
	assert.True(t, h.InView())
}

func TestEncoderArgs(t *testing.T) {
	in, out := encoderArgs(&options.ExportOptions{Width: 640, Height: 360, FPS: 24})
	assert.Equal(t, "rawvideo", in["format"])
	assert.Equal(t, "rgba", in["pix_fmt"])
	assert.Equal(t, "640x360", in["s"])
	assert.Equal(t, "24", in["r"])
	assert.Equal(t, "vflip", out["vf"])
	assert.NotEmpty(t, out["c:v"])
}

func frameOf(i int) []byte { return bytes.Repeat([]byte{byte(i)}, 16) }

func TestStreamFramesDeliversEveryFrameInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	var got bytes.Buffer
	err := streamFrames(context.Background(), 10,
		func(i int) ([]byte, error) { return frameOf(i), nil },
		func(r io.Reader) error {
			_, err := io.Copy(&got, r)
			return err
		})
	require.NoError(t, err)

	var want bytes.Buffer
	for i := 0; i < 10; i++ {
		want.Write(frameOf(i))
	}
	assert.Equal(t, want.Bytes(), got.Bytes())
}

func TestStreamFramesEncoderFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("ffmpeg: exit status 1")
	rendered := 0
	err := streamFrames(context.Background(), 1000,
		func(i int) ([]byte, error) {
			rendered++
			return frameOf(i), nil
		},
		func(r io.Reader) error {
			buf := make([]byte, 16)
			_, _ = io.ReadFull(r, buf)
			return boom
		})
	assert.ErrorIs(t, err, boom)
	assert.Less(t, rendered, 1000)
}

func TestStreamFramesRenderFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	bad := errors.New("no frame")
	err := streamFrames(context.Background(), 10,
		func(i int) ([]byte, error) {
			if i == 4 {
				return nil, bad
			}
			return frameOf(i), nil
		},
		func(r io.Reader) error {
			_, err := io.Copy(io.Discard, r)
			return err
		})
	assert.ErrorIs(t, err, bad)
}

func TestStreamFramesCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	err := streamFrames(ctx, 100,
		func(i int) ([]byte, error) {
			if i == 3 {
				cancel()
			}
			return frameOf(i), nil
		},
		func(r io.Reader) error {
			_, err := io.Copy(io.Discard, r)
			return err
		})
	assert.ErrorIs(t, err, context.Canceled)
}
