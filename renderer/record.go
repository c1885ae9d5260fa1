package renderer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/richinsley/goshadereffects/effects"
	"github.com/richinsley/goshadereffects/glfwcontext"
	"github.com/richinsley/goshadereffects/graphics"
	"github.com/richinsley/goshadereffects/options"
	"github.com/richinsley/goshadereffects/surface"
)

const numBuffers = 3

var (
	errEncoderExited = errors.New("encoder exited before all frames were written")
	errNoTarget      = errors.New("export buffer was not allocated")
)

// FixedClock advances one frame interval per step, independent of wall time.
type FixedClock struct {
	FPS   int
	frame int
}

func (c *FixedClock) Now() float64 { return float64(c.frame) / float64(c.FPS) }

// Seek moves the clock to the start of frame i.
func (c *FixedClock) Seek(i int) { c.frame = i }

// exportHost is a fixed-size offscreen drawing area on a hidden window.
type exportHost struct {
	ctx           *glfwcontext.Context
	dev           *glDevice
	target        *Target
	width, height int
	log           *zap.Logger
}

var _ surface.Host = (*exportHost)(nil)

func (h *exportHost) Acquire() (surface.Device, bool) {
	h.ctx.MakeCurrent()
	if err := initGL(); err != nil {
		h.log.Warn("gl.Init failed", zap.Error(err))
		return nil, false
	}
	return h.dev, true
}

func (h *exportHost) LogicalSize() (int, int) { return h.width, h.height }

func (h *exportHost) PixelRatio() float64 { return 1 }

func (h *exportHost) SetBufferSize(width, height int) {
	if h.target != nil {
		h.target.Resize(width, height)
		return
	}
	t, err := NewTarget(width, height)
	if err != nil {
		h.log.Error("failed to create export buffer", zap.Error(err))
		return
	}
	h.target = t
}

func (h *exportHost) InView() bool { return h.target != nil }

// ready reports whether the surface has somewhere to draw and be read from.
func (h *exportHost) ready() error {
	if h.target == nil {
		return errNoTarget
	}
	return nil
}

func (h *exportHost) Release() {
	if h.target != nil {
		h.target.Destroy()
		h.target = nil
	}
}

// Recorder renders one effect for a fixed duration and encodes it with
// ffmpeg.
type Recorder struct {
	opts *options.ExportOptions
	cfg  effects.Config
	log  *zap.Logger
}

// NewRecorder validates opts.
func NewRecorder(opts *options.ExportOptions, cfg effects.Config, log *zap.Logger) (*Recorder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{opts: opts, cfg: cfg, log: log}, nil
}

// Run renders every frame on the calling thread, which must own GLFW.
func (rec *Recorder) Run(ctx context.Context) error {
	o := rec.opts
	e, err := effects.New(o.Effect, rec.cfg)
	if err != nil {
		return err
	}

	gctx, err := glfwcontext.New(glfwcontext.Options{Width: o.Width, Height: o.Height, Visible: false}, graphics.Events{})
	if err != nil {
		return fmt.Errorf("failed to initialize glfw context: %w", err)
	}
	defer gctx.Shutdown()

	host := &exportHost{
		ctx:    gctx,
		dev:    newGLDevice(ctx, rec.log),
		width:  o.Width,
		height: o.Height,
		log:    rec.log,
	}
	clock := &FixedClock{FPS: o.FPS}
	var queue surface.FrameQueue
	surf := surface.New(e.Kernel(), host, &queue, clock, surface.WithLogger(rec.log))
	e.Bind(surf)
	if l, ok := e.(effects.ScrollListener); ok {
		l.OnScroll(o.Scroll)
	}
	if result := surf.Init(); result != surface.Available {
		return fmt.Errorf("%s: %s: %w", o.Effect, result, surf.Err())
	}
	defer surf.Destroy()
	if err := host.ready(); err != nil {
		return fmt.Errorf("%s: %w", o.Effect, err)
	}

	total := o.Frames()
	rec.log.Info("recording",
		zap.String("effect", o.Effect),
		zap.String("output", o.OutputFile),
		zap.Int("frames", total))

	var buf []byte
	render := func(i int) ([]byte, error) {
		clock.Seek(i)
		host.target.Bind()
		if queue.Flush() == 0 {
			host.target.Unbind()
			return nil, fmt.Errorf("frame %d: no frame was scheduled", i)
		}
		host.target.Unbind()
		buf = host.target.ReadPixels(buf)
		frame := make([]byte, len(buf))
		copy(frame, buf)
		return frame, nil
	}

	in, out := encoderArgs(o)
	encode := func(r io.Reader) error {
		cmd := ffmpeg.Input("pipe:", in).
			Output(o.OutputFile, out).
			OverWriteOutput().WithInput(r).ErrorToStdOut()
		if o.FFMPEGPath != "" {
			cmd = cmd.SetFfmpegPath(o.FFMPEGPath)
		}
		return cmd.Run()
	}

	if err := streamFrames(ctx, total, render, encode); err != nil {
		return err
	}
	rec.log.Info("recording finished", zap.String("output", o.OutputFile))
	return nil
}

// streamFrames calls render for frames 0..n-1 on the calling goroutine and
// pipes their bytes to encode, which runs on its own goroutine.
func streamFrames(ctx context.Context, n int, render func(i int) ([]byte, error), encode func(r io.Reader) error) error {
	pr, pw := io.Pipe()
	frames := make(chan []byte, numBuffers)
	g, gctx := errgroup.WithContext(ctx)

	var encodeErr error
	g.Go(func() error {
		encodeErr = encode(pr)
		// unblocks the writer if the encoder stops reading early
		pr.CloseWithError(errEncoderExited)
		return encodeErr
	})

	g.Go(func() error {
		for frame := range frames {
			if _, err := pw.Write(frame); err != nil {
				return fmt.Errorf("failed to write frame: %w", err)
			}
		}
		return pw.Close()
	})

	var renderErr error
produce:
	for i := 0; i < n; i++ {
		frame, err := render(i)
		if err != nil {
			renderErr = err
			break
		}
		select {
		case frames <- frame:
		case <-gctx.Done():
			break produce
		}
	}
	close(frames)
	if renderErr != nil {
		pw.CloseWithError(renderErr)
	}

	err := g.Wait()
	switch {
	case renderErr != nil:
		return renderErr
	case encodeErr != nil:
		return encodeErr
	case err != nil:
		return err
	}
	return ctx.Err()
}

// encoderArgs describes raw bottom-up RGBA frames on stdin and the output
// encoding.
func encoderArgs(o *options.ExportOptions) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"format":  "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", o.Width, o.Height),
		"r":       fmt.Sprintf("%d", o.FPS),
	}
	outputArgs = ffmpeg.KwArgs{
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
	}
	switch runtime.GOOS {
	case "darwin":
		outputArgs["c:v"] = "h264_videotoolbox"
		outputArgs["b:v"] = "8M"
	default:
		outputArgs["c:v"] = "libx264"
		outputArgs["crf"] = "18"
	}
	return
}
