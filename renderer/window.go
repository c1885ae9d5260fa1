package renderer

import (
	"context"
	"fmt"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/richinsley/goshadereffects/effects"
	"github.com/richinsley/goshadereffects/glfwcontext"
	"github.com/richinsley/goshadereffects/graphics"
	"github.com/richinsley/goshadereffects/surface"
)

// ScrollStep is the virtual page distance of one wheel notch.
const ScrollStep = 40.0

// ScrollOffset turns wheel notches into a page offset that never goes
// above the top of the page.
type ScrollOffset struct {
	Step  float64
	value float64
}

// Add applies a wheel delta; wheel down (negative dy) scrolls the page down.
func (s *ScrollOffset) Add(dy float64) float64 {
	step := s.Step
	if step <= 0 {
		step = ScrollStep
	}
	s.value -= dy * step
	if s.value < 0 {
		s.value = 0
	}
	return s.value
}

// Value is the current offset.
func (s *ScrollOffset) Value() float64 { return s.value }

// Window shows one effect. It is the surface.Host for that effect and owns
// the frame queue the effect schedules on.
type Window struct {
	effect effects.Effect
	ctx    *glfwcontext.Context
	dev    *glDevice
	target *Target
	blit   *blitter
	queue  surface.FrameQueue
	surf   *surface.Surface
	log    *zap.Logger

	scroll        ScrollOffset
	resizePending bool
	userPaused    bool
	closed        bool
}

var _ surface.Host = (*Window)(nil)

// NewWindow opens a window for e and starts its surface. A surface that
// could not start still leaves an open window that shows black. With vsync
// set, EndFrame blocks until the next display refresh.
func NewWindow(ctx context.Context, e effects.Effect, width, height int, vsync bool, clock surface.Clock, log *zap.Logger) (*Window, error) {
	w := &Window{
		effect: e,
		log:    log.With(zap.String("effect", e.Name())),
		scroll: ScrollOffset{Step: ScrollStep},
	}
	gctx, err := glfwcontext.New(glfwcontext.Options{
		Title:        fmt.Sprintf("goshadereffects: %s", e.Name()),
		Width:        width,
		Height:       height,
		Visible:      true,
		SwapInterval: swapInterval(vsync),
	}, graphics.Events{
		Resize:     func(int, int) { w.resizePending = true },
		Visibility: w.onVisibility,
		Scroll:     w.onScroll,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize glfw context: %w", err)
	}
	w.ctx = gctx
	w.ctx.RegisterKeyCallback(glfw.KeySpace, w.togglePause)
	w.dev = newGLDevice(ctx, w.log)

	w.surf = surface.New(e.Kernel(), w, &w.queue, clock, surface.WithLogger(log))
	e.Bind(w.surf)
	result := w.surf.Init()
	w.log.Info("effect started", zap.Stringer("result", result))
	return w, nil
}

// Acquire makes the window's context current and loads GL.
func (w *Window) Acquire() (surface.Device, bool) {
	w.ctx.MakeCurrent()
	if err := initGL(); err != nil {
		w.log.Warn("gl.Init failed", zap.Error(err))
		return nil, false
	}
	b, err := newBlitter()
	if err != nil {
		w.log.Warn("blit unavailable", zap.Error(err))
		return nil, false
	}
	w.blit = b
	return w.dev, true
}

func (w *Window) LogicalSize() (int, int) { return w.ctx.GetWindowSize() }

func (w *Window) PixelRatio() float64 { return w.ctx.PixelRatio() }

func (w *Window) SetBufferSize(width, height int) {
	if w.target != nil {
		w.target.Resize(width, height)
		return
	}
	t, err := NewTarget(width, height)
	if err != nil {
		w.log.Error("failed to create backing buffer", zap.Error(err))
		return
	}
	w.target = t
}

func (w *Window) InView() bool {
	if w.target == nil || w.ctx.Iconified() {
		return false
	}
	ww, wh := w.ctx.GetWindowSize()
	return ww > 0 && wh > 0
}

func (w *Window) Release() {
	if w.target != nil {
		w.target.Destroy()
		w.target = nil
	}
	if w.blit != nil {
		w.blit.destroy()
		w.blit = nil
	}
}

// SetVSync changes whether EndFrame waits for the display refresh.
func (w *Window) SetVSync(on bool) {
	if !w.closed {
		w.ctx.SetSwapInterval(swapInterval(on))
	}
}

func swapInterval(vsync bool) int {
	if vsync {
		return 1
	}
	return 0
}

// Surface is the effect's surface.
func (w *Window) Surface() *surface.Surface { return w.surf }

// Effect is the effect shown in the window.
func (w *Window) Effect() effects.Effect { return w.effect }

func (w *Window) onVisibility(visible bool) {
	if visible && w.userPaused {
		return
	}
	w.surf.SetVisible(visible)
}

func (w *Window) onScroll(dy float64) {
	offset := w.scroll.Add(dy)
	if l, ok := w.effect.(effects.ScrollListener); ok {
		l.OnScroll(offset)
	}
}

func (w *Window) togglePause() {
	switch w.surf.Status() {
	case surface.StatusRunning:
		w.userPaused = true
		w.surf.Pause()
	case surface.StatusPaused:
		w.userPaused = false
		w.surf.Resume()
	}
}

// frame applies a pending resize, runs the queued frame into the backing
// buffer and presents it. It reports false once the window should close.
func (w *Window) frame() bool {
	if w.closed {
		return false
	}
	if w.ctx.ShouldClose() {
		w.close()
		return false
	}
	w.ctx.MakeCurrent()
	if w.resizePending {
		w.resizePending = false
		w.surf.Resize()
	}
	if w.target != nil {
		w.target.Bind()
		w.queue.Flush()
		w.target.Unbind()
	}
	if w.blit != nil {
		fw, fh := w.ctx.GetFramebufferSize()
		var t *Target
		if w.surf.Status() == surface.StatusRunning || w.surf.Status() == surface.StatusPaused {
			t = w.target
		}
		w.blit.draw(t, fw, fh)
	}
	w.ctx.EndFrame()
	return true
}

func (w *Window) close() {
	if w.closed {
		return
	}
	w.closed = true
	w.ctx.MakeCurrent()
	w.surf.Destroy()
	w.Release()
	w.ctx.Shutdown()
}
