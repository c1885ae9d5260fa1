package renderer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/richinsley/goshadereffects/effects"
	"github.com/richinsley/goshadereffects/glfwcontext"
	"github.com/richinsley/goshadereffects/options"
)

// glfwClock reads the GLFW timer.
type glfwClock struct{}

func (glfwClock) Now() float64 { return glfwcontext.Now() }

// Renderer drives one window per effect from the main thread. Exactly one
// open window waits for vertical sync, which paces the whole loop at the
// display refresh rate.
type Renderer struct {
	windows []*Window
	vsync   int
	configs <-chan effects.Config
	log     *zap.Logger
}

// NewRenderer opens a window for every effect named in opts. GLFW must
// already be initialised on the calling thread.
func NewRenderer(ctx context.Context, opts *options.ViewOptions, cfg effects.Config, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{log: log}
	for i, name := range opts.Effects {
		e, err := effects.New(name, cfg)
		if err != nil {
			r.Shutdown()
			return nil, err
		}
		w, err := NewWindow(ctx, e, opts.Width, opts.Height, i == 0, glfwClock{}, log)
		if err != nil {
			r.Shutdown()
			return nil, fmt.Errorf("failed to open window for %s: %w", name, err)
		}
		r.windows = append(r.windows, w)
	}
	return r, nil
}

// Watch makes Run apply every configuration received on ch.
func (r *Renderer) Watch(ch <-chan effects.Config) {
	r.configs = ch
}

// Windows returns the open windows.
func (r *Renderer) Windows() []*Window { return r.windows }

// Run presents frames until every window is closed or ctx is done.
func (r *Renderer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cfg := <-r.configs:
			r.apply(cfg)
		default:
		}

		open := 0
		for _, w := range r.windows {
			if w.frame() {
				open++
			}
		}
		if open == 0 {
			return nil
		}
		r.handOffVSync()
		glfwcontext.PollEvents()
	}
}

// handOffVSync moves vertical sync to another window once its holder closes.
func (r *Renderer) handOffVSync() {
	closed := make([]bool, len(r.windows))
	for i, w := range r.windows {
		closed[i] = w.closed
	}
	next := vsyncOwner(closed, r.vsync)
	if next == r.vsync || next < 0 {
		return
	}
	r.windows[next].SetVSync(true)
	r.vsync = next
	r.log.Debug("vsync moved", zap.String("effect", r.windows[next].effect.Name()))
}

// vsyncOwner keeps current while it is open, otherwise picks the first open
// window. It returns -1 when every window is closed.
func vsyncOwner(closed []bool, current int) int {
	if current >= 0 && current < len(closed) && !closed[current] {
		return current
	}
	for i, c := range closed {
		if !c {
			return i
		}
	}
	return -1
}

func (r *Renderer) apply(cfg effects.Config) {
	for _, w := range r.windows {
		if w.closed {
			continue
		}
		if err := w.effect.Apply(cfg); err != nil {
			r.log.Warn("config rejected", zap.String("effect", w.effect.Name()), zap.Error(err))
			continue
		}
		r.log.Info("config applied", zap.String("effect", w.effect.Name()))
	}
}

// Shutdown closes every window.
func (r *Renderer) Shutdown() {
	for _, w := range r.windows {
		w.close()
	}
	r.windows = nil
}
