// Package surface renders one animated fragment kernel over a full-screen
// quad, driven by a per-frame scheduler.
package surface

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Uniforms the surface writes itself when the kernel declares them.
const (
	UniformTime       = "u_time"
	UniformResolution = "u_resolution"
	UniformOpacity    = "u_opacity"
)

// DefaultMaxPixelRatio bounds fragment cost on high density displays.
const DefaultMaxPixelRatio = 2.0

// FullScreenQuad is two triangles covering clip space.
var FullScreenQuad = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

// UpdateFunc writes effect-specific uniforms before each draw.
type UpdateFunc func(u *UniformTable, st State)

// Kernel configures one effect instance.
type Kernel struct {
	Name           string
	VertexSource   string
	FragmentSource string
	Params         []Param
	// Speed scales elapsed seconds before they reach u_time. Zero means 1.
	Speed float64
	// MaxPixelRatio caps the host pixel ratio. Zero means DefaultMaxPixelRatio.
	MaxPixelRatio float64
	// Blend enables source-alpha blending for kernels that emit alpha.
	Blend  bool
	Update UpdateFunc
}

func (k *Kernel) validate() error {
	if k.VertexSource == "" || k.FragmentSource == "" {
		return errors.New("vertex and fragment sources are required")
	}
	if k.Speed < 0 || math.IsNaN(k.Speed) {
		return fmt.Errorf("invalid speed %v", k.Speed)
	}
	if k.MaxPixelRatio < 0 {
		return fmt.Errorf("invalid max pixel ratio %v", k.MaxPixelRatio)
	}
	seen := make(map[string]struct{}, len(k.Params))
	for _, p := range k.Params {
		if p.Name == "" {
			return errors.New("uniform with empty name")
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("uniform %q declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// Option configures a Surface.
type Option func(*Surface)

// WithLogger sets the logger diagnostics go to.
func WithLogger(l *zap.Logger) Option {
	return func(s *Surface) {
		if l != nil {
			s.log = l
		}
	}
}

// Surface owns one program, one quad, one uniform table and one State.
// All methods must be called from the thread that flushes the scheduler.
type Surface struct {
	kernel Kernel
	host   Host
	sched  Scheduler
	clock  Clock
	log    *zap.Logger

	dev      Device
	program  Program
	quad     Quad
	built    bool
	uniforms *UniformTable
	state    State
	status   Status
	result   Capability
	err      error
	pending  Handle
	viewport [4]int
}

// New creates an uninitialized surface. Nothing touches the host until Init.
func New(kernel Kernel, host Host, sched Scheduler, clock Clock, opts ...Option) *Surface {
	s := &Surface{
		kernel:   kernel,
		host:     host,
		sched:    sched,
		clock:    clock,
		log:      zap.NewNop(),
		uniforms: newUniformTable(),
		state:    State{Opacity: 1},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.kernel.Speed == 0 {
		s.kernel.Speed = 1
	}
	if s.kernel.MaxPixelRatio == 0 {
		s.kernel.MaxPixelRatio = DefaultMaxPixelRatio
	}
	s.log = s.log.With(zap.String("effect", kernel.Name))
	return s
}

// Init acquires the context, builds the program and starts the frame loop.
// Failures leave the surface permanently idle; they never propagate as
// panics. Calling Init again returns the first result.
func (s *Surface) Init() Capability {
	if s.status != StatusUninitialized {
		return s.result
	}

	dev, ok := s.host.Acquire()
	if !ok || dev == nil {
		s.status = StatusUnavailable
		s.result = NotAvailable
		s.err = ErrUnavailable
		s.log.Warn("shader effect disabled", zap.Error(s.err))
		return s.result
	}
	s.dev = dev

	if err := s.build(); err != nil {
		s.status = StatusInert
		s.result = BuildFailed
		s.err = err
		var be *BuildError
		stage := ""
		if errors.As(err, &be) {
			stage = string(be.Stage)
		}
		s.log.Error("shader effect build failed", zap.String("stage", stage), zap.Error(err))
		return s.result
	}

	s.status = StatusRunning
	s.result = Available
	s.state.Running = true
	s.state.Origin = s.clock.Now()
	s.Resize()
	s.pending = s.sched.Schedule(s.frame)
	s.log.Debug("shader effect running",
		zap.Int("width", s.state.Width),
		zap.Int("height", s.state.Height))
	return s.result
}

func (s *Surface) build() error {
	if err := s.kernel.validate(); err != nil {
		return &BuildError{Stage: StageValidate, Err: err}
	}
	program, err := s.dev.BuildProgram(s.kernel.VertexSource, s.kernel.FragmentSource)
	if err != nil {
		var be *BuildError
		if errors.As(err, &be) {
			return err
		}
		return &BuildError{Stage: StageLink, Err: err}
	}
	quad, err := s.dev.UploadQuad(FullScreenQuad)
	if err != nil {
		s.dev.DeleteProgram(program)
		return fmt.Errorf("failed to upload quad: %w", err)
	}
	s.program, s.quad, s.built = program, quad, true

	for _, p := range s.kernel.Params {
		loc := s.dev.UniformLocation(program, p.Name)
		if loc < 0 {
			s.log.Debug("uniform not used by kernel", zap.String("uniform", p.Name))
		}
		s.uniforms.declare(p, loc)
	}
	return nil
}

// Resize matches the backing buffer and viewport to the host size times its
// capped pixel ratio.
func (s *Surface) Resize() {
	if s.status != StatusRunning && s.status != StatusPaused {
		return
	}
	lw, lh := s.host.LogicalSize()
	w, h := BufferSize(lw, lh, s.host.PixelRatio(), s.kernel.MaxPixelRatio)
	s.host.SetBufferSize(w, h)
	s.state.Width, s.state.Height = w, h
	s.viewport = [4]int{0, 0, w, h}
	s.dev.Viewport(0, 0, w, h)
}

// BufferSize scales a logical size by ratio capped at maxRatio. Each side is at
// least one pixel.
func BufferSize(width, height int, ratio, maxRatio float64) (int, int) {
	if ratio <= 0 || math.IsNaN(ratio) {
		ratio = 1
	}
	if maxRatio > 0 && ratio > maxRatio {
		ratio = maxRatio
	}
	w := int(math.Floor(float64(width) * ratio))
	h := int(math.Floor(float64(height) * ratio))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func (s *Surface) frame() {
	s.pending = nil
	if s.status != StatusRunning {
		return
	}

	s.state.Elapsed = (s.clock.Now() - s.state.Origin) * s.kernel.Speed

	u := s.uniforms
	u.Set1f(UniformTime, float32(s.state.Elapsed))
	u.Set2f(UniformResolution, float32(s.state.Width), float32(s.state.Height))
	u.Set1f(UniformOpacity, s.state.Opacity)
	if s.kernel.Update != nil {
		s.kernel.Update(u, s.state)
	}

	if s.host.InView() {
		s.dev.UseProgram(s.program)
		u.flush(s.dev)
		s.dev.Viewport(s.viewport[0], s.viewport[1], s.viewport[2], s.viewport[3])
		s.dev.SetBlend(s.kernel.Blend)
		s.dev.Clear()
		s.dev.Draw(s.quad, len(FullScreenQuad)/2)
		s.state.Frames++
	}

	s.pending = s.sched.Schedule(s.frame)
}

// Pause stops scheduling frames.
func (s *Surface) Pause() {
	if s.status != StatusRunning {
		return
	}
	s.cancel()
	s.status = StatusPaused
	s.state.Running = false
}

// Resume restarts the frame loop with the time origin reset to now.
func (s *Surface) Resume() {
	if s.status != StatusPaused {
		return
	}
	s.status = StatusRunning
	s.state.Running = true
	s.state.Origin = s.clock.Now()
	s.state.Elapsed = 0
	s.pending = s.sched.Schedule(s.frame)
}

// SetVisible pauses on false and resumes on true.
func (s *Surface) SetVisible(visible bool) {
	if visible {
		s.Resume()
	} else {
		s.Pause()
	}
}

// SetOpacity sets the value written to u_opacity, clamped to 0..1.
func (s *Surface) SetOpacity(v float32) {
	s.state.Opacity = clamp01(v)
}

// SetSpeed changes the time scale. The origin is rebased so the elapsed
// value continues from where it was.
func (s *Surface) SetSpeed(speed float64) {
	if speed <= 0 || math.IsNaN(speed) || speed == s.kernel.Speed {
		return
	}
	if s.status == StatusRunning {
		now := s.clock.Now()
		elapsed := (now - s.state.Origin) * s.kernel.Speed
		s.state.Origin = now - elapsed/speed
	}
	s.kernel.Speed = speed
}

// Speed is the current time scale.
func (s *Surface) Speed() float64 { return s.kernel.Speed }

// Destroy stops the loop, releases GPU resources and detaches from the host.
func (s *Surface) Destroy() {
	if s.status == StatusDestroyed {
		return
	}
	s.cancel()
	if s.built {
		s.dev.DeleteProgram(s.program)
		s.dev.DeleteQuad(s.quad)
		s.built = false
	}
	if s.status != StatusUninitialized {
		s.host.Release()
	}
	s.status = StatusDestroyed
	s.state.Running = false
}

func (s *Surface) cancel() {
	if s.pending != nil {
		s.pending.Cancel()
		s.pending = nil
	}
}

// Name is the kernel name.
func (s *Surface) Name() string { return s.kernel.Name }

// Status reports the lifecycle position.
func (s *Surface) Status() Status { return s.status }

// Err is the failure behind NotAvailable or BuildFailed.
func (s *Surface) Err() error { return s.err }

// State returns a copy of the per-frame state.
func (s *Surface) State() State { return s.state }

// Viewport is the last viewport set by Resize: x, y, width, height.
func (s *Surface) Viewport() [4]int { return s.viewport }

// Uniforms exposes the table for reading.
func (s *Surface) Uniforms() *UniformTable { return s.uniforms }
