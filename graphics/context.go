package graphics

// Context defines the interface for an OpenGL context backing one effect.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	SetShouldClose(bool)
	// EndFrame presents the frame.
	EndFrame()
	// GetWindowSize is the logical size in screen coordinates.
	GetWindowSize() (int, int)
	GetFramebufferSize() (int, int)
	// PixelRatio is framebuffer pixels per logical unit.
	PixelRatio() float64
	Iconified() bool
	Time() float64
}

// Events are delivered on the thread that polls the windowing system.
type Events struct {
	// Resize fires with the new logical size.
	Resize func(width, height int)
	// Visibility fires false when the window is minimised and true when it
	// is restored.
	Visibility func(visible bool)
	// Scroll fires with the vertical wheel delta in notches.
	Scroll func(dy float64)
}
