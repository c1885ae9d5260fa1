package surface

// Program is an opaque handle to a linked two-stage shader program.
type Program uint32

// Quad is an opaque handle to an uploaded vertex buffer.
type Quad uint32

// Location is a resolved uniform handle. -1 means the program does not use
// the uniform (the GL convention) and writes to it are dropped.
type Location int32

// Device is the rendering context a Host hands out. All calls happen on the
// thread that owns the context.
type Device interface {
	// BuildProgram compiles both stages and links them. The returned error
	// is a *BuildError when a stage fails to compile or the link fails.
	BuildProgram(vertexSource, fragmentSource string) (Program, error)
	UniformLocation(p Program, name string) Location
	UploadQuad(vertices []float32) (Quad, error)
	UseProgram(p Program)
	SetUniform(loc Location, kind Kind, v Value)
	SetBlend(enabled bool)
	Viewport(x, y, width, height int)
	Clear()
	Draw(q Quad, vertexCount int)
	DeleteProgram(p Program)
	DeleteQuad(q Quad)
}

// Host is the environment a Surface draws into: a window, a region of one,
// or an offscreen target.
type Host interface {
	// Acquire returns the rendering context, or false when the environment
	// cannot provide an accelerated one.
	Acquire() (Device, bool)
	// LogicalSize is the size of the drawing area in logical units.
	LogicalSize() (width, height int)
	// PixelRatio is the number of device pixels per logical unit.
	PixelRatio() float64
	// SetBufferSize resizes the backing pixel buffer.
	SetBufferSize(width, height int)
	// InView reports whether any part of the drawing area is visible.
	InView() bool
	// Release detaches whatever the host attached for this surface.
	Release()
}

// Handle is a pending scheduled callback.
type Handle interface {
	Cancel()
}

// Scheduler runs a callback once, at the next display refresh.
type Scheduler interface {
	Schedule(fn func()) Handle
}

// Clock reports monotonic time in seconds.
type Clock interface {
	Now() float64
}
