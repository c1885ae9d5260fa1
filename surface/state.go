package surface

// State is the mutable per-frame state of one surface.
type State struct {
	// Origin is the clock reading elapsed time is measured from.
	Origin float64
	// Elapsed is the scaled time fed to the kernel on the last frame.
	Elapsed float64
	// Opacity is in 0..1.
	Opacity float32
	// Width and Height are the backing buffer size in pixels.
	Width, Height int
	Running       bool
	// Frames counts frames that issued a draw call.
	Frames uint64
}

// Status is the lifecycle position of a Surface.
type Status int

const (
	StatusUninitialized Status = iota
	StatusRunning
	StatusPaused
	// StatusUnavailable: the host had no accelerated context.
	StatusUnavailable
	// StatusInert: the program failed to build; the surface never draws.
	StatusInert
	StatusDestroyed
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusUnavailable:
		return "unavailable"
	case StatusInert:
		return "inert"
	case StatusDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// Capability is the result of Init.
type Capability int

const (
	Available Capability = iota + 1
	NotAvailable
	BuildFailed
)

func (c Capability) String() string {
	switch c {
	case Available:
		return "available"
	case NotAvailable:
		return "not available"
	case BuildFailed:
		return "build failed"
	}
	return "unknown"
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
