// Package surfacetest provides in-memory Host, Device and Clock
// implementations for driving a surface.Surface without a GPU.
package surfacetest

import (
	"strings"

	"github.com/richinsley/goshadereffects/surface"
)

// Clock is a manually advanced surface.Clock.
type Clock struct {
	T float64
}

func (c *Clock) Now() float64 { return c.T }

// Advance moves the clock forward by seconds.
func (c *Clock) Advance(seconds float64) { c.T += seconds }

// Uniform records one SetUniform call.
type Uniform struct {
	Loc   surface.Location
	Kind  surface.Kind
	Value surface.Value
}

// Device records every call made to it.
type Device struct {
	// FailStage makes BuildProgram fail at that stage.
	FailStage surface.Stage
	// Unused lists uniform names the kernel does not reference.
	Unused []string

	Builds    int
	Draws     int
	Clears    int
	Programs  map[surface.Program]bool
	Quads     map[surface.Quad]bool
	Viewports [][4]int
	Current   surface.Program
	Blend     bool
	// Uniforms is the last value written per location.
	Uniforms map[surface.Location]Uniform
	// Sources holds the last sources passed to BuildProgram.
	VertexSource, FragmentSource string

	names map[string]surface.Location
	next  uint32
}

// NewDevice returns an empty recording device.
func NewDevice() *Device {
	return &Device{
		Programs: make(map[surface.Program]bool),
		Quads:    make(map[surface.Quad]bool),
		Uniforms: make(map[surface.Location]Uniform),
		names:    make(map[string]surface.Location),
	}
}

func (d *Device) BuildProgram(vertexSource, fragmentSource string) (surface.Program, error) {
	d.Builds++
	d.VertexSource, d.FragmentSource = vertexSource, fragmentSource
	switch d.FailStage {
	case surface.StageVertex, surface.StageFragment, surface.StageLink:
		return 0, &surface.BuildError{Stage: d.FailStage, Log: "ERROR: 0:1: forced failure"}
	}
	d.next++
	p := surface.Program(d.next)
	d.Programs[p] = true
	return p, nil
}

func (d *Device) UniformLocation(p surface.Program, name string) surface.Location {
	for _, u := range d.Unused {
		if u == name {
			return -1
		}
	}
	if loc, ok := d.names[name]; ok {
		return loc
	}
	loc := surface.Location(len(d.names))
	d.names[name] = loc
	return loc
}

func (d *Device) UploadQuad(vertices []float32) (surface.Quad, error) {
	d.next++
	q := surface.Quad(d.next)
	d.Quads[q] = true
	return q, nil
}

func (d *Device) UseProgram(p surface.Program) { d.Current = p }

func (d *Device) SetUniform(loc surface.Location, kind surface.Kind, v surface.Value) {
	d.Uniforms[loc] = Uniform{Loc: loc, Kind: kind, Value: v}
}

func (d *Device) SetBlend(enabled bool) { d.Blend = enabled }

func (d *Device) Viewport(x, y, width, height int) {
	d.Viewports = append(d.Viewports, [4]int{x, y, width, height})
}

func (d *Device) Clear() { d.Clears++ }

func (d *Device) Draw(q surface.Quad, vertexCount int) { d.Draws++ }

func (d *Device) DeleteProgram(p surface.Program) { delete(d.Programs, p) }

func (d *Device) DeleteQuad(q surface.Quad) { delete(d.Quads, q) }

// LastViewport is the most recent viewport, or zero.
func (d *Device) LastViewport() [4]int {
	if len(d.Viewports) == 0 {
		return [4]int{}
	}
	return d.Viewports[len(d.Viewports)-1]
}

// Written returns the last value written to the uniform called name.
func (d *Device) Written(name string) (surface.Value, bool) {
	loc, ok := d.names[name]
	if !ok {
		return surface.Value{}, false
	}
	u, ok := d.Uniforms[loc]
	return u.Value, ok
}

// Host is a resizable in-memory drawing area.
type Host struct {
	Dev         surface.Device
	Unsupported bool
	Width       int
	Height      int
	Ratio       float64
	Hidden      bool

	BufferWidth, BufferHeight int
	Released                  bool
}

// NewHost returns a visible host backed by dev.
func NewHost(dev surface.Device, width, height int, ratio float64) *Host {
	return &Host{Dev: dev, Width: width, Height: height, Ratio: ratio}
}

func (h *Host) Acquire() (surface.Device, bool) {
	if h.Unsupported {
		return nil, false
	}
	return h.Dev, true
}

func (h *Host) LogicalSize() (int, int) { return h.Width, h.Height }

func (h *Host) PixelRatio() float64 { return h.Ratio }

func (h *Host) SetBufferSize(width, height int) {
	h.BufferWidth, h.BufferHeight = width, height
}

func (h *Host) InView() bool { return !h.Hidden }

func (h *Host) Release() { h.Released = true }

// Declares reports whether source declares a uniform called name.
func Declares(source, name string) bool {
	for _, line := range strings.Split(source, "\n") {
		f := strings.Fields(strings.TrimSuffix(strings.TrimSpace(line), ";"))
		if len(f) >= 3 && f[0] == "uniform" && f[len(f)-1] == name {
			return true
		}
	}
	return false
}
