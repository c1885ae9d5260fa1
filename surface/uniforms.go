package surface

import (
	"fmt"
	"sort"
)

// Kind is the type of a uniform value.
type Kind int

const (
	Float Kind = iota
	Vec2
	Vec3
	// Color is a Vec3 with channels in 0..1.
	Color
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Vec2:
		return "vec2"
	case Vec3:
		return "vec3"
	case Color:
		return "color"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Components is the number of floats a value of this kind carries.
func (k Kind) Components() int {
	switch k {
	case Vec2:
		return 2
	case Vec3, Color:
		return 3
	default:
		return 1
	}
}

// Value holds up to three float components. Unused components are zero.
type Value [3]float32

// Param declares a named uniform and its initial value.
type Param struct {
	Name  string
	Kind  Kind
	Value Value
}

// F is a Float param.
func F(name string, v float32) Param {
	return Param{Name: name, Kind: Float, Value: Value{v}}
}

// V2 is a Vec2 param.
func V2(name string, x, y float32) Param {
	return Param{Name: name, Kind: Vec2, Value: Value{x, y}}
}

// V3 is a Vec3 param.
func V3(name string, x, y, z float32) Param {
	return Param{Name: name, Kind: Vec3, Value: Value{x, y, z}}
}

// RGB is a Color param.
func RGB(name string, rgb [3]float32) Param {
	return Param{Name: name, Kind: Color, Value: Value(rgb)}
}

type uniform struct {
	loc   Location
	kind  Kind
	value Value
}

// UniformTable maps uniform names to their resolved location and current
// value. Writes to names that were never declared are ignored.
type UniformTable struct {
	entries map[string]*uniform
}

func newUniformTable() *UniformTable {
	return &UniformTable{entries: make(map[string]*uniform)}
}

func (t *UniformTable) declare(p Param, loc Location) {
	t.entries[p.Name] = &uniform{loc: loc, kind: p.Kind, value: p.Value}
}

// Has reports whether name was declared.
func (t *UniformTable) Has(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// Value returns the current value of name.
func (t *UniformTable) Value(name string) (Value, bool) {
	u, ok := t.entries[name]
	if !ok {
		return Value{}, false
	}
	return u.value, true
}

// Location returns the handle resolved for name at initialization.
func (t *UniformTable) Location(name string) (Location, bool) {
	u, ok := t.entries[name]
	if !ok {
		return -1, false
	}
	return u.loc, true
}

// Names returns the declared names in sorted order.
func (t *UniformTable) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set1f sets a Float uniform.
func (t *UniformTable) Set1f(name string, x float32) {
	t.set(name, Value{x})
}

// Set2f sets a Vec2 uniform.
func (t *UniformTable) Set2f(name string, x, y float32) {
	t.set(name, Value{x, y})
}

// Set3f sets a Vec3 or Color uniform.
func (t *UniformTable) Set3f(name string, x, y, z float32) {
	t.set(name, Value{x, y, z})
}

// SetRGB sets a Color uniform.
func (t *UniformTable) SetRGB(name string, rgb [3]float32) {
	t.set(name, Value(rgb))
}

func (t *UniformTable) set(name string, v Value) {
	u, ok := t.entries[name]
	if !ok {
		return
	}
	// keep the unused components zero so the table stays comparable
	for i := u.kind.Components(); i < len(v); i++ {
		v[i] = 0
	}
	u.value = v
}

// flush writes every value with a live location to the device.
func (t *UniformTable) flush(dev Device) {
	for _, u := range t.entries {
		if u.loc < 0 {
			continue
		}
		dev.SetUniform(u.loc, u.kind, u.value)
	}
}
