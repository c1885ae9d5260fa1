// Package effects configures the plasma vortex and the aura ring presets on
// top of a surface.Surface.
package effects

import (
	"fmt"

	"github.com/richinsley/goshadereffects/surface"
)

// Names of the instances New can build.
const (
	NamePlasma = "plasma"
	NameRing   = PresetRing
	NameSmoke  = PresetSmoke
)

// Names lists every effect New accepts.
func Names() []string {
	return []string{NamePlasma, NameRing, NameSmoke}
}

// Effect is one configured kernel. Kernel describes it to a surface; Bind
// attaches the surface so later configuration changes reach it.
type Effect interface {
	Name() string
	Kernel() surface.Kernel
	Bind(s *surface.Surface)
	Apply(cfg Config) error
}

// ScrollListener is implemented by effects that react to the page offset.
type ScrollListener interface {
	OnScroll(offset float64)
}

// New builds the named effect from cfg.
func New(name string, cfg Config) (Effect, error) {
	switch name {
	case NamePlasma:
		if err := cfg.Plasma.Validate(); err != nil {
			return nil, fmt.Errorf("invalid plasma config: %w", err)
		}
		return NewPlasma(cfg.Plasma), nil
	case NameRing, NameSmoke:
		ac, _ := cfg.Aura(name)
		if err := ac.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s config: %w", name, err)
		}
		return NewAura(name, ac), nil
	}
	return nil, fmt.Errorf("unknown effect %q", name)
}
