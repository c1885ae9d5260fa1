package effects

import (
	"fmt"

	"github.com/richinsley/goshadereffects/shader"
	"github.com/richinsley/goshadereffects/surface"
)

// Aura is a ring-masked smoke effect. Ring and smoke are two presets of it.
type Aura struct {
	name string
	cfg  AuraConfig
	surf *surface.Surface
}

// NewAura returns the aura effect called name using cfg.
func NewAura(name string, cfg AuraConfig) *Aura {
	return &Aura{name: name, cfg: cfg}
}

func (a *Aura) Name() string { return a.name }

// Config returns the active configuration.
func (a *Aura) Config() AuraConfig { return a.cfg }

func (a *Aura) Kernel() surface.Kernel {
	c := a.cfg
	return surface.Kernel{
		Name:           a.name,
		VertexSource:   shader.EffectVertexShader(),
		FragmentSource: shader.AuraKernel(),
		Params: []surface.Param{
			surface.F(surface.UniformTime, 0),
			surface.V2(surface.UniformResolution, 0, 0),
			surface.F(surface.UniformOpacity, 1),
			surface.F("u_innerStart", c.InnerStart),
			surface.F("u_innerEnd", c.InnerEnd),
			surface.F("u_outerStart", c.OuterStart),
			surface.F("u_outerEnd", c.OuterEnd),
			surface.F("u_gain", c.Gain),
			surface.RGB("u_colorDeep", c.DeepColor),
			surface.RGB("u_colorAccent", c.AccentColor),
			surface.F("u_deepGain", c.DeepGain),
			surface.RGB("u_crestColor", c.CrestColor),
			surface.F("u_crestGain", c.CrestGain),
		},
		Speed:         c.Speed,
		MaxPixelRatio: c.MaxPixelRatio,
		Update:        a.update,
	}
}

func (a *Aura) update(u *surface.UniformTable, _ surface.State) {
	c := a.cfg
	u.Set1f("u_innerStart", c.InnerStart)
	u.Set1f("u_innerEnd", c.InnerEnd)
	u.Set1f("u_outerStart", c.OuterStart)
	u.Set1f("u_outerEnd", c.OuterEnd)
	u.Set1f("u_gain", c.Gain)
	u.SetRGB("u_colorDeep", c.DeepColor)
	u.SetRGB("u_colorAccent", c.AccentColor)
	u.Set1f("u_deepGain", c.DeepGain)
	u.SetRGB("u_crestColor", c.CrestColor)
	u.Set1f("u_crestGain", c.CrestGain)
}

func (a *Aura) Bind(s *surface.Surface) { a.surf = s }

// Apply swaps in the section of cfg matching this preset.
func (a *Aura) Apply(cfg Config) error {
	next, ok := cfg.Aura(a.name)
	if !ok {
		return fmt.Errorf("no configuration for %q", a.name)
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid %s config: %w", a.name, err)
	}
	a.cfg = next
	if a.surf != nil {
		a.surf.SetSpeed(next.Speed)
	}
	return nil
}
