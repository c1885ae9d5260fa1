package effects

import (
	"fmt"

	"github.com/richinsley/goshadereffects/shader"
	"github.com/richinsley/goshadereffects/surface"
)

// Plasma is the full-viewport vortex background.
type Plasma struct {
	cfg    PlasmaConfig
	surf   *surface.Surface
	offset float64
}

// NewPlasma returns a plasma effect using cfg.
func NewPlasma(cfg PlasmaConfig) *Plasma {
	return &Plasma{cfg: cfg}
}

func (p *Plasma) Name() string { return NamePlasma }

// Config returns the active configuration.
func (p *Plasma) Config() PlasmaConfig { return p.cfg }

func (p *Plasma) Kernel() surface.Kernel {
	c := p.cfg
	return surface.Kernel{
		Name:           NamePlasma,
		VertexSource:   shader.EffectVertexShader(),
		FragmentSource: shader.PlasmaKernel(),
		Params: []surface.Param{
			surface.F(surface.UniformTime, 0),
			surface.V2(surface.UniformResolution, 0, 0),
			surface.F(surface.UniformOpacity, 1),
			surface.RGB("u_color", c.Color),
			surface.F("u_dotDensity", c.DotDensity),
			surface.F("u_vortexStrength", c.VortexStrength),
			surface.F("u_noiseScale", c.NoiseScale),
			surface.F("u_intensity", c.Intensity),
		},
		Speed:         c.Speed,
		MaxPixelRatio: c.MaxPixelRatio,
		Blend:         c.Blend,
		Update:        p.update,
	}
}

func (p *Plasma) update(u *surface.UniformTable, _ surface.State) {
	c := p.cfg
	u.SetRGB("u_color", c.Color)
	u.Set1f("u_dotDensity", c.DotDensity)
	u.Set1f("u_vortexStrength", c.VortexStrength)
	u.Set1f("u_noiseScale", c.NoiseScale)
	u.Set1f("u_intensity", c.Intensity)
}

func (p *Plasma) Bind(s *surface.Surface) {
	p.surf = s
	p.OnScroll(p.offset)
}

// OnScroll records the page offset and, when fading is on, sets the
// surface opacity for the next frame.
func (p *Plasma) OnScroll(offset float64) {
	p.offset = offset
	if p.surf == nil {
		return
	}
	if p.cfg.FadeOnScroll {
		p.surf.SetOpacity(ScrollOpacity(p.cfg, offset))
	} else {
		p.surf.SetOpacity(1)
	}
}

// Apply swaps in the plasma section of cfg. Blend and the pixel ratio cap
// are fixed when the surface is built.
func (p *Plasma) Apply(cfg Config) error {
	if err := cfg.Plasma.Validate(); err != nil {
		return fmt.Errorf("invalid plasma config: %w", err)
	}
	p.cfg = cfg.Plasma
	if p.surf != nil {
		p.surf.SetSpeed(p.cfg.Speed)
	}
	p.OnScroll(p.offset)
	return nil
}
