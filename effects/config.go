package effects

import (
	"errors"
	"fmt"
	"math"

	"github.com/richinsley/goshadereffects/surface"
)

// Preset names of the aura effect.
const (
	PresetRing  = "ring"
	PresetSmoke = "smoke"
)

// Accent is the brand green shared by every effect.
var Accent = [3]float32{0, 1, 0.53}

// PlasmaConfig tunes the plasma vortex background.
type PlasmaConfig struct {
	Color          [3]float32 `yaml:"color"`
	DotDensity     float32    `yaml:"dot_density"`
	Speed          float64    `yaml:"speed"`
	Intensity      float32    `yaml:"intensity"`
	VortexStrength float32    `yaml:"vortex_strength"`
	NoiseScale     float32    `yaml:"noise_scale"`
	FadeOnScroll   bool       `yaml:"fade_on_scroll"`
	FadeStart      float64    `yaml:"fade_start"`
	FadeEnd        float64    `yaml:"fade_end"`
	OpacityFloor   float32    `yaml:"opacity_floor"`
	MaxPixelRatio  float64    `yaml:"max_pixel_ratio"`
	Blend          bool       `yaml:"blend"`
}

// DefaultPlasma returns the production plasma settings.
func DefaultPlasma() PlasmaConfig {
	return PlasmaConfig{
		Color:          Accent,
		DotDensity:     80,
		Speed:          0.3,
		Intensity:      1.2,
		VortexStrength: 2.5,
		NoiseScale:     1.5,
		FadeOnScroll:   true,
		FadeStart:      0,
		FadeEnd:        600,
		OpacityFloor:   0.1,
		MaxPixelRatio:  surface.DefaultMaxPixelRatio,
		Blend:          true,
	}
}

// Validate reports the first inconsistent field.
func (c PlasmaConfig) Validate() error {
	if err := validColor("color", c.Color); err != nil {
		return err
	}
	if !(c.DotDensity > 0) {
		return fmt.Errorf("dot_density must be positive, got %v", c.DotDensity)
	}
	if !(c.Speed > 0) || math.IsInf(c.Speed, 0) {
		return fmt.Errorf("speed must be positive, got %v", c.Speed)
	}
	if c.Intensity < 0 {
		return fmt.Errorf("intensity must not be negative, got %v", c.Intensity)
	}
	if !(c.FadeEnd > c.FadeStart) {
		return fmt.Errorf("fade_end (%v) must be greater than fade_start (%v)", c.FadeEnd, c.FadeStart)
	}
	if c.OpacityFloor < 0 || c.OpacityFloor > 1 {
		return fmt.Errorf("opacity_floor must be within [0, 1], got %v", c.OpacityFloor)
	}
	if c.MaxPixelRatio < 0 {
		return fmt.Errorf("max_pixel_ratio must not be negative, got %v", c.MaxPixelRatio)
	}
	return nil
}

// AuraConfig tunes one preset of the aura ring. The four thresholds are
// distances from the centre in units of the drawing height.
type AuraConfig struct {
	Preset        string     `yaml:"preset"`
	InnerStart    float32    `yaml:"inner_start"`
	InnerEnd      float32    `yaml:"inner_end"`
	OuterStart    float32    `yaml:"outer_start"`
	OuterEnd      float32    `yaml:"outer_end"`
	Gain          float32    `yaml:"gain"`
	DeepColor     [3]float32 `yaml:"deep_color"`
	AccentColor   [3]float32 `yaml:"accent_color"`
	DeepGain      float32    `yaml:"deep_gain"`
	CrestColor    [3]float32 `yaml:"crest_color"`
	CrestGain     float32    `yaml:"crest_gain"`
	Speed         float64    `yaml:"speed"`
	MaxPixelRatio float64    `yaml:"max_pixel_ratio"`
}

// RingPreset is the thin glowing ring.
func RingPreset() AuraConfig {
	return AuraConfig{
		Preset:        PresetRing,
		InnerStart:    0.20,
		InnerEnd:      0.35,
		OuterStart:    0.50,
		OuterEnd:      0.75,
		Gain:          1.5,
		DeepColor:     [3]float32{0, 0.3, 0.2},
		AccentColor:   Accent,
		DeepGain:      2.5,
		Speed:         0.15,
		MaxPixelRatio: surface.DefaultMaxPixelRatio,
	}
}

// SmokePreset is the wider ring with bright crests.
func SmokePreset() AuraConfig {
	return AuraConfig{
		Preset:        PresetSmoke,
		InnerStart:    0.15,
		InnerEnd:      0.35,
		OuterStart:    0.45,
		OuterEnd:      0.85,
		Gain:          1.8,
		DeepColor:     [3]float32{0, 0.2, 0.1},
		AccentColor:   Accent,
		DeepGain:      2.0,
		CrestColor:    [3]float32{0.5, 1, 0.8},
		CrestGain:     0.5,
		Speed:         0.15,
		MaxPixelRatio: surface.DefaultMaxPixelRatio,
	}
}

// Validate reports the first inconsistent field.
func (c AuraConfig) Validate() error {
	// smoothstep needs edge0 < edge1 for each pair
	if !(c.InnerStart < c.InnerEnd && c.InnerEnd <= c.OuterStart && c.OuterStart < c.OuterEnd) {
		return fmt.Errorf("%s: thresholds must be ordered, got %v/%v/%v/%v",
			c.Preset, c.InnerStart, c.InnerEnd, c.OuterStart, c.OuterEnd)
	}
	if c.InnerStart < 0 {
		return fmt.Errorf("%s: inner_start must not be negative, got %v", c.Preset, c.InnerStart)
	}
	colors := []struct {
		name string
		rgb  [3]float32
	}{
		{"deep_color", c.DeepColor},
		{"accent_color", c.AccentColor},
		{"crest_color", c.CrestColor},
	}
	for _, col := range colors {
		if err := validColor(col.name, col.rgb); err != nil {
			return fmt.Errorf("%s: %w", c.Preset, err)
		}
	}
	if c.Gain < 0 || c.DeepGain < 0 || c.CrestGain < 0 {
		return fmt.Errorf("%s: gains must not be negative", c.Preset)
	}
	if !(c.Speed > 0) || math.IsInf(c.Speed, 0) {
		return fmt.Errorf("%s: speed must be positive, got %v", c.Preset, c.Speed)
	}
	if c.MaxPixelRatio < 0 {
		return fmt.Errorf("%s: max_pixel_ratio must not be negative, got %v", c.Preset, c.MaxPixelRatio)
	}
	return nil
}

// Config is the full effect configuration as stored in the YAML file.
type Config struct {
	Plasma PlasmaConfig `yaml:"plasma"`
	Ring   AuraConfig   `yaml:"ring"`
	Smoke  AuraConfig   `yaml:"smoke"`
}

// DefaultConfig returns the production settings of all three effects.
func DefaultConfig() Config {
	return Config{
		Plasma: DefaultPlasma(),
		Ring:   RingPreset(),
		Smoke:  SmokePreset(),
	}
}

// Validate checks every section and joins the failures.
func (c Config) Validate() error {
	var errs []error
	if err := c.Plasma.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("plasma: %w", err))
	}
	// aura errors already carry the preset name
	errs = append(errs, c.Ring.Validate(), c.Smoke.Validate())
	return errors.Join(errs...)
}

// Aura returns the preset section by name.
func (c Config) Aura(preset string) (AuraConfig, bool) {
	switch preset {
	case PresetRing:
		return c.Ring, true
	case PresetSmoke:
		return c.Smoke, true
	}
	return AuraConfig{}, false
}

func validColor(name string, c [3]float32) error {
	for _, v := range c {
		if v < 0 || v > 1 || v != v {
			return fmt.Errorf("%s channels must be within [0, 1], got %v", name, c)
		}
	}
	return nil
}
