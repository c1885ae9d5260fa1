package options

import (
	"fmt"
	"math"

	"github.com/richinsley/goshadereffects/effects"
)

// ViewOptions configures the interactive viewer.
type ViewOptions struct {
	Effects    []string
	ConfigFile string
	Watch      bool
	Width      int
	Height     int
	Verbose    bool
}

// Validate checks effect names and window size.
func (o *ViewOptions) Validate() error {
	if len(o.Effects) == 0 {
		return fmt.Errorf("at least one effect is required")
	}
	for _, name := range o.Effects {
		if !knownEffect(name) {
			return fmt.Errorf("unknown effect %q (want one of %v)", name, effects.Names())
		}
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", o.Width, o.Height)
	}
	if o.Watch && o.ConfigFile == "" {
		return fmt.Errorf("--watch needs --config")
	}
	return nil
}

// ExportOptions configures offline rendering to a video file.
type ExportOptions struct {
	Effect     string
	ConfigFile string
	OutputFile string
	FFMPEGPath string
	Duration   float64
	FPS        int
	Width      int
	Height     int
	// Scroll is the page offset fed to effects that fade on scroll.
	Scroll  float64
	Verbose bool
}

// Validate checks the export parameters.
func (o *ExportOptions) Validate() error {
	if !knownEffect(o.Effect) {
		return fmt.Errorf("unknown effect %q (want one of %v)", o.Effect, effects.Names())
	}
	if o.OutputFile == "" {
		return fmt.Errorf("output file is required")
	}
	if o.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", o.Duration)
	}
	if o.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", o.FPS)
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("invalid output size %dx%d", o.Width, o.Height)
	}
	if o.Frames() < 1 {
		return fmt.Errorf("%vs at %d fps is less than one frame", o.Duration, o.FPS)
	}
	return nil
}

// Frames is the number of frames the export renders.
func (o *ExportOptions) Frames() int {
	return int(math.Round(o.Duration * float64(o.FPS)))
}

func knownEffect(name string) bool {
	for _, n := range effects.Names() {
		if n == name {
			return true
		}
	}
	return false
}
