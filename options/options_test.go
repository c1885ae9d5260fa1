package options

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/richinsley/goshadereffects/effects"
)

func TestParseConfigMergesOverDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
plasma:
  dot_density: 40
  color: [1, 0, 0]
smoke:
  gain: 2.2
`))
	require.NoError(t, err)

	want := effects.DefaultConfig()
	want.Plasma.DotDensity = 40
	want.Plasma.Color = [3]float32{1, 0, 0}
	want.Smoke.Gain = 2.2
	assert.Equal(t, want, cfg)
}

func TestParseConfigEmptyIsDefault(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, effects.DefaultConfig(), cfg)
}

func TestParseConfigRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":   "plasma:\n  sparkle: 1\n",
		"invalid range": "plasma:\n  fade_start: 700\n",
		"short color":   "ring:\n  deep_color: [0, 1]\n",
		"not yaml":      "plasma: [",
	} {
		_, err := ParseConfig([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestMarshalConfigRoundTrips(t *testing.T) {
	data, err := MarshalConfig(effects.DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, string(data), "dot_density: 80")
	assert.Contains(t, string(data), "ring:")

	cfg, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, effects.DefaultConfig(), cfg)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, effects.DefaultConfig(), cfg)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestViewOptionsValidate(t *testing.T) {
	o := ViewOptions{Effects: []string{"plasma", "smoke"}, Width: 800, Height: 600}
	require.NoError(t, o.Validate())

	o.Effects = []string{"sparkles"}
	assert.Error(t, o.Validate())

	o = ViewOptions{Effects: []string{"ring"}, Width: 800, Height: 600, Watch: true}
	assert.Error(t, o.Validate())
}

func TestExportOptions(t *testing.T) {
	o := ExportOptions{Effect: "ring", OutputFile: "out.mp4", Duration: 2.5, FPS: 30, Width: 640, Height: 360}
	require.NoError(t, o.Validate())
	assert.Equal(t, 75, o.Frames())

	o.FPS = 0
	assert.Error(t, o.Validate())

	// 4.1 * 30 is 122.99999999999999 in float64
	o = ExportOptions{Effect: "plasma", OutputFile: "out.mp4", Duration: 4.1, FPS: 30, Width: 640, Height: 360}
	require.NoError(t, o.Validate())
	assert.Equal(t, 123, o.Frames())

	o.Duration = 0.01
	assert.Zero(t, o.Frames())
	assert.Error(t, o.Validate())
}

func TestConfigWatcherPublishesValidReloads(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "effects.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plasma:\n  speed: 0.3\n"), 0o644))

	w, err := NewConfigWatcher(path, 20*time.Millisecond, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(path, []byte("plasma:\n  fade_end: -5\n"), 0o644))
	time.Sleep(100 * time.Millisecond)
	select {
	case <-w.Configs():
		t.Fatal("invalid config was published")
	default:
	}

	require.NoError(t, os.WriteFile(path, []byte("plasma:\n  speed: 0.9\n"), 0o644))
	select {
	case cfg := <-w.Configs():
		assert.Equal(t, 0.9, cfg.Plasma.Speed)
	case <-time.After(5 * time.Second):
		t.Fatal("no config reloaded")
	}

	w.Stop()
}

func TestConfigWatcherIgnoresSiblings(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "effects.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	w, err := NewConfigWatcher(path, 20*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, w.Configs())

	w.Stop()
	w.Stop()
}
