package options

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/richinsley/goshadereffects/effects"
)

// LoadConfig reads a YAML file over effects.DefaultConfig. An empty path
// returns the defaults.
func LoadConfig(path string) (effects.Config, error) {
	if path == "" {
		return effects.DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return effects.Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return effects.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML over the defaults and validates the result.
// Unknown keys are rejected.
func ParseConfig(data []byte) (effects.Config, error) {
	cfg := effects.DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return effects.Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return effects.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// MarshalConfig renders cfg as YAML.
func MarshalConfig(cfg effects.Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
