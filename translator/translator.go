package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	mu         sync.Mutex
	translator *gst.ShaderTranslator
)

// GetTranslator returns the shared translator, creating it on first use.
func GetTranslator(ctx context.Context) (*gst.ShaderTranslator, error) {
	mu.Lock()
	defer mu.Unlock()
	if translator == nil {
		t, err := gst.NewShaderTranslator(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create shader translator: %w", err)
		}
		translator = t
	}
	return translator, nil
}

// Shader is a kernel stage rewritten for the running context.
type Shader struct {
	Code string
	// Names maps each source identifier to the name in Code.
	Names map[string]string
}

// Translate rewrites an ESSL 300 stage ("vertex" or "fragment") as GLSL 410.
func Translate(ctx context.Context, source, stage string) (*Shader, error) {
	t, err := GetTranslator(ctx)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	out, err := t.TranslateShader(source, stage, gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%s shader translation failed: %w", stage, err)
	}
	names := make(map[string]string, len(out.Variables))
	for name, v := range out.Variables {
		names[name] = v.MappedName
	}
	return &Shader{Code: out.Code, Names: names}, nil
}

// Lookup returns the translated name of a source identifier, or the name
// itself when the translator kept it.
func (s *Shader) Lookup(name string) string {
	if mapped, ok := s.Names[name]; ok && mapped != "" {
		return mapped
	}
	return name
}
