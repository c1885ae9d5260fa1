package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/richinsley/goshadereffects/surface/surfacetest"
)

func TestKernelsDeclareTheirUniforms(t *testing.T) {
	kernels := map[string]struct {
		src      string
		uniforms []uniformDecl
	}{
		"plasma": {PlasmaKernel(), plasmaUniforms},
		"aura":   {AuraKernel(), auraUniforms},
	}
	for name, k := range kernels {
		assert.True(t, strings.HasPrefix(k.src, "#version 300 es\n"), name)
		assert.Contains(t, k.src, "void main()", name)
		assert.Contains(t, k.src, "float snoise(vec2 v)", name)
		assert.Contains(t, k.src, "out vec4 fragColor;", name)
		for _, u := range k.uniforms {
			assert.True(t, surfacetest.Declares(k.src, u.name), "%s: %s", name, u.name)
		}
	}
}

func TestVertexStageFeedsKernelVarying(t *testing.T) {
	vs := EffectVertexShader()
	assert.Contains(t, vs, "out vec2 v_uv;")
	assert.Contains(t, PlasmaKernel(), "in vec2 v_uv;")
	assert.Contains(t, AuraKernel(), "in vec2 v_uv;")
}

func TestBlitStages(t *testing.T) {
	assert.Contains(t, BlitVertexShader(), "#version 410 core")
	assert.Contains(t, BlitVertexShader(), "out vec2 frag_uv;")
	assert.Contains(t, BlitFragmentShader(), "#version 410 core")
	assert.Contains(t, BlitFragmentShader(), "in vec2 frag_uv;")
	assert.True(t, surfacetest.Declares(BlitFragmentShader(), "u_texture"))
}
