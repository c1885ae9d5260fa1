package shader

import "strings"

// ────────────────────────────── Effect kernels ──────────────────────────────
//
// Effect kernels are written once in ESSL 300 (the WebGL2 dialect) and
// translated to GLSL 410 by the renderer.

const effectHeader = `#version 300 es
precision highp float;
precision highp int;
`

// Full-screen quad vertex stage shared by every effect. v_uv runs 0..1
// across the quad.
const effectVertexSource = `#version 300 es
layout (location = 0) in vec2 a_position;
out vec2 v_uv;
void main() {
    v_uv = a_position * 0.5 + 0.5;
    gl_Position = vec4(a_position, 0.0, 1.0);
}
`

// ──────────────────────────────────── Blit ─────────────────────────────────────

const blitVertexSource = `#version 410 core
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const blitFragmentSource = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

// ────────────────────────────────── Public API ─────────────────────────────────

// EffectVertexShader is the ESSL 300 vertex stage for every effect.
func EffectVertexShader() string {
	return effectVertexSource
}

// BlitVertexShader is the vertex stage of the window blit.
func BlitVertexShader() string {
	return blitVertexSource
}

// BlitFragmentShader copies a texture to the bound framebuffer.
func BlitFragmentShader() string {
	return blitFragmentSource
}

// ────────────────────── Kernel assembly ──────────────────────

// uniformDecl is one "uniform <type> <name>;" line of a kernel preamble.
type uniformDecl struct {
	typ  string
	name string
}

// generatePreamble emits the version header, the uniform block and the
// fragment output.
func generatePreamble(uniforms []uniformDecl) string {
	var b strings.Builder
	b.WriteString(effectHeader)
	b.WriteString("\n")
	for _, u := range uniforms {
		b.WriteString("uniform ")
		b.WriteString(u.typ)
		b.WriteString(" ")
		b.WriteString(u.name)
		b.WriteString(";\n")
	}
	b.WriteString(`
in vec2 v_uv;
out vec4 fragColor;
`)
	return b.String()
}

// getFragmentShader combines preamble + shared noise + kernel body.
func getFragmentShader(uniforms []uniformDecl, body string) string {
	return generatePreamble(uniforms) + simplexNoise + body
}
