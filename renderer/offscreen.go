package renderer

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goshadereffects/shader"
	"github.com/richinsley/goshadereffects/surface"
)

// Target is an RGBA8 framebuffer that holds a surface's backing buffer.
type Target struct {
	fbo       uint32
	textureID uint32
	width     int
	height    int
}

// NewTarget allocates a width×height colour target.
func NewTarget(width, height int) (*Target, error) {
	t := &Target{}
	gl.GenFramebuffers(1, &t.fbo)
	gl.GenTextures(1, &t.textureID)
	gl.BindTexture(gl.TEXTURE_2D, t.textureID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	t.allocate(width, height)

	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.textureID, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.Destroy()
		return nil, fmt.Errorf("offscreen fbo is not complete: 0x%x", status)
	}
	return t, nil
}

func (t *Target) allocate(width, height int) {
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	t.width, t.height = width, height
}

// Resize reallocates the storage when the size changes.
func (t *Target) Resize(width, height int) {
	if width == t.width && height == t.height {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, t.textureID)
	t.allocate(width, height)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Size is the current storage size in pixels.
func (t *Target) Size() (int, int) { return t.width, t.height }

// Bind directs drawing into the target.
func (t *Target) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
}

// Unbind restores the window framebuffer.
func (t *Target) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// ReadPixels copies the target into buf as bottom-up RGBA rows. buf is
// grown when it is too small.
func (t *Target) ReadPixels(buf []byte) []byte {
	n := t.width * t.height * 4
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.fbo)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(t.width), int32(t.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(buf))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return buf
}

func (t *Target) Destroy() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if t.textureID != 0 {
		gl.DeleteTextures(1, &t.textureID)
		t.textureID = 0
	}
}

// blitter stretches a Target over the window framebuffer.
type blitter struct {
	program uint32
	vao     uint32
	vbo     uint32
	texLoc  int32
}

func newBlitter() (*blitter, error) {
	program, err := newProgram(shader.BlitVertexShader(), shader.BlitFragmentShader())
	if err != nil {
		return nil, fmt.Errorf("failed to create blit program: %w", err)
	}
	b := &blitter{program: program}
	b.texLoc = gl.GetUniformLocation(program, gl.Str("u_texture\x00"))

	gl.GenVertexArrays(1, &b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(surface.FullScreenQuad)*4, gl.Ptr(surface.FullScreenQuad), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return b, nil
}

// draw copies t to the bound framebuffer; a nil target just clears it.
func (b *blitter) draw(t *Target, fbWidth, fbHeight int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	gl.Disable(gl.BLEND)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if t == nil {
		return
	}
	gl.UseProgram(b.program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.textureID)
	gl.Uniform1i(b.texLoc, 0)
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(surface.FullScreenQuad)/2))
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (b *blitter) destroy() {
	gl.DeleteProgram(b.program)
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteVertexArrays(1, &b.vao)
}
