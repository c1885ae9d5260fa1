package renderer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/richinsley/goshadereffects/surface"
	xlate "github.com/richinsley/goshadereffects/translator"
)

var glInitOnce sync.Once
var glInitErr error

// initGL loads the GL entry points. A context must be current.
func initGL() error {
	glInitOnce.Do(func() {
		glInitErr = gl.Init()
	})
	return glInitErr
}

type quadBuffers struct {
	vao, vbo uint32
}

// glDevice is a surface.Device on the current GL 4.1 context. Kernels are
// translated from ESSL 300 before compiling.
type glDevice struct {
	ctx      context.Context
	log      *zap.Logger
	programs map[surface.Program]*xlate.Shader
	quads    map[surface.Quad]quadBuffers
}

var _ surface.Device = (*glDevice)(nil)

func newGLDevice(ctx context.Context, log *zap.Logger) *glDevice {
	return &glDevice{
		ctx:      ctx,
		log:      log,
		programs: make(map[surface.Program]*xlate.Shader),
		quads:    make(map[surface.Quad]quadBuffers),
	}
}

func (d *glDevice) BuildProgram(vertexSource, fragmentSource string) (surface.Program, error) {
	vs, err := xlate.Translate(d.ctx, vertexSource, "vertex")
	if err != nil {
		return 0, &surface.BuildError{Stage: surface.StageVertex, Log: err.Error(), Err: err}
	}
	fs, err := xlate.Translate(d.ctx, fragmentSource, "fragment")
	if err != nil {
		return 0, &surface.BuildError{Stage: surface.StageFragment, Log: err.Error(), Err: err}
	}
	program, err := newProgram(vs.Code, fs.Code)
	if err != nil {
		return 0, err
	}
	p := surface.Program(program)
	d.programs[p] = fs
	d.log.Debug("program linked", zap.Uint32("program", program), zap.Int("uniforms", len(fs.Names)))
	return p, nil
}

func (d *glDevice) UniformLocation(p surface.Program, name string) surface.Location {
	fs, ok := d.programs[p]
	if !ok {
		return -1
	}
	return surface.Location(gl.GetUniformLocation(uint32(p), gl.Str(fs.Lookup(name)+"\x00")))
}

func (d *glDevice) UploadQuad(vertices []float32) (surface.Quad, error) {
	if len(vertices) == 0 {
		return 0, fmt.Errorf("empty vertex data")
	}
	var q quadBuffers
	gl.GenVertexArrays(1, &q.vao)
	gl.GenBuffers(1, &q.vbo)
	gl.BindVertexArray(q.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	if e := gl.GetError(); e != gl.NO_ERROR {
		gl.DeleteBuffers(1, &q.vbo)
		gl.DeleteVertexArrays(1, &q.vao)
		return 0, fmt.Errorf("gl error 0x%x uploading quad", e)
	}
	h := surface.Quad(q.vao)
	d.quads[h] = q
	return h, nil
}

func (d *glDevice) UseProgram(p surface.Program) {
	gl.UseProgram(uint32(p))
}

func (d *glDevice) SetUniform(loc surface.Location, kind surface.Kind, v surface.Value) {
	l := int32(loc)
	switch kind {
	case surface.Float:
		gl.Uniform1f(l, v[0])
	case surface.Vec2:
		gl.Uniform2f(l, v[0], v[1])
	case surface.Vec3, surface.Color:
		gl.Uniform3f(l, v[0], v[1], v[2])
	}
}

func (d *glDevice) SetBlend(enabled bool) {
	if enabled {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		return
	}
	gl.Disable(gl.BLEND)
}

func (d *glDevice) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (d *glDevice) Clear() {
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *glDevice) Draw(q surface.Quad, vertexCount int) {
	gl.BindVertexArray(uint32(q))
	gl.DrawArrays(gl.TRIANGLES, 0, int32(vertexCount))
	gl.BindVertexArray(0)
}

func (d *glDevice) DeleteProgram(p surface.Program) {
	gl.DeleteProgram(uint32(p))
	delete(d.programs, p)
}

func (d *glDevice) DeleteQuad(q surface.Quad) {
	b, ok := d.quads[q]
	if !ok {
		return
	}
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteVertexArrays(1, &b.vao)
	delete(d.quads, q)
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertexShader)
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, &surface.BuildError{Stage: surface.StageLink, Log: strings.TrimRight(log, "\x00")}
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		stage := surface.StageFragment
		if shaderType == gl.VERTEX_SHADER {
			stage = surface.StageVertex
		}
		return 0, &surface.BuildError{Stage: stage, Log: strings.TrimRight(logText, "\x00")}
	}
	return shader, nil
}
