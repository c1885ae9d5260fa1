package glfwcontext

import (
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/richinsley/goshadereffects/graphics"
)

// Options describe the window to create.
type Options struct {
	Title        string
	Width        int
	Height       int
	Visible      bool
	// SwapInterval is set on visible windows: 1 waits for vertical sync in
	// EndFrame, 0 returns at once.
	SwapInterval int
}

// Context is a GLFW window and its GL context.
type Context struct {
	window *glfw.Window
	events graphics.Events
	// A map to store functions to be called on key presses.
	keyCallbacks map[glfw.Key]func()
}

var _ graphics.Context = (*Context)(nil)

// New creates a GLFW window with a 4.1 core context.
func New(opts Options, events graphics.Events) (*Context, error) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if opts.Visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
		glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	title := opts.Title
	if title == "" {
		title = "goshadereffects"
	}
	win, err := glfw.CreateWindow(opts.Width, opts.Height, title, nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{
		window:       win,
		events:       events,
		keyCallbacks: make(map[glfw.Key]func()),
	}
	if opts.Visible {
		c.SetSwapInterval(opts.SwapInterval)
	}

	win.SetKeyCallback(c.glfwKeyCallback)
	win.SetSizeCallback(func(_ *glfw.Window, w, h int) {
		if c.events.Resize != nil {
			c.events.Resize(w, h)
		}
	})
	// a content-scale change moves the framebuffer without a logical resize
	win.SetContentScaleCallback(func(_ *glfw.Window, _, _ float32) {
		if c.events.Resize != nil {
			c.events.Resize(c.window.GetSize())
		}
	})
	win.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		if c.events.Visibility != nil {
			c.events.Visibility(!iconified)
		}
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, dy float64) {
		if c.events.Scroll != nil {
			c.events.Scroll(dy)
		}
	})

	return c, nil
}

// RegisterKeyCallback allows the main application to register a function to be
// called when a specific key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	if key == glfw.KeyEscape {
		w.SetShouldClose(true)
	}
	if callback, ok := c.keyCallbacks[key]; ok {
		callback()
	}
}

// SetSwapInterval makes the context current and sets how many refreshes
// EndFrame waits for.
func (c *Context) SetSwapInterval(interval int) {
	c.window.MakeContextCurrent()
	glfw.SwapInterval(interval)
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) SetShouldClose(v bool) {
	c.window.SetShouldClose(v)
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
}

func (c *Context) GetWindowSize() (int, int) {
	return c.window.GetSize()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

// PixelRatio prefers the framebuffer to window ratio and falls back to the
// monitor content scale where both sizes agree.
func (c *Context) PixelRatio() float64 {
	fw, _ := c.window.GetFramebufferSize()
	ww, _ := c.window.GetSize()
	if ww > 0 && fw != ww {
		return float64(fw) / float64(ww)
	}
	sx, _ := c.window.GetContentScale()
	if sx > 0 {
		return float64(sx)
	}
	return 1
}

func (c *Context) Iconified() bool {
	return c.window.GetAttrib(glfw.Iconified) == glfw.True
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// PollEvents dispatches pending window events to every context.
func PollEvents() {
	glfw.PollEvents()
}

// Now is the GLFW timer in seconds.
func Now() float64 {
	return glfw.GetTime()
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics(log *zap.Logger) error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Debug("GLFW initialized")
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics(log *zap.Logger) {
	glfw.Terminate()
	log.Debug("GLFW terminated")
}
