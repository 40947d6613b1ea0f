package ui2d

import "fmt"

// Layout metrics in pixels.
const (
	textScale   = float32(1)
	titleBarH   = float32(20)
	padding     = float32(8)
	spacing     = float32(4)
	defaultRowH = float32(22)
	checkSize   = float32(14)
)

// Context is the main UI context that manages rendering and input.
type Context struct {
	renderer *Renderer
	input    *InputState

	hotWidget    string
	activeWidget string

	windows map[string]*WindowState
	order   []string

	currentWindow *WindowState

	cursorX float32
	cursorY float32
	rowH    float32
}

// WindowState holds state for a UI window.
type WindowState struct {
	ID     string
	X, Y   float32
	W, H   float32
	Open   bool
	Moving bool
	moved  bool
}

// Rect returns the window bounds.
func (w *WindowState) Rect() Rect {
	return Rect{w.X, w.Y, w.W, w.H}
}

// NewContext creates a UI context with its renderer.
func NewContext(width, height int) (*Context, error) {
	r, err := New(width, height)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	return &Context{
		renderer: r,
		input:    &InputState{},
		windows:  make(map[string]*WindowState),
	}, nil
}

// Close releases resources.
func (c *Context) Close() {
	if c.renderer != nil {
		c.renderer.Close()
	}
}

// Renderer returns the underlying renderer.
func (c *Context) Renderer() *Renderer {
	return c.renderer
}

// Resize updates the screen size.
func (c *Context) Resize(width, height int) {
	c.renderer.Resize(width, height)
}

// Input returns the input state for modification.
func (c *Context) Input() *InputState {
	return c.input
}

// Hit reports whether a point lies over any open window.
func (c *Context) Hit(x, y float32) bool {
	for _, id := range c.order {
		if ws := c.windows[id]; ws.Open && ws.Rect().Contains(x, y) {
			return true
		}
	}
	return false
}

// Capturing reports whether the UI owns the pointer, e.g. while a window is dragged.
func (c *Context) Capturing() bool {
	return c.activeWidget != ""
}

// Begin starts a new UI frame.
func (c *Context) Begin() {
	c.input.Update()
	c.hotWidget = ""
	c.renderer.Begin()
}

// End finishes the UI frame.
func (c *Context) End() {
	c.renderer.End()
	c.input.EndFrame()
}

// BeginWindow starts a window. The position is only a default; once the
// user drags the title bar the window keeps its own position.
// Returns false if the window is closed.
func (c *Context) BeginWindow(id string, x, y, w, h float32, title string) bool {
	ws, ok := c.windows[id]
	if !ok {
		ws = &WindowState{ID: id, X: x, Y: y, W: w, H: h, Open: true}
		c.windows[id] = ws
		c.order = append(c.order, id)
	} else if !ws.moved {
		ws.X, ws.Y = x, y
	}
	ws.W, ws.H = w, h

	if !ws.Open {
		return false
	}
	c.currentWindow = ws

	titleID := id + "_titlebar"
	titleRect := Rect{ws.X, ws.Y, ws.W, titleBarH}
	if c.input.MouseLeftPressed && titleRect.Contains(c.input.MouseX, c.input.MouseY) {
		ws.Moving = true
		c.activeWidget = titleID
	}
	if ws.Moving && c.input.MouseLeftDown {
		ws.X += c.input.MouseDeltaX
		ws.Y += c.input.MouseDeltaY
		ws.moved = true
	}
	if c.input.MouseLeftReleased {
		ws.Moving = false
		if c.activeWidget == titleID {
			c.activeWidget = ""
		}
	}

	c.renderer.DrawPanel(ws.X, ws.Y, ws.W, ws.H, ColorPanelBg, ColorPanelBorder)
	c.renderer.DrawRect(ws.X+1, ws.Y+1, ws.W-2, titleBarH-1, ColorButtonNormal)
	_, textH := c.renderer.MeasureText(title, textScale)
	c.renderer.DrawText(ws.X+padding, ws.Y+(titleBarH-textH)/2, title, textScale, ColorText)

	c.cursorX = ws.X + padding
	c.cursorY = ws.Y + titleBarH + padding
	c.rowH = 0

	return true
}

// EndWindow ends the current window.
func (c *Context) EndWindow() {
	c.currentWindow = nil
}

// Row starts a new row with the given height; 0 picks the default.
func (c *Context) Row(height float32) {
	if c.currentWindow == nil {
		return
	}
	if height == 0 {
		height = defaultRowH
	}
	c.cursorX = c.currentWindow.X + padding
	c.cursorY += c.rowH + spacing
	c.rowH = height
}

func (c *Context) rowHeight() float32 {
	if c.rowH == 0 {
		return defaultRowH
	}
	return c.rowH
}

func (c *Context) fullWidth() float32 {
	return c.currentWindow.W - 2*padding
}

// Button draws a button and returns true on the frame it is pressed.
// A zero width fills the rest of the row.
func (c *Context) Button(id string, width float32, label string) bool {
	if c.currentWindow == nil {
		return false
	}
	x, y, h := c.cursorX, c.cursorY, c.rowHeight()
	if width == 0 {
		width = c.currentWindow.X + c.currentWindow.W - padding - x
	}

	fullID := c.currentWindow.ID + "_" + id
	hovered := Rect{x, y, width, h}.Contains(c.input.MouseX, c.input.MouseY)
	clicked := false

	if hovered {
		c.hotWidget = fullID
		if c.input.MouseLeftPressed {
			c.activeWidget = fullID
			clicked = true
		}
	}
	if c.activeWidget == fullID && c.input.MouseLeftReleased {
		c.activeWidget = ""
	}

	color := ColorButtonNormal
	if c.activeWidget == fullID {
		color = ColorButtonActive
	} else if hovered {
		color = ColorButtonHover
	}
	c.renderer.DrawRect(x, y, width, h, color)
	c.renderer.DrawRectOutline(x, y, width, h, 1, ColorPanelBorder)
	c.centerText(x, y, width, h, label, ColorText)

	c.cursorX += width + spacing
	return clicked
}

// ButtonDisabled draws a button that never reacts.
func (c *Context) ButtonDisabled(id string, width float32, label string) {
	if c.currentWindow == nil {
		return
	}
	x, y, h := c.cursorX, c.cursorY, c.rowHeight()
	if width == 0 {
		width = c.currentWindow.X + c.currentWindow.W - padding - x
	}
	c.renderer.DrawRect(x, y, width, h, ColorButtonNormal.Darken(0.3))
	c.renderer.DrawRectOutline(x, y, width, h, 1, ColorPanelBorder.Darken(0.3))
	c.centerText(x, y, width, h, label, ColorTextDim)
	c.cursorX += width + spacing
}

func (c *Context) centerText(x, y, w, h float32, text string, color Color) {
	textW, textH := c.renderer.MeasureText(text, textScale)
	c.renderer.DrawText(x+(w-textW)/2, y+(h-textH)/2, text, textScale, color)
}

// Label draws a text label.
func (c *Context) Label(text string) {
	c.LabelColored(text, ColorText)
}

// LabelColored draws a label vertically centered in the row.
func (c *Context) LabelColored(text string, color Color) {
	if c.currentWindow == nil {
		return
	}
	w, h := c.renderer.MeasureText(text, textScale)
	c.renderer.DrawText(c.cursorX, c.cursorY+(c.rowHeight()-h)/2, text, textScale, color)
	c.cursorX += w + spacing
}

// Swatch draws a small filled square, e.g. a role color key.
func (c *Context) Swatch(color Color) {
	if c.currentWindow == nil {
		return
	}
	y := c.cursorY + (c.rowHeight()-checkSize)/2
	c.renderer.DrawRect(c.cursorX, y, checkSize, checkSize, color)
	c.renderer.DrawRectOutline(c.cursorX, y, checkSize, checkSize, 1, ColorPanelBorder)
	c.cursorX += checkSize + spacing
}

// Checkbox draws a checkbox and returns the possibly toggled value.
func (c *Context) Checkbox(id string, label string, checked bool) bool {
	if c.currentWindow == nil {
		return checked
	}
	x := c.cursorX
	y := c.cursorY + (c.rowHeight()-checkSize)/2
	labelW, textH := c.renderer.MeasureText(label, textScale)

	fullID := c.currentWindow.ID + "_" + id
	hovered := Rect{x, y, checkSize + padding + labelW, checkSize}.Contains(c.input.MouseX, c.input.MouseY)

	if hovered && c.input.MouseLeftPressed {
		c.activeWidget = fullID
	}
	if c.activeWidget == fullID && c.input.MouseLeftReleased {
		if hovered {
			checked = !checked
		}
		c.activeWidget = ""
	}

	bg := ColorInputBg
	if hovered {
		bg = ColorButtonHover
	}
	c.renderer.DrawRect(x, y, checkSize, checkSize, bg)
	c.renderer.DrawRectOutline(x, y, checkSize, checkSize, 1, ColorPanelBorder)
	if checked {
		const inset = 3
		c.renderer.DrawRect(x+inset, y+inset, checkSize-2*inset, checkSize-2*inset, ColorHighlight)
	}
	c.renderer.DrawText(x+checkSize+padding, y+(checkSize-textH)/2, label, textScale, ColorText)

	c.cursorX += checkSize + padding + labelW + padding
	return checked
}

// Spacer adds vertical space.
func (c *Context) Spacer(height float32) {
	c.cursorY += height
}

// Separator draws a horizontal line below the current row.
func (c *Context) Separator() {
	if c.currentWindow == nil {
		return
	}
	c.cursorY += c.rowH + spacing
	c.rowH = 0
	x := c.currentWindow.X + padding
	c.renderer.DrawRect(x, c.cursorY, c.fullWidth(), 1, ColorPanelBorder)
	c.cursorY += spacing
	c.cursorX = x
}

// GetScreenSize returns the current screen dimensions.
func (c *Context) GetScreenSize() (float32, float32) {
	w, h := c.renderer.GetScreenSize()
	return float32(w), float32(h)
}

// Rect is a simple rectangle struct.
type Rect struct {
	X, Y, W, H float32
}

// Contains checks if a point is inside the rectangle.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}
