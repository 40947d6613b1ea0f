// Package ui2d provides a small immediate-mode 2D UI drawn with OpenGL.
package ui2d

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/twinview/internal/engine/shader"
)

const (
	solidStride = 7 // pos3 + color4
	textStride  = 9 // pos3 + uv2 + color4
)

// Renderer batches solid and textured quads and flushes them once per frame.
type Renderer struct {
	screenWidth  int
	screenHeight int

	solidShader uint32
	textShader  uint32

	solidVAO uint32
	solidVBO uint32
	textVAO  uint32
	textVBO  uint32

	solidVertices []float32
	textVertices  []float32

	font *Font
}

// New creates a new 2D UI renderer.
func New(width, height int) (*Renderer, error) {
	r := &Renderer{
		screenWidth:   width,
		screenHeight:  height,
		solidVertices: make([]float32, 0, 4096),
		textVertices:  make([]float32, 0, 4096),
	}

	var err error
	r.solidShader, err = shader.CompileProgram(solidVertexShader, solidFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("create solid shader: %w", err)
	}

	r.textShader, err = shader.CompileProgram(textVertexShader, textFragmentShader)
	if err != nil {
		gl.DeleteProgram(r.solidShader)
		return nil, fmt.Errorf("create text shader: %w", err)
	}

	r.solidVAO, r.solidVBO = newQuadBuffers(solidStride, []int32{3, 4})
	r.textVAO, r.textVBO = newQuadBuffers(textStride, []int32{3, 2, 4})
	r.font = NewFont()

	return r, nil
}

// newQuadBuffers creates a VAO/VBO pair with tightly packed float attributes.
func newQuadBuffers(stride int, sizes []int32) (uint32, uint32) {
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)

	offset := uintptr(0)
	for i, size := range sizes {
		gl.VertexAttribPointerWithOffset(uint32(i), size, gl.FLOAT, false, int32(stride*4), offset)
		gl.EnableVertexAttribArray(uint32(i))
		offset += uintptr(size) * 4
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return vao, vbo
}

// Resize updates the screen dimensions.
func (r *Renderer) Resize(width, height int) {
	r.screenWidth = width
	r.screenHeight = height
}

// GetScreenSize returns the current screen dimensions.
func (r *Renderer) GetScreenSize() (int, int) {
	return r.screenWidth, r.screenHeight
}

// Begin starts a new UI frame.
func (r *Renderer) Begin() {
	r.solidVertices = r.solidVertices[:0]
	r.textVertices = r.textVertices[:0]
}

// End flushes all queued quads on top of the current framebuffer.
func (r *Renderer) End() {
	var prevBlend, prevDepth, prevCull int32
	gl.GetIntegerv(gl.BLEND, &prevBlend)
	gl.GetIntegerv(gl.DEPTH_TEST, &prevDepth)
	gl.GetIntegerv(gl.CULL_FACE, &prevCull)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	proj := mgl32.Ortho(0, float32(r.screenWidth), float32(r.screenHeight), 0, -1, 1)

	if len(r.solidVertices) > 0 {
		gl.UseProgram(r.solidShader)
		gl.UniformMatrix4fv(shader.GetUniform(r.solidShader, "uProjection"), 1, false, &proj[0])
		r.flush(r.solidVAO, r.solidVBO, r.solidVertices, solidStride)
	}

	if len(r.textVertices) > 0 && r.font != nil {
		gl.UseProgram(r.textShader)
		gl.UniformMatrix4fv(shader.GetUniform(r.textShader, "uProjection"), 1, false, &proj[0])
		gl.Uniform1i(shader.GetUniform(r.textShader, "uTexture"), 0)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, r.font.TextureID())
		r.flush(r.textVAO, r.textVBO, r.textVertices, textStride)
	}

	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)

	if prevBlend == gl.FALSE {
		gl.Disable(gl.BLEND)
	}
	if prevDepth == gl.TRUE {
		gl.Enable(gl.DEPTH_TEST)
	}
	if prevCull == gl.TRUE {
		gl.Enable(gl.CULL_FACE)
	}
}

func (r *Renderer) flush(vao, vbo uint32, vertices []float32, stride int) {
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(vertices)/stride))
}

// Close releases renderer resources.
func (r *Renderer) Close() {
	if r.font != nil {
		r.font.Close()
	}
	for _, vao := range []*uint32{&r.solidVAO, &r.textVAO} {
		if *vao != 0 {
			gl.DeleteVertexArrays(1, vao)
		}
	}
	for _, vbo := range []*uint32{&r.solidVBO, &r.textVBO} {
		if *vbo != 0 {
			gl.DeleteBuffers(1, vbo)
		}
	}
	if r.solidShader != 0 {
		gl.DeleteProgram(r.solidShader)
	}
	if r.textShader != 0 {
		gl.DeleteProgram(r.textShader)
	}
}

// DrawRect draws a filled rectangle.
func (r *Renderer) DrawRect(x, y, width, height float32, color Color) {
	r.solidVertices = appendQuad(r.solidVertices, x, y, width, height, color)
}

// DrawRectOutline draws a rectangle outline.
func (r *Renderer) DrawRectOutline(x, y, width, height, thickness float32, color Color) {
	r.DrawRect(x, y, width, thickness, color)
	r.DrawRect(x, y+height-thickness, width, thickness, color)
	r.DrawRect(x, y+thickness, thickness, height-thickness*2, color)
	r.DrawRect(x+width-thickness, y+thickness, thickness, height-thickness*2, color)
}

// DrawPanel draws a panel with border.
func (r *Renderer) DrawPanel(x, y, width, height float32, bg, border Color) {
	r.DrawRect(x, y, width, height, bg)
	r.DrawRectOutline(x, y, width, height, 1, border)
}

// DrawText draws text with its top-left corner at x, y.
func (r *Renderer) DrawText(x, y float32, text string, scale float32, color Color) {
	if r.font == nil {
		return
	}
	gw, gh := r.font.GlyphSize()
	charW := float32(gw) * scale
	charH := float32(gh) * scale

	curX := x
	for _, char := range text {
		if char == '\n' {
			curX = x
			y += charH
			continue
		}
		u0, v0, u1, v1 := r.font.GetGlyphUV(char)
		r.textVertices = append(r.textVertices,
			curX, y, 0, u0, v0, color.R, color.G, color.B, color.A,
			curX+charW, y, 0, u1, v0, color.R, color.G, color.B, color.A,
			curX+charW, y+charH, 0, u1, v1, color.R, color.G, color.B, color.A,
			curX, y, 0, u0, v0, color.R, color.G, color.B, color.A,
			curX+charW, y+charH, 0, u1, v1, color.R, color.G, color.B, color.A,
			curX, y+charH, 0, u0, v1, color.R, color.G, color.B, color.A,
		)
		curX += charW
	}
}

// MeasureText returns the width and height of rendered text.
func (r *Renderer) MeasureText(text string, scale float32) (float32, float32) {
	if r.font == nil {
		return 0, 0
	}
	return r.font.MeasureText(text, scale)
}

// appendQuad appends two triangles in pos3+color4 layout.
func appendQuad(dst []float32, x, y, w, h float32, c Color) []float32 {
	return append(dst,
		x, y, 0, c.R, c.G, c.B, c.A,
		x+w, y, 0, c.R, c.G, c.B, c.A,
		x+w, y+h, 0, c.R, c.G, c.B, c.A,
		x, y, 0, c.R, c.G, c.B, c.A,
		x+w, y+h, 0, c.R, c.G, c.B, c.A,
		x, y+h, 0, c.R, c.G, c.B, c.A,
	)
}

const solidVertexShader = `#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec4 aColor;
uniform mat4 uProjection;
out vec4 vColor;
void main() {
	gl_Position = uProjection * vec4(aPos, 1.0);
	vColor = aColor;
}`

const solidFragmentShader = `#version 410 core
in vec4 vColor;
out vec4 FragColor;
void main() {
	FragColor = vColor;
}`

const textVertexShader = `#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aTexCoord;
layout (location = 2) in vec4 aColor;
uniform mat4 uProjection;
out vec2 vTexCoord;
out vec4 vColor;
void main() {
	gl_Position = uProjection * vec4(aPos, 1.0);
	vTexCoord = aTexCoord;
	vColor = aColor;
}`

const textFragmentShader = `#version 410 core
uniform sampler2D uTexture;
in vec2 vTexCoord;
in vec4 vColor;
out vec4 FragColor;
void main() {
	float alpha = texture(uTexture, vTexCoord).a;
	FragColor = vec4(vColor.rgb, vColor.a * alpha);
}`
