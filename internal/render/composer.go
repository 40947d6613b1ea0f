package render

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/twinview/internal/assets"
	"github.com/Faultbox/twinview/internal/engine/debug"
	"github.com/Faultbox/twinview/internal/engine/lighting"
	"github.com/Faultbox/twinview/internal/engine/shader"
	"github.com/Faultbox/twinview/internal/logger"
	"github.com/Faultbox/twinview/internal/render/shaders"
	"github.com/Faultbox/twinview/internal/scene"
)

// Placeholder colors.
var (
	PendingColor = mgl32.Vec3{0.55, 0.55, 0.6}
	FailedColor  = mgl32.Vec3{0.9, 0.25, 0.2}
	BoundsColor  = mgl32.Vec3{0.3, 0.9, 0.4}
	OverlapColor = mgl32.Vec3{1, 0.35, 0.3}
)

// MeshSource provides geometry for model sources. *assets.Cache satisfies it.
type MeshSource interface {
	Lookup(ref string) (*assets.Mesh, error)
}

// View is the camera state of a frame.
type View struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Width      int
	Height     int
}

// SceneFrame is the per-frame input of Draw.
type SceneFrame struct {
	Records  []scene.ModelRecord
	Overlaps map[string]scene.OverlapInfo
	Hovered  string
	// Rotation returns the displayed rotation of a record, which lags the
	// target while easing. Nil uses the target.
	Rotation   func(id string, target mgl32.Vec3) mgl32.Vec3
	ShowBounds bool
}

// gpuMesh is an uploaded indexed triangle mesh.
type gpuMesh struct {
	source *assets.Mesh
	vao    uint32
	vbo    uint32
	ebo    uint32
	count  int32
}

func (m *gpuMesh) delete() {
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
}

// lineBuffer is a dynamic pos+color line list.
type lineBuffer struct {
	vao   uint32
	vbo   uint32
	count int32
}

// Composer draws the scene according to the material policy.
type Composer struct {
	styles Styles
	meshes MeshSource
	log    *zap.Logger

	model   *shader.Program
	outline *shader.Program
	lines   *shader.Program

	uploaded map[string]*gpuMesh
	cube     *gpuMesh

	grid      lineBuffer
	wire      lineBuffer // unit cube wireframe for pending models
	boundsBuf lineBuffer

	lightDir mgl32.Vec3
}

// ComposerConfig configures a Composer.
type ComposerConfig struct {
	Styles         Styles
	GroundExtent   float32
	GridDivisions  int
	LightAzimuth   float32
	LightElevation float32
}

// NewComposer compiles the programs and uploads static geometry.
// Must be called with a current GL context.
func NewComposer(cfg ComposerConfig, meshes MeshSource) (*Composer, error) {
	c := &Composer{
		styles:   cfg.Styles,
		meshes:   meshes,
		log:      logger.Named("render"),
		uploaded: make(map[string]*gpuMesh),
		lightDir: lighting.SunDirection(cfg.LightAzimuth, cfg.LightElevation),
	}

	var err error
	if c.model, err = shader.NewProgram(shaders.ModelVertexShader, shaders.ModelFragmentShader); err != nil {
		return nil, fmt.Errorf("model shader: %w", err)
	}
	if c.outline, err = shader.NewProgram(shaders.OutlineVertexShader, shaders.OutlineFragmentShader); err != nil {
		c.Close()
		return nil, fmt.Errorf("outline shader: %w", err)
	}
	if c.lines, err = shader.NewProgram(shaders.LineVertexShader, shaders.LineFragmentShader); err != nil {
		c.Close()
		return nil, fmt.Errorf("line shader: %w", err)
	}

	c.cube = uploadMesh(assets.CubeMesh())
	c.grid = newLineBuffer(debug.Flatten(debug.GroundGrid(cfg.GroundExtent, cfg.GridDivisions)))
	c.wire = newLineBuffer(debug.Flatten(debug.BoxWireframe(
		mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 1, 1})))
	c.boundsBuf = newLineBuffer(nil)

	return c, nil
}

// SetStyles replaces the material policy.
func (c *Composer) SetStyles(s Styles) {
	c.styles = s
}

// Styles returns the material policy.
func (c *Composer) Styles() Styles {
	return c.styles
}

// Close releases GL resources.
func (c *Composer) Close() {
	for ref, m := range c.uploaded {
		m.delete()
		delete(c.uploaded, ref)
	}
	if c.cube != nil {
		c.cube.delete()
		c.cube = nil
	}
	for _, lb := range []*lineBuffer{&c.grid, &c.wire, &c.boundsBuf} {
		if lb.vao != 0 {
			gl.DeleteVertexArrays(1, &lb.vao)
			gl.DeleteBuffers(1, &lb.vbo)
			lb.vao, lb.vbo = 0, 0
		}
	}
	for _, p := range []*shader.Program{c.model, c.outline, c.lines} {
		if p != nil {
			p.Delete()
		}
	}
}

// Release drops the GPU copy of a source, e.g. after an upload was removed.
func (c *Composer) Release(ref string) {
	if m, ok := c.uploaded[ref]; ok {
		m.delete()
		delete(c.uploaded, ref)
	}
}

// meshState is the availability of a record's geometry.
type meshState int

const (
	meshPending meshState = iota
	meshReady
	meshFailed
)

// resolve returns the mesh to draw for a source, uploading it on first use
// and again whenever the cache hands out a different mesh.
func (c *Composer) resolve(ref string) (*gpuMesh, meshState) {
	if ref == "" {
		return c.cube, meshReady
	}
	mesh, err := c.meshes.Lookup(ref)
	switch {
	case err == nil:
	case errors.Is(err, assets.ErrAssetLoadFailed):
		return c.cube, meshFailed
	default:
		return nil, meshPending
	}

	if m, ok := c.uploaded[ref]; ok {
		if m.source == mesh {
			return m, meshReady
		}
		m.delete()
	}
	m := uploadMesh(mesh)
	c.uploaded[ref] = m
	c.log.Debug("mesh uploaded",
		zap.String("ref", ref),
		zap.Int("triangles", mesh.TriangleCount()),
	)
	return m, meshReady
}

// Draw renders the ground, every draw item in plan order and optional bounds.
func (c *Composer) Draw(v View, f SceneFrame) {
	viewProj := v.Projection.Mul4(v.View)

	gl.Enable(gl.DEPTH_TEST)
	c.drawLines(c.grid, viewProj, 1)

	byID := make(map[string]scene.ModelRecord, len(f.Records))
	for _, rec := range f.Records {
		byID[rec.ID] = rec
	}

	for _, item := range c.styles.Plan(f.Records, f.Overlaps, f.Hovered) {
		rec := byID[item.ID]
		rot := rec.Rotation
		if f.Rotation != nil {
			rot = f.Rotation(rec.ID, rec.Rotation)
		}
		model := scene.Transform(rec.Position, rot, rec.Scale)
		mvp := viewProj.Mul4(model)

		mesh, state := c.resolve(rec.Source)
		if state == meshPending {
			c.drawPending(item.Pass, mvp)
			continue
		}
		pass := item.Pass
		if state == meshFailed && pass.Kind == PassSolid {
			pass.Color = FailedColor
		}

		applyState(passState(pass))
		switch pass.Kind {
		case PassOutline:
			c.outline.Use()
			c.outline.SetMat4("uMVP", mvp)
			c.outline.SetVec2("uViewport", float32(v.Width), float32(v.Height))
			c.outline.SetFloat("uThickness", pass.Thickness)
			c.outline.SetVec3("uColor", pass.Color)
			c.outline.SetFloat("uOpacity", pass.Opacity)
		default:
			c.model.Use()
			c.model.SetMat4("uMVP", mvp)
			c.model.SetMat3("uNormalMatrix", model.Mat3().Inv().Transpose())
			c.model.SetVec3("uColor", pass.Color)
			c.model.SetFloat("uOpacity", pass.Opacity)
			c.model.SetVec3("uLightDir", c.lightDir)
			c.model.SetFloat("uAmbient", lighting.Ambient)
			mode := int32(0)
			if pass.Kind == PassGhost {
				mode = 1
			}
			gl.Uniform1i(c.model.Uniform("uMode"), mode)
		}
		drawMesh(mesh)
	}
	applyState(passState(Pass{Kind: PassSolid, DepthWrite: true}))

	if f.ShowBounds {
		c.drawBounds(f, viewProj)
	}
	gl.UseProgram(0)
}

// drawPending draws a wire cube in place of a model that is still loading.
// Outline passes tint it so selection stays visible.
func (c *Composer) drawPending(p Pass, mvp mgl32.Mat4) {
	switch p.Kind {
	case PassSolid:
		c.drawLinesTinted(c.wire, mvp, PendingColor, 1)
	case PassOutline:
		c.drawLinesTinted(c.wire, mvp, p.Color, p.Opacity)
	}
}

func (c *Composer) drawBounds(f SceneFrame, viewProj mgl32.Mat4) {
	var verts []debug.LineVertex
	for _, rec := range f.Records {
		if !rec.Visible {
			continue
		}
		color := BoundsColor
		if f.Overlaps[rec.ID].Overlapping {
			color = OverlapColor
		}
		box := scene.BoxOf(rec)
		verts = append(verts, debug.BoxWireframe(box.Min, box.Max, color)...)
	}
	if len(verts) == 0 {
		return
	}
	data := debug.Flatten(verts)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.boundsBuf.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STREAM_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	c.boundsBuf.count = int32(len(verts))
	c.drawLines(c.boundsBuf, viewProj, 1)
}

func (c *Composer) drawLines(lb lineBuffer, mvp mgl32.Mat4, opacity float32) {
	if lb.count == 0 {
		return
	}
	applyState(passState(Pass{Kind: PassSolid, Opacity: opacity, Blend: BlendAlpha, Cull: CullNone, DepthWrite: true}))
	c.lines.Use()
	c.lines.SetMat4("uMVP", mvp)
	c.lines.SetFloat("uOpacity", opacity)
	gl.BindVertexArray(lb.vao)
	gl.DrawArrays(gl.LINES, 0, lb.count)
	gl.BindVertexArray(0)
}

// drawLinesTinted draws a line buffer with a constant color in place of
// its per-vertex colors.
func (c *Composer) drawLinesTinted(lb lineBuffer, mvp mgl32.Mat4, color mgl32.Vec3, opacity float32) {
	gl.BindVertexArray(lb.vao)
	gl.DisableVertexAttribArray(1)
	gl.VertexAttrib3f(1, color[0], color[1], color[2])
	c.drawLines(lb, mvp, opacity)
	gl.BindVertexArray(lb.vao)
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)
}

// glState is the fixed-function state of a pass.
type glState struct {
	blend     bool
	blendSrc  uint32
	blendDst  uint32
	cull      bool
	cullFace  uint32
	depthMask bool
	depthFunc uint32
}

// passState maps a pass onto GL state.
func passState(p Pass) glState {
	s := glState{
		depthMask: p.DepthWrite,
		depthFunc: gl.LEQUAL,
	}
	if p.XRay {
		s.depthFunc = gl.ALWAYS
	}

	switch p.Blend {
	case BlendAlpha:
		s.blend, s.blendSrc, s.blendDst = true, gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA
	case BlendAdditive:
		s.blend, s.blendSrc, s.blendDst = true, gl.ONE, gl.ONE
	}

	switch p.Cull {
	case CullBack:
		s.cull, s.cullFace = true, gl.BACK
	case CullFront:
		s.cull, s.cullFace = true, gl.FRONT
	}
	return s
}

func applyState(s glState) {
	if s.blend {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(s.blendSrc, s.blendDst)
	} else {
		gl.Disable(gl.BLEND)
	}
	if s.cull {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(s.cullFace)
	} else {
		gl.Disable(gl.CULL_FACE)
	}
	gl.DepthMask(s.depthMask)
	gl.DepthFunc(s.depthFunc)
}

// uploadMesh creates GL buffers for a mesh.
func uploadMesh(m *assets.Mesh) *gpuMesh {
	g := &gpuMesh{source: m, count: int32(len(m.Indices))}
	vertices := m.Interleaved()

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	if len(vertices) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)
	}

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	if len(m.Indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)
	}

	// Position (location 0) and normal (location 1), 6 floats per vertex.
	stride := int32(6 * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	return g
}

func drawMesh(m *gpuMesh) {
	if m == nil || m.count == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// newLineBuffer uploads [x y z r g b] vertices; nil creates an empty
// dynamic buffer.
func newLineBuffer(data []float32) lineBuffer {
	var lb lineBuffer
	gl.GenVertexArrays(1, &lb.vao)
	gl.BindVertexArray(lb.vao)
	gl.GenBuffers(1, &lb.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, lb.vbo)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
		lb.count = int32(len(data) / 6)
	}

	stride := int32(6 * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return lb
}
