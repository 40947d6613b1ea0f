package ui2d

import (
	"image"
	"image/draw"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Printable ASCII range baked into the atlas.
const (
	firstGlyph   = 32
	lastGlyph    = 126
	atlasColumns = 16
)

// Atlas is a CPU-side glyph sheet for a fixed-width face.
type Atlas struct {
	Image       *image.Alpha
	GlyphWidth  int
	GlyphHeight int
	Columns     int
}

// BuildAtlas rasterizes the printable ASCII range of basicfont's 7x13 face.
func BuildAtlas() *Atlas {
	face := basicfont.Face7x13
	gw, gh := face.Advance, face.Height
	count := lastGlyph - firstGlyph + 1
	rows := (count + atlasColumns - 1) / atlasColumns

	img := image.NewAlpha(image.Rect(0, 0, atlasColumns*gw, rows*gh))
	d := font.Drawer{Dst: img, Src: image.Opaque, Face: face}
	for c := firstGlyph; c <= lastGlyph; c++ {
		i := c - firstGlyph
		x := (i % atlasColumns) * gw
		y := (i / atlasColumns) * gh
		d.Dot = fixed.P(x, y+face.Ascent)
		d.DrawString(string(rune(c)))
	}

	return &Atlas{Image: img, GlyphWidth: gw, GlyphHeight: gh, Columns: atlasColumns}
}

// Cell returns the pixel origin of a glyph; characters outside the atlas map to '?'.
func (a *Atlas) Cell(r rune) (int, int) {
	if r < firstGlyph || r > lastGlyph {
		r = '?'
	}
	i := int(r - firstGlyph)
	return (i % a.Columns) * a.GlyphWidth, (i / a.Columns) * a.GlyphHeight
}

// Font is an atlas uploaded to a GL texture.
type Font struct {
	atlas   *Atlas
	texture uint32
}

// NewFont builds the atlas and uploads it as a single-channel texture.
func NewFont() *Font {
	atlas := BuildAtlas()

	// Expand alpha into RGBA so the text shader can sample .a
	b := atlas.Image.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, image.White, image.Point{}, draw.Src)
	for i, a := range atlas.Image.Pix {
		rgba.Pix[i*4+3] = a
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&rgba.Pix[0]))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return &Font{atlas: atlas, texture: tex}
}

// TextureID returns the GL texture.
func (f *Font) TextureID() uint32 {
	return f.texture
}

// GlyphSize returns the cell size in pixels.
func (f *Font) GlyphSize() (int, int) {
	return f.atlas.GlyphWidth, f.atlas.GlyphHeight
}

// GetGlyphUV returns texture coordinates for a character.
func (f *Font) GetGlyphUV(r rune) (u0, v0, u1, v1 float32) {
	return f.atlas.UV(r)
}

// UV returns normalized texture coordinates for a character.
func (a *Atlas) UV(r rune) (u0, v0, u1, v1 float32) {
	x, y := a.Cell(r)
	w := float32(a.Image.Bounds().Dx())
	h := float32(a.Image.Bounds().Dy())
	u0 = float32(x) / w
	v0 = float32(y) / h
	u1 = float32(x+a.GlyphWidth) / w
	v1 = float32(y+a.GlyphHeight) / h
	return
}

// MeasureText returns the size of a single- or multi-line string.
func (f *Font) MeasureText(text string, scale float32) (float32, float32) {
	return f.atlas.Measure(text, scale)
}

// Measure returns the size of text drawn at scale.
func (a *Atlas) Measure(text string, scale float32) (float32, float32) {
	lines, longest, cur := 1, 0, 0
	for _, r := range text {
		if r == '\n' {
			lines++
			cur = 0
			continue
		}
		cur++
		if cur > longest {
			longest = cur
		}
	}
	return float32(longest*a.GlyphWidth) * scale, float32(lines*a.GlyphHeight) * scale
}

// Close deletes the texture.
func (f *Font) Close() {
	if f.texture != 0 {
		gl.DeleteTextures(1, &f.texture)
		f.texture = 0
	}
}
