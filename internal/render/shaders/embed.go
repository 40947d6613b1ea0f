// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// ModelVertexShader transforms model vertices and normals.
//
//go:embed model.vert
var ModelVertexShader string

// ModelFragmentShader shades solid and ghost passes.
//
//go:embed model.frag
var ModelFragmentShader string

// OutlineVertexShader extrudes silhouettes in screen space.
//
//go:embed outline.vert
var OutlineVertexShader string

// OutlineFragmentShader fills outlines with a flat color.
//
//go:embed outline.frag
var OutlineFragmentShader string

// LineVertexShader draws colored line lists (grid, bounds, placeholders).
//
//go:embed line.vert
var LineVertexShader string

// LineFragmentShader outputs the interpolated line color.
//
//go:embed line.frag
var LineFragmentShader string
