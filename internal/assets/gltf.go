package assets

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Reference schemes.
const (
	SchemeFile   = "file://"
	SchemeMemory = "mem://"
)

// IsMemoryRef reports whether ref points at an in-memory upload.
func IsMemoryRef(ref string) bool {
	return strings.HasPrefix(ref, SchemeMemory)
}

// Loader turns an asset reference into a mesh. Implementations must be safe
// for concurrent use.
type Loader interface {
	Load(ctx context.Context, ref string) (*Mesh, error)
}

// GLTFLoader loads glTF and GLB files from disk or from uploads.
type GLTFLoader struct {
	// Root resolves relative paths.
	Root string
	// Uploads resolves mem:// references. May be nil.
	Uploads *Uploads

	// Options
	Normalize        bool
	CalculateNormals bool
}

// NewGLTFLoader creates a loader with default options.
func NewGLTFLoader(root string, uploads *Uploads) *GLTFLoader {
	return &GLTFLoader{
		Root:             root,
		Uploads:          uploads,
		Normalize:        true,
		CalculateNormals: true,
	}
}

// Path resolves a file reference to a filesystem path. It returns false
// for memory references.
func (l *GLTFLoader) Path(ref string) (string, bool) {
	if IsMemoryRef(ref) {
		return "", false
	}
	p := strings.TrimPrefix(ref, SchemeFile)
	if !filepath.IsAbs(p) && l.Root != "" {
		p = filepath.Join(l.Root, p)
	}
	return filepath.Clean(p), true
}

// Load resolves ref and decodes it.
func (l *GLTFLoader) Load(ctx context.Context, ref string) (*Mesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ref == "" {
		return nil, fmt.Errorf("empty asset reference")
	}

	var (
		doc  *gltf.Document
		name string
		err  error
	)
	if IsMemoryRef(ref) {
		if l.Uploads == nil {
			return nil, fmt.Errorf("no upload store for %s", ref)
		}
		up, ok := l.Uploads.Get(ref)
		if !ok {
			return nil, fmt.Errorf("upload %s not found", ref)
		}
		name = up.Name
		doc, err = DecodeDocument(up.Data)
	} else {
		path, _ := l.Path(ref)
		name = filepath.Base(path)
		doc, err = gltf.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.FromDocument(doc, name)
}

// DecodeDocument parses an in-memory glTF (JSON or binary) document.
// External buffers are not resolved.
func DecodeDocument(data []byte) (*gltf.Document, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// FromDocument flattens the default scene of doc into one mesh, applying
// node transforms.
func (l *GLTFLoader) FromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)
	hasNormals := true

	visit := func(meshIdx int, world mgl32.Mat4) error {
		if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
			return fmt.Errorf("mesh index %d out of range", meshIdx)
		}
		m := doc.Meshes[meshIdx]
		withNormals, err := l.processMesh(doc, m, world, mesh)
		if err != nil {
			return fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
		hasNormals = hasNormals && withNormals
		return nil
	}

	roots := sceneRoots(doc)
	if roots == nil {
		// No scene graph: take every mesh as-is.
		for i := range doc.Meshes {
			if err := visit(i, mgl32.Ident4()); err != nil {
				return nil, err
			}
		}
	} else {
		seen := make(map[int]bool)
		var walk func(idx int, parent mgl32.Mat4) error
		walk = func(idx int, parent mgl32.Mat4) error {
			if idx < 0 || idx >= len(doc.Nodes) || seen[idx] {
				return nil
			}
			seen[idx] = true
			node := doc.Nodes[idx]
			world := parent.Mul4(nodeMatrix(node))
			if node.Mesh != nil {
				if err := visit(*node.Mesh, world); err != nil {
					return err
				}
			}
			for _, child := range node.Children {
				if err := walk(child, world); err != nil {
					return err
				}
			}
			return nil
		}
		for _, idx := range roots {
			if err := walk(idx, mgl32.Ident4()); err != nil {
				return nil, err
			}
		}
	}

	if len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("%s: no triangle geometry", name)
	}
	if l.CalculateNormals && !hasNormals {
		mesh.CalculateNormals()
	}
	if l.Normalize {
		mesh.Normalize()
	} else {
		mesh.CalculateBounds()
	}
	return mesh, nil
}

// sceneRoots returns the root nodes of the default scene, or nil when the
// document has no scenes.
func sceneRoots(doc *gltf.Document) []int {
	if len(doc.Scenes) == 0 {
		return nil
	}
	idx := 0
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		idx = *doc.Scene
	}
	return doc.Scenes[idx].Nodes
}

// nodeMatrix returns the local transform of a node.
func nodeMatrix(node *gltf.Node) mgl32.Mat4 {
	if m := node.MatrixOrDefault(); m != gltf.DefaultMatrix {
		var out mgl32.Mat4
		for i := range m {
			out[i] = float32(m[i])
		}
		return out
	}

	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()

	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// processMesh appends the triangle primitives of m to mesh. It reports
// whether every primitive carried normals.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, world mgl32.Mat4, mesh *Mesh) (bool, error) {
	normalMat := world.Mat3().Inv().Transpose()
	allNormals := true

	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		if posIdx < 0 || posIdx >= len(doc.Accessors) {
			return false, fmt.Errorf("position accessor %d out of range", posIdx)
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return false, fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok && normIdx >= 0 && normIdx < len(doc.Accessors) {
			normals, err = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
			if err != nil {
				return false, fmt.Errorf("read normals: %w", err)
			}
		}
		if len(normals) != len(positions) {
			normals = nil
			allNormals = false
		}

		base := uint32(len(mesh.Positions))
		for i, p := range positions {
			wp := world.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
			mesh.Positions = append(mesh.Positions, wp.Vec3())

			n := mgl32.Vec3{0, 1, 0}
			if normals != nil {
				n = normalMat.Mul3x1(mgl32.Vec3{normals[i][0], normals[i][1], normals[i][2]})
				if n.Len() > 0 {
					n = n.Normalize()
				}
			}
			mesh.Normals = append(mesh.Normals, n)
		}

		if prim.Indices != nil {
			if *prim.Indices < 0 || *prim.Indices >= len(doc.Accessors) {
				return false, fmt.Errorf("index accessor %d out of range", *prim.Indices)
			}
			indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return false, fmt.Errorf("read indices: %w", err)
			}
			for i := 0; i+2 < len(indices); i += 3 {
				if int(indices[i]) >= len(positions) || int(indices[i+1]) >= len(positions) || int(indices[i+2]) >= len(positions) {
					return false, fmt.Errorf("index out of range in %q", m.Name)
				}
				mesh.Indices = append(mesh.Indices, base+indices[i], base+indices[i+1], base+indices[i+2])
			}
		} else {
			// No indices: sequential triangles
			for i := 0; i+2 < len(positions); i += 3 {
				mesh.Indices = append(mesh.Indices, base+uint32(i), base+uint32(i+1), base+uint32(i+2))
			}
		}
	}

	return allNormals, nil
}
