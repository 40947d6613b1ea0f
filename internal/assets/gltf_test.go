package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// writeTriangleGLB writes a one-triangle GLB whose node is translated by
// (10, 0, 0) and scaled by 2.
func writeTriangleGLB(t *testing.T, dir string) string {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{
		Name: "triangle",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos},
		}},
	}}
	doc.Nodes = []*gltf.Node{{
		Name:        "root",
		Mesh:        gltf.Index(0),
		Translation: [3]float64{10, 0, 0},
		Scale:       [3]float64{2, 2, 2},
	}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	path := filepath.Join(dir, "triangle.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

func TestGLTFLoaderAppliesNodeTransform(t *testing.T) {
	dir := t.TempDir()
	writeTriangleGLB(t, dir)

	loader := NewGLTFLoader(dir, nil)
	loader.Normalize = false

	mesh, err := loader.Load(context.Background(), "triangle.glb")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if mesh.TriangleCount() != 1 {
		t.Fatalf("expected 1 triangle, got %d", mesh.TriangleCount())
	}
	if !mesh.BoundsMin.ApproxEqualThreshold(mgl32.Vec3{10, 0, 0}, 1e-5) {
		t.Errorf("expected min (10,0,0), got %v", mesh.BoundsMin)
	}
	if !mesh.BoundsMax.ApproxEqualThreshold(mgl32.Vec3{12, 2, 0}, 1e-5) {
		t.Errorf("expected max (12,2,0), got %v", mesh.BoundsMax)
	}

	// No normals in the file: computed from the faces.
	for i, n := range mesh.Normals {
		if !n.ApproxEqualThreshold(mgl32.Vec3{0, 0, 1}, 1e-5) {
			t.Errorf("vertex %d: expected +Z normal, got %v", i, n)
		}
	}
}

func TestGLTFLoaderNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := writeTriangleGLB(t, dir)

	loader := NewGLTFLoader("", nil)
	mesh, err := loader.Load(context.Background(), SchemeFile+path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	size := mesh.Size()
	if size.X() > 1+1e-5 || size.Y() > 1+1e-5 || size.Z() > 1+1e-5 {
		t.Errorf("expected mesh inside the unit cube, got size %v", size)
	}
	if !mesh.Center().ApproxEqualThreshold(mgl32.Vec3{}, 1e-5) {
		t.Errorf("expected centered mesh, got %v", mesh.Center())
	}
}

func TestGLTFLoaderFromUpload(t *testing.T) {
	dir := t.TempDir()
	path := writeTriangleGLB(t, dir)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	uploads := NewUploads(0)
	ref, err := uploads.Add("triangle.glb", data)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	loader := NewGLTFLoader("", uploads)
	mesh, err := loader.Load(context.Background(), ref)
	if err != nil {
		t.Fatalf("Load(%s): %v", ref, err)
	}
	if mesh.Name != "triangle.glb" {
		t.Errorf("expected upload name, got %q", mesh.Name)
	}
}

func TestGLTFLoaderErrors(t *testing.T) {
	loader := NewGLTFLoader(t.TempDir(), NewUploads(0))
	ctx := context.Background()

	if _, err := loader.Load(ctx, "missing.glb"); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := loader.Load(ctx, SchemeMemory+"upload/99/none.glb"); err == nil {
		t.Error("expected error for unknown upload")
	}
	if _, err := loader.Load(ctx, ""); err == nil {
		t.Error("expected error for empty reference")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := loader.Load(cancelled, "missing.glb"); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLoaderPath(t *testing.T) {
	loader := NewGLTFLoader("/data/models", nil)
	tests := []struct {
		ref    string
		want   string
		wantOK bool
	}{
		{"design.glb", "/data/models/design.glb", true},
		{"file:///tmp/scan.glb", "/tmp/scan.glb", true},
		{"/abs/x.gltf", "/abs/x.gltf", true},
		{"mem://upload/1/x.glb", "", false},
	}
	for _, tt := range tests {
		got, ok := loader.Path(tt.ref)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Path(%q) = %q, %v; want %q, %v", tt.ref, got, ok, tt.want, tt.wantOK)
		}
	}
}
