package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var glbHeader = []byte("glTF\x02\x00\x00\x00\x14\x00\x00\x00")

func TestDetect(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr bool
	}{
		{"glb", glbHeader, "glb", false},
		{"gltf json", []byte(`{"asset": {"version": "2.0"}}`), "gltf", false},
		{"json with bom", []byte("\xef\xbb\xbf  {\"asset\":{}}"), "gltf", false},
		{"plain json", []byte(`{"name": "x"}`), "", true},
		{"png", png, "png", true},
		{"text", []byte("hello"), "", true},
		{"empty", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := Detect(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Detect error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.want != "" && kind.Extension != tt.want {
				t.Errorf("expected %s, got %s", tt.want, kind.Extension)
			}
		})
	}
}

func TestDetectNamesRejectedType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	_, err := Detect(png)
	if !errors.Is(err, ErrUnsupportedUpload) {
		t.Fatalf("expected ErrUnsupportedUpload, got %v", err)
	}
	if !strings.Contains(err.Error(), "image/png") {
		t.Errorf("expected MIME in error, got %v", err)
	}
}

func TestUploadsAdd(t *testing.T) {
	u := NewUploads(0)

	ref1, err := u.Add("my model.glb", glbHeader)
	if err != nil {
		t.Fatal(err)
	}
	ref2, err := u.Add("my model.glb", glbHeader)
	if err != nil {
		t.Fatal(err)
	}

	if ref1 == ref2 {
		t.Error("expected distinct references for repeated uploads")
	}
	if !IsMemoryRef(ref1) {
		t.Errorf("expected mem:// reference, got %s", ref1)
	}
	if strings.Contains(strings.TrimPrefix(ref1, SchemeMemory), " ") {
		t.Errorf("expected sanitized name, got %s", ref1)
	}

	up, ok := u.Get(ref1)
	if !ok || up.Name != "my model.glb" || up.Type != TypeGLB {
		t.Errorf("unexpected upload %+v", up)
	}

	u.Remove(ref1)
	if _, ok := u.Get(ref1); ok {
		t.Error("expected upload removed")
	}
	if u.Len() != 1 {
		t.Errorf("expected 1 upload left, got %d", u.Len())
	}
}

func TestUploadsLimits(t *testing.T) {
	u := NewUploads(8)
	if _, err := u.Add("big.glb", glbHeader); !errors.Is(err, ErrUploadTooLarge) {
		t.Errorf("expected ErrUploadTooLarge, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "big.glb")
	if err := os.WriteFile(path, glbHeader, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := u.AddFile(path); !errors.Is(err, ErrUploadTooLarge) {
		t.Errorf("expected ErrUploadTooLarge from AddFile, got %v", err)
	}
}

func TestUploadsAddFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.glb")
	if err := os.WriteFile(path, glbHeader, 0o644); err != nil {
		t.Fatal(err)
	}

	u := NewUploads(1 << 20)
	ref, err := u.AddFile(path)
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if !strings.HasSuffix(ref, "/scan.glb") {
		t.Errorf("expected ref to end with file name, got %s", ref)
	}

	if _, err := u.AddFile(filepath.Join(dir, "missing.glb")); err == nil {
		t.Error("expected error for missing file")
	}
}
