package assets

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

// Upload errors.
var (
	ErrUnsupportedUpload = errors.New("unsupported upload type")
	ErrUploadTooLarge    = errors.New("upload too large")
)

// Detected model formats.
var (
	TypeGLB  = filetype.NewType("glb", "model/gltf-binary")
	TypeGLTF = filetype.NewType("gltf", "model/gltf+json")
)

func init() {
	filetype.AddMatcher(TypeGLB, func(buf []byte) bool {
		return len(buf) >= 12 && bytes.Equal(buf[:4], []byte("glTF"))
	})
	filetype.AddMatcher(TypeGLTF, isGLTFJSON)
}

// isGLTFJSON accepts a JSON object that declares a glTF asset block.
func isGLTFJSON(buf []byte) bool {
	trimmed := bytes.TrimLeft(buf, " \t\r\n\xef\xbb\xbf")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	head := trimmed
	if len(head) > 4096 {
		head = head[:4096]
	}
	return bytes.Contains(head, []byte(`"asset"`))
}

// Upload is model data supplied by the user at runtime.
type Upload struct {
	Name string
	Type types.Type
	Data []byte
}

// Uploads keeps uploaded model data in memory under mem:// references.
type Uploads struct {
	maxBytes int64

	mu    sync.RWMutex
	next  int
	files map[string]Upload
}

// NewUploads creates an upload store. maxBytes <= 0 means no limit.
func NewUploads(maxBytes int64) *Uploads {
	return &Uploads{
		maxBytes: maxBytes,
		files:    make(map[string]Upload),
	}
}

// Detect sniffs the model format of data.
func Detect(data []byte) (types.Type, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return filetype.Unknown, fmt.Errorf("detect type: %w", err)
	}
	switch kind {
	case TypeGLB, TypeGLTF:
		return kind, nil
	case filetype.Unknown:
		return kind, ErrUnsupportedUpload
	}
	return kind, fmt.Errorf("%w: %s", ErrUnsupportedUpload, kind.MIME.Value)
}

// Add stores data and returns its reference.
func (u *Uploads) Add(name string, data []byte) (string, error) {
	if u.maxBytes > 0 && int64(len(data)) > u.maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrUploadTooLarge, len(data))
	}
	kind, err := Detect(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.next++
	ref := fmt.Sprintf("%supload/%d/%s", SchemeMemory, u.next, sanitizeName(name))
	u.files[ref] = Upload{Name: name, Type: kind, Data: data}
	return ref, nil
}

// AddFile reads a file from disk and stores it as an upload.
func (u *Uploads) AddFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if u.maxBytes > 0 && info.Size() > u.maxBytes {
		return "", fmt.Errorf("%w: %s is %d bytes", ErrUploadTooLarge, path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	return u.Add(filepath.Base(path), data)
}

// Get returns an upload by reference.
func (u *Uploads) Get(ref string) (Upload, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	up, ok := u.files[ref]
	return up, ok
}

// Remove drops an upload.
func (u *Uploads) Remove(ref string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.files, ref)
}

// Len returns the number of stored uploads.
func (u *Uploads) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.files)
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', '?', '#':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." {
		return "model"
	}
	return name
}
