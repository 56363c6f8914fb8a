// Package ephemeral produces process-local placeholders for files whose
// upload did not complete. The placeholders are usable for immediate preview
// only and are invalid after the process exits.
package ephemeral

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryScheme prefixes locators issued by MemoryStore.
const MemoryScheme = "ephemeral:"

const uuidPrefixLen = 37

// ErrNotFound is returned by Get for locators the store did not issue or has
// already released.
var ErrNotFound = errors.New("ephemeral object not found")

// Object is a previewable local copy of a candidate.
type Object struct {
	Name      string
	MediaType string
	Data      []byte
}

// Store creates and resolves local placeholders.
type Store interface {
	Put(ctx context.Context, obj Object) (string, error)
	Get(ctx context.Context, locator string) (Object, error)
	Release(ctx context.Context, locator string) error
}

// MemoryStore keeps placeholders in process memory, like a browser blob URL.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]Object)}
}

func (s *MemoryStore) Put(ctx context.Context, obj Object) (string, error) {
	data := make([]byte, len(obj.Data))
	copy(data, obj.Data)
	obj.Data = data

	locator := MemoryScheme + uuid.NewString()

	s.mu.Lock()
	s.objects[locator] = obj
	s.mu.Unlock()

	return locator, nil
}

func (s *MemoryStore) Get(ctx context.Context, locator string) (Object, error) {
	s.mu.RLock()
	obj, ok := s.objects[locator]
	s.mu.RUnlock()
	if !ok {
		return Object{}, fmt.Errorf("%s: %w", locator, ErrNotFound)
	}
	return obj, nil
}

func (s *MemoryStore) Release(ctx context.Context, locator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[locator]; !ok {
		return fmt.Errorf("%s: %w", locator, ErrNotFound)
	}
	delete(s.objects, locator)
	return nil
}

// Len reports how many placeholders are held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// DirStore writes placeholders as files under a scratch directory so external
// viewers can open them. Locators are file:// URLs.
type DirStore struct {
	dir string

	mu    sync.RWMutex
	types map[string]string
}

// NewDirStore creates dir if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("abs %s: %w", dir, err)
	}
	return &DirStore{dir: abs, types: make(map[string]string)}, nil
}

// NewTempDirStore uses a fresh directory under os.TempDir.
func NewTempDirStore() (*DirStore, error) {
	dir, err := os.MkdirTemp("", "shopkeeper-preview-")
	if err != nil {
		return nil, fmt.Errorf("mkdir temp: %w", err)
	}
	return NewDirStore(dir)
}

// Dir is the scratch directory.
func (s *DirStore) Dir() string { return s.dir }

func (s *DirStore) Put(ctx context.Context, obj Object) (string, error) {
	name := uuid.NewString() + "-" + sanitize(obj.Name)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, obj.Data, 0o600); err != nil {
		return "", fmt.Errorf("write preview: %w", err)
	}

	locator := "file://" + filepath.ToSlash(path)

	s.mu.Lock()
	s.types[locator] = obj.MediaType
	s.mu.Unlock()

	return locator, nil
}

func (s *DirStore) Get(ctx context.Context, locator string) (Object, error) {
	path, err := s.pathOf(locator)
	if err != nil {
		return Object{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Object{}, fmt.Errorf("%s: %w", locator, ErrNotFound)
		}
		return Object{}, fmt.Errorf("read preview: %w", err)
	}

	s.mu.RLock()
	mt := s.types[locator]
	s.mu.RUnlock()

	// Files are named "<uuid>-<name>".
	base := filepath.Base(path)
	if len(base) > uuidPrefixLen {
		base = base[uuidPrefixLen:]
	}
	return Object{Name: base, MediaType: mt, Data: data}, nil
}

func (s *DirStore) Release(ctx context.Context, locator string) error {
	path, err := s.pathOf(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", locator, ErrNotFound)
		}
		return fmt.Errorf("remove preview: %w", err)
	}
	s.mu.Lock()
	delete(s.types, locator)
	s.mu.Unlock()
	return nil
}

// Cleanup removes the scratch directory and everything in it.
func (s *DirStore) Cleanup() error {
	return os.RemoveAll(s.dir)
}

func (s *DirStore) pathOf(locator string) (string, error) {
	p, ok := strings.CutPrefix(locator, "file://")
	if !ok {
		return "", fmt.Errorf("%s: %w", locator, ErrNotFound)
	}
	p = filepath.FromSlash(p)
	if filepath.Dir(p) != s.dir {
		return "", fmt.Errorf("%s: %w", locator, ErrNotFound)
	}
	return p, nil
}

func sanitize(name string) string {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "file"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}
