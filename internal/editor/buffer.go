package editor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Buffer is a file-backed in-memory document.
type Buffer struct {
	mu      sync.Mutex
	root    string
	path    string
	content string
	saved   string
	modTime time.Time
	closed  bool
}

// OpenBuffer loads root/path. A missing file yields an empty, clean buffer
// that is created on first save.
func OpenBuffer(root, path string) (*Buffer, error) {
	b := &Buffer{root: root, path: path}
	if err := b.load(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Buffer) fullPath() string {
	return filepath.Join(b.root, filepath.FromSlash(b.path))
}

// load reads the backing file. Callers hold b.mu or own b exclusively.
func (b *Buffer) load() error {
	full := b.fullPath()
	data, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		b.content, b.saved, b.modTime = "", "", time.Time{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", b.path, err)
	}
	info, err := os.Stat(full)
	if err != nil {
		return fmt.Errorf("stat %s: %w", b.path, err)
	}
	b.content = string(data)
	b.saved = b.content
	b.modTime = info.ModTime()
	return nil
}

func (b *Buffer) Path() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path
}

func (b *Buffer) Content() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

func (b *Buffer) SetContent(content string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = content
}

func (b *Buffer) Dirty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content != b.saved
}

func (b *Buffer) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("save %s: buffer closed", b.path)
	}

	full := b.fullPath()
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("save %s: %w", b.path, err)
	}
	if err := os.WriteFile(full, []byte(b.content), 0644); err != nil {
		return fmt.Errorf("save %s: %w", b.path, err)
	}
	b.saved = b.content
	if info, err := os.Stat(full); err == nil {
		b.modTime = info.ModTime()
	}
	return nil
}

// Rebind reloads the buffer when it is pointed at another path or the file
// changed on disk since it was last read. Unsaved edits to the same path
// are kept.
func (b *Buffer) Rebind(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("rebind %s: buffer closed", path)
	}

	if path != b.path {
		b.path = path
		return b.load()
	}
	if b.content != b.saved {
		return nil
	}

	info, err := os.Stat(b.fullPath())
	switch {
	case os.IsNotExist(err):
		if !b.modTime.IsZero() {
			return fmt.Errorf("rebind %s: file removed", path)
		}
		return nil
	case err != nil:
		return fmt.Errorf("rebind %s: %w", path, err)
	case !info.ModTime().Equal(b.modTime):
		return b.load()
	}
	return nil
}

func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.content, b.saved = "", ""
	return nil
}
