// Package editor defines the editing-widget contract that the session layer
// drives, and the widgets that implement it.
package editor

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Instance is a live editing widget bound to one document path. Instances
// can be expensive to construct, so the cache keeps them warm for reuse.
type Instance interface {
	Path() string
	Content() string
	SetContent(content string)
	// Dirty reports whether the content differs from what is on disk.
	Dirty() bool
	Save(ctx context.Context) error
	// Rebind points a pooled instance at path and revalidates it against
	// the backing file.
	Rebind(path string) error
	// Close releases the widget's resources. It is irreversible.
	Close() error
}

// Factory constructs a new instance bound to path.
type Factory func(path string) (Instance, error)

// Backend names a widget implementation.
type Backend string

const (
	BackendBuffer Backend = "buffer"
	BackendNvim   Backend = "nvim"
)

// NewFactory returns a Factory for the named backend. Paths handed to the
// factory are relative to root.
func NewFactory(backend Backend, root string, log logrus.FieldLogger) (Factory, error) {
	switch backend {
	case BackendBuffer, "":
		return func(path string) (Instance, error) {
			return OpenBuffer(root, path)
		}, nil
	case BackendNvim:
		if err := CheckNvim(); err != nil {
			return nil, err
		}
		return func(path string) (Instance, error) {
			return StartNvim(root, path, log)
		}, nil
	default:
		return nil, fmt.Errorf("unknown editor backend %q", backend)
	}
}
