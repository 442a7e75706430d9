// Package workspace lists the markdown documents under a root directory
// and watches it for deletions.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ErrOutsideRoot is returned for paths that escape the workspace.
var ErrOutsideRoot = errors.New("path is outside the workspace")

// Workspace is a directory of markdown documents. Paths handed out and
// accepted are slash-separated and relative to Root.
type Workspace struct {
	Root string
}

func New(root string) *Workspace {
	return &Workspace{Root: root}
}

func isDocument(name string) bool {
	return strings.HasSuffix(name, ".md")
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// ListFiles returns every markdown file in the workspace, sorted. Hidden
// files and directories are skipped.
func (w *Workspace) ListFiles() ([]string, error) {
	var files []string

	err := filepath.WalkDir(w.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if p == w.Root {
			return nil
		}
		if hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isDocument(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(w.Root, p)
		if err != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})

	sort.Strings(files)
	return files, err
}

// ValidPaths returns the set of document paths that currently exist.
func (w *Workspace) ValidPaths() (map[string]struct{}, error) {
	files, err := w.ListFiles()
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(files))
	for _, f := range files {
		set[f] = struct{}{}
	}
	return set, nil
}

// Exists reports whether rel names an existing regular file.
func (w *Workspace) Exists(rel string) bool {
	info, err := os.Stat(w.Abs(rel))
	return err == nil && info.Mode().IsRegular()
}

// Abs returns the filesystem path for a workspace-relative path.
func (w *Workspace) Abs(rel string) string {
	return filepath.Join(w.Root, filepath.FromSlash(rel))
}

// Normalize turns user input into a workspace-relative document path.
// Absolute paths inside the root are accepted; ".md" is appended when the
// name has no extension.
func (w *Workspace) Normalize(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("empty path")
	}

	if filepath.IsAbs(input) {
		rel, err := filepath.Rel(w.Root, input)
		if err != nil {
			return "", fmt.Errorf("%s: %w", input, ErrOutsideRoot)
		}
		input = rel
	}

	rel := path.Clean(filepath.ToSlash(input))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("%s: %w", input, ErrOutsideRoot)
	}
	if path.Ext(rel) == "" {
		rel += ".md"
	}
	return rel, nil
}
