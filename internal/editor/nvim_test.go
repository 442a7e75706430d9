package editor

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNvim_EditAndSave(t *testing.T) {
	if err := CheckNvim(); err != nil {
		t.Skipf("nvim unavailable: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	root := t.TempDir()
	writeFile(t, root, "a.md", "hello")

	n, err := StartNvim(root, "a.md", log)
	require.NoError(t, err)
	defer n.Close()

	assert.Equal(t, "hello", n.Content())
	assert.False(t, n.Dirty())

	n.SetContent("hello\nworld")
	assert.True(t, n.Dirty())
	require.NoError(t, n.Save(context.Background()))
	assert.False(t, n.Dirty())

	data, err := os.ReadFile(filepath.Join(root, "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", string(data))
}
