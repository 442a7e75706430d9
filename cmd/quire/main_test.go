package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfassina/quire/internal/kvstore"
	"github.com/pfassina/quire/internal/logging"
	"github.com/pfassina/quire/internal/recent"
	"github.com/pfassina/quire/internal/workspace"
)

func testRegistry(t *testing.T, paths ...string) *recent.Registry {
	t.Helper()
	base := time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local)
	tick := 0
	reg := recent.New(kvstore.NewMemory(), logging.Discard(), recent.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}))
	for _, p := range paths {
		reg.Add(p)
	}
	return reg
}

func TestPrintRecent_Text(t *testing.T) {
	reg := testRegistry(t, "a.md", "notes/b.md")

	var buf bytes.Buffer
	require.NoError(t, printRecent(&buf, reg.List(), "text"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "notes/b.md")
	assert.Contains(t, string(lines[0]), "2026-03-01 09:32")
	assert.Contains(t, string(lines[1]), "a.md")
}

func TestPrintRecent_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printRecent(&buf, nil, "text"))
	assert.Equal(t, "no recent files\n", buf.String())

	buf.Reset()
	require.NoError(t, printRecent(&buf, nil, "json"))
	assert.JSONEq(t, "[]", buf.String())
}

func TestPrintRecent_JSON(t *testing.T) {
	reg := testRegistry(t, "a.md")

	var buf bytes.Buffer
	require.NoError(t, printRecent(&buf, reg.List(), "json"))

	var got []recent.Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a.md", got[0].Path)
	assert.Equal(t, "a.md", got[0].Name)
}

func TestPrintRecent_UnknownFormat(t *testing.T) {
	err := printRecent(&bytes.Buffer{}, nil, "yaml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestPruneRecent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.md"), []byte("# keep"), 0o644))

	reg := testRegistry(t, "keep.md", "gone.md")
	n, err := pruneRecent(reg, workspace.New(root))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries := reg.List()
	require.Len(t, entries, 1)
	assert.Equal(t, "keep.md", entries[0].Path)
}

func TestAutosaveOverride(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantEnabled  *bool
		wantInterval *int
	}{
		{name: "nothing set", args: nil},
		{name: "disabled", args: []string{"--no-autosave"}, wantEnabled: ptr(false)},
		{name: "interval", args: []string{"--autosave-interval=10"}, wantInterval: ptr(10)},
		{name: "zero interval ignored", args: []string{"--autosave-interval=0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts = flags{}
			cmd := &cobra.Command{Use: "test"}
			cmd.Flags().IntVar(&opts.autosaveInterval, "autosave-interval", 0, "")
			cmd.Flags().BoolVar(&opts.noAutosave, "no-autosave", false, "")
			require.NoError(t, cmd.Flags().Parse(tt.args))

			p := autosaveOverride(cmd)
			assert.Equal(t, tt.wantEnabled, p.Enabled)
			assert.Equal(t, tt.wantInterval, p.Interval)
		})
	}
}

func ptr[T any](v T) *T { return &v }
