package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeLayout(t *testing.T) {
	tests := []struct {
		name                      string
		w, h                      int
		showRecent, crumbs, focus bool
		want                      Layout
	}{
		{
			name: "editor only", w: 100, h: 40,
			want: Layout{TabsHeight: 1, EditorWidth: 100, EditorHeight: 38, StatusHeight: 1},
		},
		{
			name: "all chrome", w: 120, h: 40, showRecent: true, crumbs: true,
			want: Layout{TabsHeight: 1, CrumbHeight: 1, RecentWidth: 32, EditorWidth: 88, EditorHeight: 37, StatusHeight: 1},
		},
		{
			name: "narrow recent", w: 60, h: 20, showRecent: true,
			want: Layout{TabsHeight: 1, RecentWidth: 20, EditorWidth: 40, EditorHeight: 18, StatusHeight: 1},
		},
		{
			name: "focus hides chrome", w: 120, h: 40, showRecent: true, crumbs: true, focus: true,
			want: Layout{EditorWidth: 120, EditorHeight: 39, StatusHeight: 1},
		},
		{
			name: "degenerate", w: 0, h: 0, crumbs: true,
			want: Layout{TabsHeight: 1, CrumbHeight: 1, EditorWidth: 1, EditorHeight: 1, StatusHeight: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeLayout(tt.w, tt.h, tt.showRecent, tt.crumbs, tt.focus))
		})
	}
}
