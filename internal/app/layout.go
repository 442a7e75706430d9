package app

// Layout computes the dimensions for each region of the screen.
type Layout struct {
	TabsHeight   int
	CrumbHeight  int
	RecentWidth  int
	EditorWidth  int
	EditorHeight int
	StatusHeight int
}

// maxRecentWidth caps the recent-files column.
const maxRecentWidth = 32

// ComputeLayout calculates region sizes from the terminal size and the
// visible chrome. Focus mode hides everything except the editor and the
// status bar.
func ComputeLayout(totalWidth, totalHeight int, showRecent, showBreadcrumb, focus bool) Layout {
	// During live resizes some terminals momentarily report 0 (or even negative)
	// dimensions; clamp to avoid propagating invalid sizes into panels.
	if totalWidth < 1 {
		totalWidth = 1
	}
	if totalHeight < 2 { // need at least 1 row for content + 1 for status
		totalHeight = 2
	}

	l := Layout{StatusHeight: 1}
	if !focus {
		l.TabsHeight = 1
		if showBreadcrumb {
			l.CrumbHeight = 1
		}
	}

	l.EditorHeight = totalHeight - l.StatusHeight - l.TabsHeight - l.CrumbHeight
	if l.EditorHeight < 1 {
		l.EditorHeight = 1
	}

	remaining := totalWidth
	if showRecent && !focus {
		l.RecentWidth = maxRecentWidth
		if l.RecentWidth > remaining/3 {
			l.RecentWidth = remaining / 3
		}
		remaining -= l.RecentWidth
	}

	l.EditorWidth = remaining
	if l.EditorWidth < 1 {
		l.EditorWidth = 1
	}
	return l
}
