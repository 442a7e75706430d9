// Package breadcrumb turns a slash-separated document path into the
// navigable items shown above the editor.
package breadcrumb

import "strings"

// MaxVisibleItems is the longest breadcrumb rendered without collapsing.
const MaxVisibleItems = 4

// Ellipsis is the name of the marker that replaces collapsed items.
const Ellipsis = "…"

// Item is one breadcrumb segment. Path is the cumulative prefix up to and
// including Name.
type Item struct {
	Name       string
	Path       string
	IsLast     bool
	IsEllipsis bool
}

// Parse splits path into items without collapsing. Empty segments are
// dropped, so leading, trailing and doubled slashes are ignored.
func Parse(path string) []Item {
	if path == "" {
		return nil
	}

	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	items := make([]Item, 0, len(segments))
	current := ""
	for i, seg := range segments {
		if current == "" {
			current = seg
		} else {
			current += "/" + seg
		}
		items = append(items, Item{
			Name:   seg,
			Path:   current,
			IsLast: i == len(segments)-1,
		})
	}
	return items
}

// Decompose parses path and collapses the middle of long paths: the first
// item, one ellipsis marker and the last MaxVisibleItems-1 items are kept.
func Decompose(path string) []Item {
	items := Parse(path)
	if len(items) <= MaxVisibleItems {
		return items
	}

	out := make([]Item, 0, MaxVisibleItems+1)
	out = append(out, items[0])
	out = append(out, Item{Name: Ellipsis, IsEllipsis: true})
	out = append(out, items[len(items)-(MaxVisibleItems-1):]...)
	return out
}

// Navigable reports whether selecting the item should navigate somewhere.
// The current document and the ellipsis marker are not navigable.
func Navigable(it Item) bool {
	return !it.IsLast && !it.IsEllipsis && it.Path != ""
}

// String renders items joined by " / ".
func String(items []Item) string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return strings.Join(names, " / ")
}
