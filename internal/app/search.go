package app

import (
	"strings"

	"github.com/pfassina/quire/internal/panel"
	"github.com/pfassina/quire/internal/recent"
)

// maxQuickOpen bounds the finder result list.
const maxQuickOpen = 200

// fuzzyMatch reports whether every rune of query appears in s in order,
// ignoring case.
func fuzzyMatch(s, query string) bool {
	s, query = strings.ToLower(s), strings.ToLower(query)
	for _, r := range query {
		i := strings.IndexRune(s, r)
		if i < 0 {
			return false
		}
		s = s[i+len(string(r)):]
	}
	return true
}

// quickOpenItems lists recent files first, most recent at the top, then
// the remaining workspace files in path order.
func quickOpenItems(recents []recent.Entry, files []string, query string) []panel.FinderItem {
	query = strings.TrimSpace(query)
	seen := make(map[string]struct{}, len(recents))
	var items []panel.FinderItem

	for _, e := range recents {
		seen[e.Path] = struct{}{}
		if !fuzzyMatch(e.Path, query) {
			continue
		}
		items = append(items, panel.FinderItem{Title: e.Path, Path: e.Path, Extra: "recent"})
	}
	for _, f := range files {
		if len(items) >= maxQuickOpen {
			break
		}
		if _, dup := seen[f]; dup || !fuzzyMatch(f, query) {
			continue
		}
		items = append(items, panel.FinderItem{Title: f, Path: f})
	}
	return items
}
