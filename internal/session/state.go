package session

// Layout holds UI-adjacent flags that survive restarts.
type Layout struct {
	ShowBreadcrumb bool `json:"show_breadcrumb"`
	ShowRecent     bool `json:"show_recent"`
	FocusMode      bool `json:"focus_mode"`
}

// Snapshot is the persisted part of a session.
type Snapshot struct {
	ActiveFile string   `json:"active_file,omitempty"`
	OpenFiles  []string `json:"open_files,omitempty"`
	Layout     Layout   `json:"layout"`
}

// Default returns the default session snapshot.
func Default() Snapshot {
	return Snapshot{
		Layout: Layout{ShowBreadcrumb: true},
	}
}
