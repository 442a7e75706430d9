package config

// Action names a user command in the editor.
type Action string

const (
	ActionOpen             Action = "open"
	ActionQuickOpen        Action = "quick_open"
	ActionSave             Action = "save"
	ActionClose            Action = "close_tab"
	ActionNextTab          Action = "next_tab"
	ActionPrevTab          Action = "prev_tab"
	ActionMoveTabLeft      Action = "move_tab_left"
	ActionMoveTabRight     Action = "move_tab_right"
	ActionToggleAutosave   Action = "toggle_autosave"
	ActionToggleRecent     Action = "toggle_recent"
	ActionToggleBreadcrumb Action = "toggle_breadcrumb"
	ActionFocusMode        Action = "focus_mode"
	ActionHelp             Action = "help"
	ActionQuit             Action = "quit"
)

// Keybind represents a key binding configuration.
type Keybind struct {
	Key    string
	Action Action
	Help   string
}

// DefaultKeybinds returns the default key bindings.
func DefaultKeybinds() []Keybind {
	return []Keybind{
		{Key: "ctrl+o", Action: ActionOpen, Help: "open file"},
		{Key: "ctrl+p", Action: ActionQuickOpen, Help: "quick open"},
		{Key: "ctrl+s", Action: ActionSave, Help: "save"},
		{Key: "ctrl+w", Action: ActionClose, Help: "close tab"},
		{Key: "ctrl+n", Action: ActionNextTab, Help: "next tab"},
		{Key: "ctrl+b", Action: ActionPrevTab, Help: "previous tab"},
		{Key: "alt+,", Action: ActionMoveTabLeft, Help: "move tab left"},
		{Key: "alt+.", Action: ActionMoveTabRight, Help: "move tab right"},
		{Key: "ctrl+t", Action: ActionToggleAutosave, Help: "toggle autosave"},
		{Key: "ctrl+r", Action: ActionToggleRecent, Help: "recent panel"},
		{Key: "ctrl+e", Action: ActionToggleBreadcrumb, Help: "breadcrumb"},
		{Key: "ctrl+f", Action: ActionFocusMode, Help: "focus mode"},
		{Key: "f1", Action: ActionHelp, Help: "help"},
		{Key: "ctrl+c", Action: ActionQuit, Help: "quit"},
	}
}

// KeyMap indexes bindings by key.
func KeyMap(binds []Keybind) map[string]Action {
	m := make(map[string]Action, len(binds))
	for _, b := range binds {
		m[b.Key] = b.Action
	}
	return m
}
