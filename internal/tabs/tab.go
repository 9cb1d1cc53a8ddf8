// Package tabs holds the launcher's shared view of the browser: the
// current tab snapshot and the queue of pending tab-switch commands.
//
// Both structures are owned by the launcher process and shared by every
// transport (pipe and WebSocket). They are guarded by plain mutexes held
// only for the duration of a copy or replace, never across I/O.
package tabs

// Tab is one browser tab as reported by the extension.
type Tab struct {
	ID         int32  `json:"id"`
	WindowID   int32  `json:"window_id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	FavIconURL string `json:"fav_icon_url"`
	Active     bool   `json:"active"`
	Index      int32  `json:"index"`
}

// DisplayName returns the tab title, falling back to the URL for tabs
// that have no title yet (e.g. still loading).
func (t Tab) DisplayName() string {
	if t.Title == "" {
		return t.URL
	}
	return t.Title
}

// SwitchCommand is an instruction to bring a specific tab to the
// foreground. It is produced by any transport's switchToTab handler and
// consumed by exactly one queue pop.
type SwitchCommand struct {
	TabID    int32 `json:"tab_id"`
	WindowID int32 `json:"window_id"`
}
