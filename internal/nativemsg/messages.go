// Package nativemsg implements the bridge process the browser spawns
// for native messaging: length-prefixed JSON on stdin/stdout toward
// the browser, the ipc protocol toward the launcher.
package nativemsg

import "github.com/takeru911/my-launcher/internal/tabs"

// Command names the browser sends.
const (
	CommandGetTabs     = "getTabs"
	CommandSwitchToTab = "switchToTab"
)

// Response type tags the bridge writes back.
const (
	TypeTabList      = "tabList"
	TypeSwitchResult = "switchResult"
)

// TabInfo is the browser-facing tab shape. Field names are camelCase,
// unlike the snake_case used on the pipe and WebSocket.
type TabInfo struct {
	ID         int32  `json:"id"`
	WindowID   int32  `json:"windowId"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	FavIconURL string `json:"favIconUrl"`
	Active     bool   `json:"active"`
	Index      int32  `json:"index"`
}

// Tab converts to the launcher-side representation.
func (ti TabInfo) Tab() tabs.Tab {
	return tabs.Tab{
		ID:         ti.ID,
		WindowID:   ti.WindowID,
		Title:      ti.Title,
		URL:        ti.URL,
		FavIconURL: ti.FavIconURL,
		Active:     ti.Active,
		Index:      ti.Index,
	}
}

// TabInfoFromTab converts from the launcher-side representation.
func TabInfoFromTab(t tabs.Tab) TabInfo {
	return TabInfo{
		ID:         t.ID,
		WindowID:   t.WindowID,
		Title:      t.Title,
		URL:        t.URL,
		FavIconURL: t.FavIconURL,
		Active:     t.Active,
		Index:      t.Index,
	}
}

// tabInfosFromTabs converts a full snapshot, never returning nil so the
// browser always sees a JSON array.
func tabInfosFromTabs(list []tabs.Tab) []TabInfo {
	out := make([]TabInfo, 0, len(list))
	for _, t := range list {
		out = append(out, TabInfoFromTab(t))
	}
	return out
}

// Command is a browser request, distinguished by the "command" tag.
type Command struct {
	Command  string `json:"command"`
	TabID    int32  `json:"tabId,omitempty"`
	WindowID int32  `json:"windowId,omitempty"`
}

// TabListResponse is the bridge's answer to getTabs, and also the shape
// the browser uses to push its current tab list.
type TabListResponse struct {
	Type string    `json:"type"`
	Tabs []TabInfo `json:"tabs"`
}

// SwitchResultResponse is the bridge's answer to switchToTab. Its Error
// field is overloaded: for a pending launcher command it carries the
// "SWITCH_TAB:<tab>:<window>" shim the extension parses (see
// SwitchTabShim).
type SwitchResultResponse struct {
	Type    string  `json:"type"`
	Success bool    `json:"success"`
	TabID   *int32  `json:"tabId"`
	Error   *string `json:"error"`
}

// SwitchAck is the browser's acknowledgment after executing a switch.
type SwitchAck struct {
	Success  bool   `json:"success"`
	TabID    int32  `json:"tabId"`
	WindowID int32  `json:"windowId"`
	TabTitle string `json:"tabTitle"`
}

// newTabList builds a tabList response.
func newTabList(infos []TabInfo) TabListResponse {
	if infos == nil {
		infos = []TabInfo{}
	}
	return TabListResponse{Type: TypeTabList, Tabs: infos}
}

// newSwitchResult builds a switchResult response. A nil tabID or empty
// errMsg encodes the corresponding field as null.
func newSwitchResult(success bool, tabID *int32, errMsg string) SwitchResultResponse {
	resp := SwitchResultResponse{Type: TypeSwitchResult, Success: success, TabID: tabID}
	if errMsg != "" {
		resp.Error = &errMsg
	}
	return resp
}
