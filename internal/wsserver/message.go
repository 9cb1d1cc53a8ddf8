// Package wsserver embeds a WebSocket server in the launcher for the
// browser extension's direct connection: request/response methods plus
// unsolicited push events, all sharing the launcher's tab store and
// command queue with the pipe transport.
package wsserver

import (
	"encoding/json"

	"github.com/takeru911/my-launcher/internal/tabs"
)

// Message type tags.
const (
	TypeRequest  = "request"
	TypeResponse = "response"
	TypeEvent    = "event"
)

// Event names pushed to the extension.
const (
	EventTabSwitchRequested = "tabSwitchRequested"
	EventTabsUpdated        = "tabsUpdated"
)

// Request methods.
const (
	MethodGetTabs     = "getTabs"
	MethodUpdateTabs  = "updateTabs"
	MethodSwitchToTab = "switchToTab"
	MethodKeepAlive   = "keepAlive"
)

// Message is the single wire shape for requests, responses, and events,
// distinguished by Type. Fields not used by a variant are omitted.
type Message struct {
	Type string `json:"type"`

	// Request/Response correlation. Events carry no ID; the extension
	// recognizes them by event name alone.
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`

	Result any        `json:"result,omitempty"`
	Error  *ErrorInfo `json:"error,omitempty"`

	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// ErrorInfo is the error half of a response.
type ErrorInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TabsResult carries a tab snapshot in a response or event.
type TabsResult struct {
	Tabs []tabs.Tab `json:"tabs"`
}

// SuccessResult acknowledges a request.
type SuccessResult struct {
	Success bool `json:"success"`
}

// PongResult answers keepAlive with the wall clock in milliseconds.
type PongResult struct {
	Timestamp int64 `json:"timestamp"`
}

// UpdateTabsParams are the parameters of an updateTabs request.
type UpdateTabsParams struct {
	Tabs []tabs.Tab `json:"tabs"`
}

// SwitchToTabParams are the parameters of a switchToTab request.
type SwitchToTabParams struct {
	TabID    int32 `json:"tab_id"`
	WindowID int32 `json:"window_id"`
}

// responseOK builds a successful response for id.
func responseOK(id string, result any) Message {
	return Message{Type: TypeResponse, ID: id, Result: result}
}

// responseError builds an error response for id.
func responseError(id string, code int, message string) Message {
	return Message{Type: TypeResponse, ID: id, Error: &ErrorInfo{Code: code, Message: message}}
}

// newEvent builds an unsolicited push event.
func newEvent(event string, data any) Message {
	return Message{Type: TypeEvent, Event: event, Data: data}
}

// tabsResult wraps a snapshot, never encoding a null tab array.
func tabsResult(list []tabs.Tab) TabsResult {
	if list == nil {
		list = []tabs.Tab{}
	}
	return TabsResult{Tabs: list}
}
