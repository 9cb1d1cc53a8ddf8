// Package ipc implements the request/response protocol spoken between
// the launcher process and the native-messaging bridge over a named
// pipe (Windows) or Unix domain socket. Messages are length-prefixed
// JSON envelopes encoded by the framing package.
package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/takeru911/my-launcher/internal/tabs"
)

// Kind identifies the variant carried by a Message.
type Kind int

const (
	// KindGetTabs asks the launcher for the current tab list.
	KindGetTabs Kind = iota + 1
	// KindSwitchToTab asks the launcher to switch to a tab.
	KindSwitchToTab
	// KindTabList carries a full tab snapshot.
	KindTabList
	// KindTabSwitchResult acknowledges a request.
	KindTabSwitchResult
	// KindChromeCommand delivers a pending switch command to the
	// bridge in place of a tab list.
	KindChromeCommand
)

// String returns the wire tag for the kind.
func (k Kind) String() string {
	switch k {
	case KindGetTabs:
		return "GetTabs"
	case KindSwitchToTab:
		return "SwitchToTab"
	case KindTabList:
		return "TabList"
	case KindTabSwitchResult:
		return "TabSwitchResult"
	case KindChromeCommand:
		return "ChromeCommand"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// SwitchResult is the acknowledgment body of a TabSwitchResult message.
type SwitchResult struct {
	Success bool    `json:"success"`
	Error   *string `json:"error"`
}

// Message is the tagged union exchanged over the pipe. Exactly one
// payload field is meaningful, selected by Kind.
//
// The wire format is externally tagged the way the browser counterpart
// parses it: the field-less GetTabs variant encodes as the bare JSON
// string "GetTabs", every other variant as a single-key object such as
// {"SwitchToTab":{"tab_id":1,"window_id":2}}.
type Message struct {
	Kind Kind

	Switch  tabs.SwitchCommand // KindSwitchToTab
	Tabs    []tabs.Tab         // KindTabList
	Result  SwitchResult       // KindTabSwitchResult
	Command tabs.SwitchCommand // KindChromeCommand
}

// GetTabs returns a GetTabs request.
func GetTabs() Message {
	return Message{Kind: KindGetTabs}
}

// SwitchToTab returns a switch request for the given tab.
func SwitchToTab(cmd tabs.SwitchCommand) Message {
	return Message{Kind: KindSwitchToTab, Switch: cmd}
}

// TabList returns a message carrying a full tab snapshot.
func TabList(list []tabs.Tab) Message {
	return Message{Kind: KindTabList, Tabs: list}
}

// TabSwitchResult returns an acknowledgment. An empty errMsg encodes a
// null error field.
func TabSwitchResult(success bool, errMsg string) Message {
	res := SwitchResult{Success: success}
	if errMsg != "" {
		res.Error = &errMsg
	}
	return Message{Kind: KindTabSwitchResult, Result: res}
}

// ChromeCommand returns a command-delivery message.
func ChromeCommand(cmd tabs.SwitchCommand) Message {
	return Message{Kind: KindChromeCommand, Command: cmd}
}

type tabListBody struct {
	Tabs []tabs.Tab `json:"tabs"`
}

type chromeCommandBody struct {
	Command tabs.SwitchCommand `json:"command"`
}

// MarshalJSON implements the externally tagged wire format.
func (m Message) MarshalJSON() ([]byte, error) {
	switch m.Kind {
	case KindGetTabs:
		return json.Marshal("GetTabs")
	case KindSwitchToTab:
		return json.Marshal(map[string]tabs.SwitchCommand{"SwitchToTab": m.Switch})
	case KindTabList:
		list := m.Tabs
		if list == nil {
			list = []tabs.Tab{}
		}
		return json.Marshal(map[string]tabListBody{"TabList": {Tabs: list}})
	case KindTabSwitchResult:
		return json.Marshal(map[string]SwitchResult{"TabSwitchResult": m.Result})
	case KindChromeCommand:
		return json.Marshal(map[string]chromeCommandBody{"ChromeCommand": {Command: m.Command}})
	default:
		return nil, fmt.Errorf("ipc: cannot marshal message of kind %v", m.Kind)
	}
}

// UnmarshalJSON implements the externally tagged wire format.
func (m *Message) UnmarshalJSON(data []byte) error {
	// The unit variant arrives as a bare string.
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		if tag != "GetTabs" {
			return fmt.Errorf("ipc: unknown message tag %q", tag)
		}
		*m = Message{Kind: KindGetTabs}
		return nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("ipc: decode message envelope: %w", err)
	}
	if len(envelope) != 1 {
		return fmt.Errorf("ipc: expected exactly one variant key, got %d", len(envelope))
	}

	for key, raw := range envelope {
		switch key {
		case "SwitchToTab":
			var cmd tabs.SwitchCommand
			if err := json.Unmarshal(raw, &cmd); err != nil {
				return fmt.Errorf("ipc: decode SwitchToTab: %w", err)
			}
			*m = Message{Kind: KindSwitchToTab, Switch: cmd}
		case "TabList":
			var body tabListBody
			if err := json.Unmarshal(raw, &body); err != nil {
				return fmt.Errorf("ipc: decode TabList: %w", err)
			}
			*m = Message{Kind: KindTabList, Tabs: body.Tabs}
		case "TabSwitchResult":
			var res SwitchResult
			if err := json.Unmarshal(raw, &res); err != nil {
				return fmt.Errorf("ipc: decode TabSwitchResult: %w", err)
			}
			*m = Message{Kind: KindTabSwitchResult, Result: res}
		case "ChromeCommand":
			var body chromeCommandBody
			if err := json.Unmarshal(raw, &body); err != nil {
				return fmt.Errorf("ipc: decode ChromeCommand: %w", err)
			}
			*m = Message{Kind: KindChromeCommand, Command: body.Command}
		default:
			return fmt.Errorf("ipc: unknown message tag %q", key)
		}
	}
	return nil
}
