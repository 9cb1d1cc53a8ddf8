package nativemsg

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownShape is returned when an inbound message matches none of
// the known browser shapes. The message is dropped; the stream stays
// open.
var ErrUnknownShape = errors.New("nativemsg: unknown message shape")

// Inbound is one decoded browser message. Exactly one field is non-nil.
type Inbound struct {
	Command *Command
	TabPush []TabInfo
	Ack     *SwitchAck
}

// DecodeInbound classifies one stdin message. The browser shapes share
// no single tag, so classification is structural, attempted in priority
// order: a "command" tag wins over a "type" tag, "tabList" wins over
// "tabSwitchAck". The order matters only for malformed hybrids; real
// messages carry exactly one of the tags.
func DecodeInbound(data []byte) (Inbound, error) {
	var probe struct {
		Command string `json:"command"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Inbound{}, fmt.Errorf("nativemsg: decode message: %w", err)
	}

	switch {
	case probe.Command == CommandGetTabs || probe.Command == CommandSwitchToTab:
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			return Inbound{}, fmt.Errorf("nativemsg: decode command: %w", err)
		}
		return Inbound{Command: &cmd}, nil

	case probe.Type == TypeTabList:
		var push TabListResponse
		if err := json.Unmarshal(data, &push); err != nil {
			return Inbound{}, fmt.Errorf("nativemsg: decode tab list: %w", err)
		}
		return Inbound{TabPush: push.Tabs}, nil

	case probe.Type == "tabSwitchAck":
		var ack SwitchAck
		if err := json.Unmarshal(data, &ack); err != nil {
			return Inbound{}, fmt.Errorf("nativemsg: decode switch ack: %w", err)
		}
		return Inbound{Ack: &ack}, nil

	default:
		return Inbound{}, ErrUnknownShape
	}
}
