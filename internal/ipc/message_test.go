package ipc

import (
	"encoding/json"
	"testing"

	"github.com/takeru911/my-launcher/internal/tabs"
)

func TestMessage_WireFormat(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{
			name: "GetTabs is a bare string",
			msg:  GetTabs(),
			want: `"GetTabs"`,
		},
		{
			name: "SwitchToTab",
			msg:  SwitchToTab(tabs.SwitchCommand{TabID: 1, WindowID: 2}),
			want: `{"SwitchToTab":{"tab_id":1,"window_id":2}}`,
		},
		{
			name: "TabSwitchResult success",
			msg:  TabSwitchResult(true, ""),
			want: `{"TabSwitchResult":{"success":true,"error":null}}`,
		},
		{
			name: "TabSwitchResult failure",
			msg:  TabSwitchResult(false, "Tab switch failed"),
			want: `{"TabSwitchResult":{"success":false,"error":"Tab switch failed"}}`,
		},
		{
			name: "ChromeCommand",
			msg:  ChromeCommand(tabs.SwitchCommand{TabID: 5, WindowID: 2}),
			want: `{"ChromeCommand":{"command":{"tab_id":5,"window_id":2}}}`,
		},
		{
			name: "empty TabList encodes an array",
			msg:  TabList(nil),
			want: `{"TabList":{"tabs":[]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.msg)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}

			var back Message
			if err := json.Unmarshal(got, &back); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if back.Kind != tt.msg.Kind {
				t.Errorf("round-trip kind = %v, want %v", back.Kind, tt.msg.Kind)
			}
		})
	}
}

func TestMessage_TabListRoundTrip(t *testing.T) {
	list := []tabs.Tab{
		{ID: 1, WindowID: 10, Title: "A", URL: "http://a", Active: true, Index: 0},
		{ID: 2, WindowID: 10, Title: "B", URL: "http://b", Index: 1},
	}

	data, err := json.Marshal(TabList(list))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var back Message
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.Kind != KindTabList {
		t.Fatalf("kind = %v, want KindTabList", back.Kind)
	}
	if len(back.Tabs) != 2 || back.Tabs[0] != list[0] || back.Tabs[1] != list[1] {
		t.Errorf("tabs = %+v, want %+v", back.Tabs, list)
	}
}

func TestMessage_UnmarshalRejectsUnknown(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "unknown string tag", data: `"Reboot"`},
		{name: "unknown object tag", data: `{"Reboot":{}}`},
		{name: "two variant keys", data: `{"GetTabs":null,"TabList":{"tabs":[]}}`},
		{name: "not json", data: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Message
			if err := json.Unmarshal([]byte(tt.data), &m); err == nil {
				t.Errorf("Unmarshal(%s) succeeded, want error", tt.data)
			}
		})
	}
}
