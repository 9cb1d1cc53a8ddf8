package ipc

import (
	"net"
	"testing"
	"time"

	"github.com/takeru911/my-launcher/internal/framing"
	"github.com/takeru911/my-launcher/internal/tabs"
)

// startConn wires a server connection handler to an in-memory pipe and
// returns the client end.
func startConn(t *testing.T, store *tabs.Store, queue *tabs.CommandQueue) net.Conn {
	t.Helper()

	server := NewServer(DefaultServerConfig(), store, queue)
	client, srv := net.Pipe()
	done := make(chan struct{})
	go func() {
		server.serveConn(srv)
		srv.Close()
		close(done)
	}()

	t.Cleanup(func() {
		client.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server connection did not shut down")
		}
	})
	return client
}

func roundTrip(t *testing.T, conn net.Conn, req Message) Message {
	t.Helper()

	if err := framing.WriteJSON(conn, req); err != nil {
		t.Fatalf("send %v: %v", req.Kind, err)
	}
	var resp Message
	if err := framing.ReadJSON(conn, &resp); err != nil {
		t.Fatalf("read response to %v: %v", req.Kind, err)
	}
	return resp
}

func TestServer_GetTabsReturnsSnapshot(t *testing.T) {
	store := tabs.NewStore()
	queue := tabs.NewCommandQueue(0)
	tab := tabs.Tab{ID: 1, WindowID: 10, Title: "A", URL: "http://a", FavIconURL: "", Active: true, Index: 0}
	store.Replace([]tabs.Tab{tab})

	conn := startConn(t, store, queue)

	resp := roundTrip(t, conn, GetTabs())
	if resp.Kind != KindTabList {
		t.Fatalf("response kind = %v, want KindTabList", resp.Kind)
	}
	if len(resp.Tabs) != 1 || resp.Tabs[0] != tab {
		t.Errorf("tabs = %+v, want [%+v]", resp.Tabs, tab)
	}
}

func TestServer_PendingCommandPreemptsTabList(t *testing.T) {
	store := tabs.NewStore()
	queue := tabs.NewCommandQueue(0)
	store.Replace([]tabs.Tab{{ID: 1, WindowID: 10, Title: "A", URL: "http://a"}})
	queue.Push(tabs.SwitchCommand{TabID: 5, WindowID: 2})

	conn := startConn(t, store, queue)

	// First poll delivers the command in place of the tab list.
	resp := roundTrip(t, conn, GetTabs())
	if resp.Kind != KindChromeCommand {
		t.Fatalf("response kind = %v, want KindChromeCommand", resp.Kind)
	}
	if resp.Command.TabID != 5 || resp.Command.WindowID != 2 {
		t.Errorf("command = %+v, want {5 2}", resp.Command)
	}

	// The command was consumed; the next poll gets the tab list.
	resp = roundTrip(t, conn, GetTabs())
	if resp.Kind != KindTabList {
		t.Fatalf("second response kind = %v, want KindTabList", resp.Kind)
	}
	if len(resp.Tabs) != 1 {
		t.Errorf("second response has %d tabs, want 1", len(resp.Tabs))
	}
}

func TestServer_TabListPushReplacesSnapshot(t *testing.T) {
	store := tabs.NewStore()
	queue := tabs.NewCommandQueue(0)
	conn := startConn(t, store, queue)

	pushed := []tabs.Tab{
		{ID: 7, WindowID: 1, Title: "Docs", URL: "https://docs.example"},
		{ID: 8, WindowID: 1, Title: "Mail", URL: "https://mail.example"},
	}
	resp := roundTrip(t, conn, TabList(pushed))
	if resp.Kind != KindTabSwitchResult || !resp.Result.Success {
		t.Fatalf("push ack = %+v, want success", resp)
	}

	got := store.All()
	if len(got) != 2 || got[0].ID != 7 {
		t.Errorf("store snapshot = %+v, want pushed tabs", got)
	}
}

func TestServer_SwitchToTabAcknowledged(t *testing.T) {
	store := tabs.NewStore()
	queue := tabs.NewCommandQueue(0)
	conn := startConn(t, store, queue)

	resp := roundTrip(t, conn, SwitchToTab(tabs.SwitchCommand{TabID: 3, WindowID: 1}))
	if resp.Kind != KindTabSwitchResult {
		t.Fatalf("response kind = %v, want KindTabSwitchResult", resp.Kind)
	}
	if !resp.Result.Success || resp.Result.Error != nil {
		t.Errorf("result = %+v, want unconditional success", resp.Result)
	}
}

func TestServer_ForwardedAckAcknowledged(t *testing.T) {
	store := tabs.NewStore()
	queue := tabs.NewCommandQueue(0)
	conn := startConn(t, store, queue)

	resp := roundTrip(t, conn, TabSwitchResult(false, "Tab switch failed"))
	if resp.Kind != KindTabSwitchResult || !resp.Result.Success {
		t.Fatalf("ack response = %+v, want success", resp)
	}
}

func TestServer_FramingErrorEndsConnection(t *testing.T) {
	store := tabs.NewStore()
	queue := tabs.NewCommandQueue(0)
	conn := startConn(t, store, queue)

	// A zero-length frame is a framing error: the server must drop the
	// connection rather than attempt to resynchronize.
	if _, err := conn.Write([]byte{0, 0, 0, 0}); err != nil {
		t.Fatalf("write bad frame: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	if _, err := conn.Read(buf); err == nil {
		t.Error("expected closed connection after framing error")
	}
}
