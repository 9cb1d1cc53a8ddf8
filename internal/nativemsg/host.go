package nativemsg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/takeru911/my-launcher/internal/framing"
	"github.com/takeru911/my-launcher/internal/ipc"
	"github.com/takeru911/my-launcher/internal/tabs"
)

// SwitchTabShim formats the command payload the bridge smuggles to the
// extension inside a switchResult error field. Native messaging has no
// server-push primitive, so a pending launcher command can only reach
// the browser as the answer to one of its own getTabs polls; the
// extension parses this exact string.
func SwitchTabShim(cmd tabs.SwitchCommand) string {
	return fmt.Sprintf("SWITCH_TAB:%d:%d", cmd.TabID, cmd.WindowID)
}

// Launcher is the bridge's view of the launcher process. Implemented by
// *ipc.Client.
type Launcher interface {
	Call(ctx context.Context, req ipc.Message) (ipc.Message, error)
}

// Host is the native-messaging bridge loop: envelope-framed JSON from
// the browser on in, envelope-framed responses on out, the pipe
// protocol toward the launcher.
type Host struct {
	in       io.Reader
	out      io.Writer
	launcher Launcher
}

// NewHost creates a bridge over the given streams. In production in and
// out are the process's stdin and stdout.
func NewHost(in io.Reader, out io.Writer, launcher Launcher) *Host {
	return &Host{in: in, out: out, launcher: launcher}
}

// Run processes browser messages until the browser closes the channel.
// End of stream, a zero-length frame, and an oversize frame all end the
// loop cleanly: they mean the browser side is gone, not that the bridge
// failed.
func (h *Host) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		body, err := framing.ReadFrame(h.in)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				log.Printf("[NativeHost] browser closed the channel")
				return nil
			}
			if errors.Is(err, framing.ErrEmptyFrame) || errors.Is(err, framing.ErrFrameTooLarge) {
				log.Printf("[NativeHost] invalid frame, shutting down: %v", err)
				return nil
			}
			return fmt.Errorf("read from browser: %w", err)
		}

		inbound, err := DecodeInbound(body)
		if err != nil {
			// Schema errors are not fatal: drop the message and keep
			// serving the stream.
			log.Printf("[NativeHost] dropping message: %v", err)
			continue
		}

		switch {
		case inbound.Command != nil:
			resp := h.handleCommand(ctx, *inbound.Command)
			if err := framing.WriteJSON(h.out, resp); err != nil {
				return fmt.Errorf("write to browser: %w", err)
			}

		case inbound.TabPush != nil:
			h.forwardTabList(ctx, inbound.TabPush)

		case inbound.Ack != nil:
			h.forwardAck(ctx, *inbound.Ack)
		}
	}
}

// handleCommand answers one browser command, forwarding it to the
// launcher over the pipe.
func (h *Host) handleCommand(ctx context.Context, cmd Command) any {
	switch cmd.Command {
	case CommandGetTabs:
		resp, err := h.launcher.Call(ctx, ipc.GetTabs())
		if err != nil {
			// Silent degradation: the browser keeps polling against an
			// empty list until the launcher is reachable again.
			log.Printf("[NativeHost] launcher unreachable: %v", err)
			return newTabList(nil)
		}

		switch resp.Kind {
		case ipc.KindTabList:
			return newTabList(tabInfosFromTabs(resp.Tabs))

		case ipc.KindChromeCommand:
			// A pending switch command preempts the tab list; deliver
			// it through the error-field shim.
			log.Printf("[NativeHost] delivering switch command tab_id=%d window_id=%d",
				resp.Command.TabID, resp.Command.WindowID)
			tabID := resp.Command.TabID
			return newSwitchResult(true, &tabID, SwitchTabShim(resp.Command))

		default:
			log.Printf("[NativeHost] unexpected launcher response %v to GetTabs", resp.Kind)
			return newTabList(nil)
		}

	case CommandSwitchToTab:
		req := ipc.SwitchToTab(tabs.SwitchCommand{TabID: cmd.TabID, WindowID: cmd.WindowID})
		resp, err := h.launcher.Call(ctx, req)
		if err != nil || resp.Kind != ipc.KindTabSwitchResult {
			log.Printf("[NativeHost] switch request failed: %v", err)
			return newSwitchResult(false, nil, "Failed to communicate with launcher")
		}

		var tabID *int32
		if resp.Result.Success {
			id := cmd.TabID
			tabID = &id
		}
		errMsg := ""
		if resp.Result.Error != nil {
			errMsg = *resp.Result.Error
		}
		return newSwitchResult(resp.Result.Success, tabID, errMsg)

	default:
		// DecodeInbound only admits known command names.
		return newSwitchResult(false, nil, fmt.Sprintf("unknown command %q", cmd.Command))
	}
}

// forwardTabList pushes a browser tab snapshot to the launcher. The
// browser expects no stdout response for a push.
func (h *Host) forwardTabList(ctx context.Context, infos []TabInfo) {
	list := make([]tabs.Tab, 0, len(infos))
	for _, ti := range infos {
		list = append(list, ti.Tab())
	}

	log.Printf("[NativeHost] forwarding %d tabs to launcher", len(list))
	if _, err := h.launcher.Call(ctx, ipc.TabList(list)); err != nil {
		log.Printf("[NativeHost] failed to forward tab list: %v", err)
	}
}

// forwardAck relays a browser switch acknowledgment to the launcher.
func (h *Host) forwardAck(ctx context.Context, ack SwitchAck) {
	log.Printf("[NativeHost] switch ack: success=%v tab_id=%d window_id=%d title=%q",
		ack.Success, ack.TabID, ack.WindowID, ack.TabTitle)

	errMsg := ""
	if !ack.Success {
		errMsg = "Tab switch failed"
	}
	if _, err := h.launcher.Call(ctx, ipc.TabSwitchResult(ack.Success, errMsg)); err != nil {
		log.Printf("[NativeHost] failed to forward switch ack: %v", err)
	}
}
