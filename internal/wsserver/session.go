package wsserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/takeru911/my-launcher/internal/tabs"
)

// writeWait bounds a single frame write so one stuck client cannot hang
// the session forever.
const writeWait = 10 * time.Second

// inboundFrame is one data frame read off the socket.
type inboundFrame struct {
	messageType int
	data        []byte
}

// session is one extension connection. All writes happen on the run
// loop goroutine; a separate reader goroutine feeds inbound frames
// through a channel so the loop can race them against the command-poll
// ticker, whichever is ready first.
type session struct {
	id    string
	conn  *websocket.Conn
	store *tabs.Store
	queue *tabs.CommandQueue
	poll  time.Duration
}

func newSession(conn *websocket.Conn, store *tabs.Store, queue *tabs.CommandQueue, poll time.Duration) *session {
	return &session{
		id:    uuid.NewString()[:8],
		conn:  conn,
		store: store,
		queue: queue,
		poll:  poll,
	}
}

// run drives the session until the client closes, the context ends, or
// an I/O error occurs. Reconnection is the extension's responsibility.
func (s *session) run(ctx context.Context) {
	s.conn.SetPingHandler(func(appData string) error {
		return s.conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
	})

	// The extension gets the current snapshot immediately on connect.
	if err := s.write(newEvent(EventTabsUpdated, tabsResult(s.store.All()))); err != nil {
		log.Printf("[WebSocket] session %s: initial push failed: %v", s.id, err)
		return
	}

	inbound := make(chan inboundFrame)
	quit := make(chan struct{})
	readerDone := make(chan struct{})
	go s.readLoop(inbound, quit, readerDone)
	defer func() {
		close(quit)
		s.conn.Close()
		<-readerDone
	}()

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case frame, ok := <-inbound:
			if !ok {
				return
			}
			if err := s.handleFrame(frame); err != nil {
				log.Printf("[WebSocket] session %s: %v", s.id, err)
				return
			}

		case <-ticker.C:
			cmd, ok := s.queue.PopFront()
			if !ok {
				continue
			}
			log.Printf("[WebSocket] session %s: pushing switch request tab_id=%d window_id=%d",
				s.id, cmd.TabID, cmd.WindowID)
			event := newEvent(EventTabSwitchRequested, cmd)
			if err := s.write(event); err != nil {
				log.Printf("[WebSocket] session %s: push failed: %v", s.id, err)
				return
			}
		}
	}
}

// readLoop feeds data frames to the run loop. It owns all reads; it
// exits, closing inbound, when the connection errors or closes.
func (s *session) readLoop(inbound chan<- inboundFrame, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer close(inbound)

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[WebSocket] session %s: closed by client", s.id)
			} else if !websocket.IsUnexpectedCloseError(err) {
				log.Printf("[WebSocket] session %s: read error: %v", s.id, err)
			}
			return
		}
		select {
		case inbound <- inboundFrame{messageType: messageType, data: data}:
		case <-quit:
			return
		}
	}
}

// handleFrame processes one inbound data frame on the run loop.
func (s *session) handleFrame(frame inboundFrame) error {
	if frame.messageType == websocket.BinaryMessage {
		log.Printf("[WebSocket] session %s: ignoring binary frame (%d bytes)", s.id, len(frame.data))
		return nil
	}

	var msg Message
	if err := json.Unmarshal(frame.data, &msg); err != nil {
		log.Printf("[WebSocket] session %s: unparseable message: %v", s.id, err)
		return nil
	}

	if msg.Type != TypeRequest {
		log.Printf("[WebSocket] session %s: ignoring non-request message type %q", s.id, msg.Type)
		return nil
	}

	resp := s.handleRequest(msg.ID, msg.Method, msg.Params)
	if err := s.write(resp); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// handleRequest dispatches one request to the shared state.
func (s *session) handleRequest(id, method string, params json.RawMessage) Message {
	switch method {
	case MethodGetTabs:
		list := s.store.All()
		log.Printf("[WebSocket] session %s: getTabs, returning %d tabs", s.id, len(list))
		return responseOK(id, tabsResult(list))

	case MethodUpdateTabs:
		var p UpdateTabsParams
		if err := unmarshalParams(params, &p); err != nil {
			return responseError(id, 400, "Invalid updateTabs params")
		}
		log.Printf("[WebSocket] session %s: updateTabs with %d tabs", s.id, len(p.Tabs))
		s.store.Replace(p.Tabs)
		return responseOK(id, SuccessResult{Success: true})

	case MethodSwitchToTab:
		var p SwitchToTabParams
		if err := unmarshalParams(params, &p); err != nil {
			return responseError(id, 400, "Invalid switchToTab params")
		}
		log.Printf("[WebSocket] session %s: switchToTab tab_id=%d window_id=%d", s.id, p.TabID, p.WindowID)
		// Success means accepted: the command is queued for whichever
		// transport polls it next.
		s.queue.Push(tabs.SwitchCommand{TabID: p.TabID, WindowID: p.WindowID})
		return responseOK(id, SuccessResult{Success: true})

	case MethodKeepAlive:
		return responseOK(id, PongResult{Timestamp: time.Now().UnixMilli()})

	default:
		log.Printf("[WebSocket] session %s: unknown method %q", s.id, method)
		return responseError(id, 404, fmt.Sprintf("Unknown method: %s", method))
	}
}

// write sends one message as a text frame with a bounded deadline.
func (s *session) write(msg Message) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}

// unmarshalParams decodes request params, rejecting a missing params
// object outright.
func unmarshalParams(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return fmt.Errorf("missing params")
	}
	return json.Unmarshal(params, v)
}
