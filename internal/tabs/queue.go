package tabs

import (
	"log"
	"sync"
)

// CommandQueue is the single FIFO of pending switch commands shared by
// all transports. Push appends, PopFront removes and returns the head;
// a popped command is delivered to exactly one consumer.
//
// The queue is unbounded by default, matching the behavior the browser
// counterpart expects. A positive maxPending enables a drop-oldest
// policy for deployments where no consumer may be polling.
type CommandQueue struct {
	mu         sync.Mutex
	commands   []SwitchCommand
	maxPending int
}

// NewCommandQueue creates a queue. maxPending <= 0 means unbounded.
func NewCommandQueue(maxPending int) *CommandQueue {
	return &CommandQueue{maxPending: maxPending}
}

// Push appends a command to the tail. When a capacity is configured and
// the queue is full, the oldest command is dropped to make room.
func (q *CommandQueue) Push(cmd SwitchCommand) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.maxPending > 0 && len(q.commands) >= q.maxPending {
		dropped := q.commands[0]
		q.commands = q.commands[1:]
		log.Printf("[CommandQueue] capacity %d reached, dropping oldest command (tab_id=%d)",
			q.maxPending, dropped.TabID)
	}
	q.commands = append(q.commands, cmd)
}

// PopFront removes and returns the head command. The second return is
// false when the queue is empty.
func (q *CommandQueue) PopFront() (SwitchCommand, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.commands) == 0 {
		return SwitchCommand{}, false
	}
	cmd := q.commands[0]
	q.commands = q.commands[1:]
	return cmd, true
}

// Len returns the number of pending commands.
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}
