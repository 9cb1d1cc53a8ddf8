package tabs

import (
	"sync"
	"testing"
)

func TestCommandQueue_FIFO(t *testing.T) {
	q := NewCommandQueue(0)
	c1 := SwitchCommand{TabID: 1, WindowID: 10}
	c2 := SwitchCommand{TabID: 2, WindowID: 10}
	c3 := SwitchCommand{TabID: 3, WindowID: 20}

	q.Push(c1)
	q.Push(c2)
	q.Push(c3)

	for i, want := range []SwitchCommand{c1, c2, c3} {
		got, ok := q.PopFront()
		if !ok {
			t.Fatalf("pop %d: queue unexpectedly empty", i)
		}
		if got != want {
			t.Errorf("pop %d = %+v, want %+v", i, got, want)
		}
	}

	if _, ok := q.PopFront(); ok {
		t.Error("fourth pop should report empty")
	}
}

func TestCommandQueue_AtMostOnceDelivery(t *testing.T) {
	const commands = 200
	const poppers = 8

	q := NewCommandQueue(0)
	for i := 0; i < commands; i++ {
		q.Push(SwitchCommand{TabID: int32(i)})
	}

	var mu sync.Mutex
	seen := make(map[int32]int)

	var wg sync.WaitGroup
	for p := 0; p < poppers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				cmd, ok := q.PopFront()
				if !ok {
					return
				}
				mu.Lock()
				seen[cmd.TabID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != commands {
		t.Fatalf("popped %d distinct commands, want %d", len(seen), commands)
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("command %d delivered %d times", id, count)
		}
	}
	if q.Len() != 0 {
		t.Errorf("queue length = %d after draining, want 0", q.Len())
	}
}

func TestCommandQueue_ConcurrentPushPop(t *testing.T) {
	q := NewCommandQueue(0)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Push(SwitchCommand{TabID: int32(i)})
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.PopFront()
			}
		}()
	}
	wg.Wait()
}

func TestCommandQueue_DropOldest(t *testing.T) {
	q := NewCommandQueue(2)
	q.Push(SwitchCommand{TabID: 1})
	q.Push(SwitchCommand{TabID: 2})
	q.Push(SwitchCommand{TabID: 3})

	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}

	got, _ := q.PopFront()
	if got.TabID != 2 {
		t.Errorf("head after overflow = %d, want 2 (oldest dropped)", got.TabID)
	}
	got, _ = q.PopFront()
	if got.TabID != 3 {
		t.Errorf("second after overflow = %d, want 3", got.TabID)
	}
}
