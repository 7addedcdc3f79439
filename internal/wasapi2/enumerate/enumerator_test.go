package enumerate

import (
	"testing"
	"time"
)

func TestEnumerator_CoalescesBurstIntoSingleUpdate(t *testing.T) {
	e := New(nil)
	ch := e.Subscribe()

	for i := 0; i < 5; i++ {
		e.scheduleUpdate()
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a coalesced update")
	}

	select {
	case <-ch:
		t.Fatal("expected only one update for the whole burst")
	case <-time.After(coalesceWindow + 50*time.Millisecond):
	}
}

func TestEnumerator_NoUpdateAfterStop(t *testing.T) {
	e := New(nil)
	ch := e.Subscribe()
	e.Stop()
	e.scheduleUpdate()

	select {
	case <-ch:
		t.Fatal("no update should fire after Stop")
	case <-time.After(coalesceWindow + 50*time.Millisecond):
	}
}
