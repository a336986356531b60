package sse

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func recvEvent(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("client channel closed")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return nil
}

func TestBroker_PublishReachesSubscribers(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	b.Publish(Event{Type: "ping", Data: map[string]string{"n": "1"}})

	msg := recvEvent(t, ch)
	if !bytes.Contains(msg, []byte("event: ping\n")) {
		t.Errorf("message missing event type: %q", msg)
	}
	if !bytes.Contains(msg, []byte(`"n":"1"`)) {
		t.Errorf("message missing payload: %q", msg)
	}
}

func TestBroker_DocumentEvent(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	b.PublishDocumentEvent("updated", "posts/hello.md")

	msg := recvEvent(t, ch)
	if !bytes.Contains(msg, []byte("event: document.updated\n")) {
		t.Errorf("wrong event type: %q", msg)
	}
	if !bytes.Contains(msg, []byte("posts/hello.md")) {
		t.Errorf("missing path: %q", msg)
	}

	// First document event also triggers a reload.
	reload := recvEvent(t, ch)
	if !bytes.Contains(reload, []byte("event: reload\n")) {
		t.Errorf("expected reload event, got %q", reload)
	}
}

func TestBroker_ReloadThrottled(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	b.PublishDocumentEvent("updated", "a.md")
	b.PublishDocumentEvent("updated", "b.md")

	var events []string
	deadline := time.After(500 * time.Millisecond)
loop:
	for {
		select {
		case msg := <-ch:
			for _, line := range strings.Split(string(msg), "\n") {
				if name, ok := strings.CutPrefix(line, "event: "); ok {
					events = append(events, name)
				}
			}
			if len(events) >= 3 {
				break loop
			}
		case <-deadline:
			break loop
		}
	}

	reloads := 0
	for _, name := range events {
		if name == "reload" {
			reloads++
		}
	}
	if reloads != 1 {
		t.Errorf("expected exactly 1 reload within throttle window, got %d (events %v)", reloads, events)
	}
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("ClientCount = %d, want 1", n)
	}

	b.Unsubscribe(ch)
	if n := b.ClientCount(); n != 0 {
		t.Errorf("ClientCount after unsubscribe = %d, want 0", n)
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
}

func TestBroker_CloseIdempotent(t *testing.T) {
	b := NewBroker(time.Hour)
	ch := b.Subscribe()
	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after broker close")
	}
	// Operations after close must not panic or block.
	b.Publish(Event{Type: "ping"})
	b.PublishDocumentEvent("updated", "x.md")
	if n := b.ClientCount(); n != 0 {
		t.Errorf("ClientCount after close = %d, want 0", n)
	}
}
