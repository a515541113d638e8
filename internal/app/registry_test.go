package app

import (
	"testing"
	"time"

	"livequiz-service/internal/domain"
)

func TestRegistryCreateGeneratesUniqueCodes(t *testing.T) {
	registry := NewRegistry()
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		room := registry.Create("host", nil)
		code := room.Code()
		if len(code) != 6 {
			t.Fatalf("expected 6-digit code, got %q", code)
		}
		if code[0] == '0' {
			t.Fatalf("code %q outside the 100000-999999 range", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code %q among live rooms", code)
		}
		seen[code] = true
	}
	if registry.Len() != 500 {
		t.Fatalf("expected 500 live rooms, got %d", registry.Len())
	}
}

func TestRegistryLookupAndDelete(t *testing.T) {
	registry := NewRegistry()
	room := registry.Create("host", []domain.Question{})

	if got, ok := registry.Get(room.Code()); !ok || got != room {
		t.Fatalf("expected lookup to return the created room")
	}

	registry.Delete(room.Code())
	if _, ok := registry.Get(room.Code()); ok {
		t.Fatalf("expected room gone after delete")
	}

	// Idempotent on an already-destroyed code.
	registry.Delete(room.Code())
	registry.Delete("000000")
}

func TestRegistryDeleteCancelsPendingTimer(t *testing.T) {
	registry := NewRegistry()
	room := registry.Create("host", nil)

	fired := make(chan struct{}, 1)
	room.mu.Lock()
	room.timer = time.AfterFunc(20*time.Millisecond, func() { fired <- struct{}{} })
	room.mu.Unlock()

	registry.Delete(room.Code())

	select {
	case <-fired:
		t.Fatalf("timer fired after room destruction")
	case <-time.After(50 * time.Millisecond):
	}
	if !room.closed {
		t.Fatalf("expected room marked closed")
	}
}
