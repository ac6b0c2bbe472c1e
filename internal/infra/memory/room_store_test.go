package memory

import (
	"testing"

	"quiz-room-service/internal/app"
)

func TestRoomStoreLifecycle(t *testing.T) {
	store := NewRoomStore()

	if _, ok := store.Get("ROOM01"); ok {
		t.Fatalf("expected empty store")
	}

	room := &app.Room{}
	store.Put("ROOM01", room)
	if got, ok := store.Get("ROOM01"); !ok || got != room {
		t.Fatalf("expected stored room back")
	}

	seen := 0
	store.Range(func(code string, _ *app.Room) bool {
		if code != "ROOM01" {
			t.Fatalf("unexpected code %q", code)
		}
		seen++
		return true
	})
	if seen != 1 {
		t.Fatalf("expected one room in range, got %d", seen)
	}

	store.Delete("ROOM01")
	if _, ok := store.Get("ROOM01"); ok {
		t.Fatalf("expected room removed")
	}
}
