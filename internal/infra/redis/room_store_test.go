package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-room-service/internal/app"
)

func TestRoomStoreSetsAndClearsLivenessKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRoomStore(client, time.Minute)

	store.Put("ROOM01", &app.Room{})
	if !mr.Exists("room:live:ROOM01") {
		t.Fatalf("expected liveness key to be set")
	}
	if _, ok := store.Get("ROOM01"); !ok {
		t.Fatalf("expected room present in local map")
	}

	store.Delete("ROOM01")
	if mr.Exists("room:live:ROOM01") {
		t.Fatalf("expected liveness key to be removed")
	}
	if _, ok := store.Get("ROOM01"); ok {
		t.Fatalf("expected room removed from local map")
	}
}
