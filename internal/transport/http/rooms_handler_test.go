package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
)

func TestCreateRoomEndpoint(t *testing.T) {
	server, service := newTestServer(t)

	body := bytes.NewBufferString(`{"quizId":"quiz-1","hostId":"host-1"}`)
	resp, err := http.Post(server.URL+"/rooms", "application/json", body)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var payload struct {
		RoomCode string `json:"roomCode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.RoomCode) != 6 {
		t.Fatalf("expected 6-char room code, got %q", payload.RoomCode)
	}
	if _, err := service.Room(payload.RoomCode); err != nil {
		t.Fatalf("created room not registered: %v", err)
	}
}

func TestCreateRoomUnknownQuizIs404(t *testing.T) {
	server, _ := newTestServer(t)

	body := bytes.NewBufferString(`{"quizId":"quiz-missing","hostId":"host-1"}`)
	resp, err := http.Post(server.URL+"/rooms", "application/json", body)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateRoomEmptyQuizIs422(t *testing.T) {
	server, _ := newTestServer(t)

	body := bytes.NewBufferString(`{"quizId":"quiz-empty","hostId":"host-1"}`)
	resp, err := http.Post(server.URL+"/rooms", "application/json", body)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCreateRoomRequiresPost(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/rooms")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}
