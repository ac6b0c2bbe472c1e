package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"quiz-room-service/internal/app"
	"quiz-room-service/internal/domain"
)

// RoomsHandler exposes room creation over plain HTTP; hosts call it before
// opening their websocket.
type RoomsHandler struct {
	service *app.RoomService
	logger  *zap.Logger
}

func NewRoomsHandler(service *app.RoomService, logger *zap.Logger) *RoomsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomsHandler{service: service, logger: logger}
}

type createRoomRequest struct {
	QuizID string `json:"quizId"`
	HostID string `json:"hostId"`
}

type createRoomResponse struct {
	RoomCode string `json:"roomCode"`
}

// CreateRoom handles POST /rooms.
func (h *RoomsHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" {
		http.Error(w, "quizId is required", http.StatusBadRequest)
		return
	}

	code, err := h.service.CreateRoom(r.Context(), req.QuizID, req.HostID)
	if errors.Is(err, domain.ErrQuizNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if errors.Is(err, domain.ErrEmptyQuiz) {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		h.logger.Warn("create room failed", zap.String("quizId", req.QuizID), zap.Error(err))
		http.Error(w, "failed to create room", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(createRoomResponse{RoomCode: code})
}
