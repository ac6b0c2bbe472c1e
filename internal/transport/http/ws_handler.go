package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-room-service/internal/app"
	"quiz-room-service/internal/domain"
)

// WSHandler speaks the room protocol over websockets: a closed set of
// inbound message kinds, each with its own payload, validated at the edge.
type WSHandler struct {
	service  *app.RoomService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.RoomService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
	IsHost     bool   `json:"isHost"`
}

type startQuizPayload struct {
	RoomCode string               `json:"roomCode"`
	Settings *domain.RoomSettings `json:"settings"`
}

type roomOnlyPayload struct {
	RoomCode string `json:"roomCode"`
}

type nextQuestionPayload struct {
	RoomCode string `json:"roomCode"`
	// QuestionIndex, when set, advances only if that question is still
	// current, protecting an index-aware host UI from racing the timer.
	QuestionIndex *int `json:"questionIndex,omitempty"`
}

type submitAnswerPayload struct {
	RoomCode       string  `json:"roomCode"`
	QuestionIndex  int     `json:"questionIndex"`
	SelectedOption int     `json:"selectedOption"`
	TimeSpent      float64 `json:"timeSpent"`
}

type revealAnswerPayload struct {
	RoomCode      string `json:"roomCode"`
	QuestionIndex int    `json:"questionIndex"`
}

type hostJoinedPayload struct {
	RoomCode         string `json:"roomCode"`
	ParticipantCount int    `json:"participantCount"`
}

type participantJoinedPayload struct {
	RoomCode        string `json:"roomCode"`
	PlayerName      string `json:"playerName"`
	CurrentQuestion int    `json:"currentQuestion"`
}

type answerSubmittedPayload struct {
	QuestionIndex  int `json:"questionIndex"`
	SelectedOption int `json:"selectedOption"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs one connection's session: a writer
// goroutine owns the socket for writes, a forwarder relays room broadcasts,
// and the read loop dispatches inbound messages to the room service.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		writeOutbound(conn, send, h.logger)
	}()

	var (
		joinedRoom  string
		joinedHost  bool
		cancelSub   func()
		updatesDone chan struct{}
	)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		switch inbound.Type {
		case "join-room":
			var payload joinRoomPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.RoomCode == "" {
				send <- errorMessage("invalid join-room payload")
				continue
			}
			if joinedRoom != "" {
				send <- errorMessage("already joined a room")
				continue
			}
			info, err := h.service.Join(payload.RoomCode, connID, payload.PlayerName, payload.IsHost)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			updates, cancel, err := h.service.Subscribe(payload.RoomCode, payload.IsHost)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			joinedRoom = payload.RoomCode
			joinedHost = payload.IsHost
			cancelSub = cancel
			updatesDone = make(chan struct{})
			go forwardEvents(updates, send, closeSignals, updatesDone)

			if payload.IsHost {
				send <- outboundMessage[any]{Type: "host-joined", Payload: hostJoinedPayload{
					RoomCode:         info.RoomCode,
					ParticipantCount: info.ParticipantCount,
				}}
			} else {
				send <- outboundMessage[any]{Type: "participant-joined", Payload: participantJoinedPayload{
					RoomCode:        info.RoomCode,
					PlayerName:      payload.PlayerName,
					CurrentQuestion: info.CurrentIndex,
				}}
			}

		case "start-quiz":
			var payload startQuizPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.RoomCode == "" {
				send <- errorMessage("invalid start-quiz payload")
				continue
			}
			settings := domain.DefaultRoomSettings()
			if payload.Settings != nil {
				settings = *payload.Settings
			}
			if err := h.service.Start(payload.RoomCode, settings); err != nil {
				send <- errorMessage(err.Error())
			}

		case "next-question":
			var payload nextQuestionPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.RoomCode == "" {
				send <- errorMessage("invalid next-question payload")
				continue
			}
			var err error
			if payload.QuestionIndex != nil {
				err = h.service.AdvanceFrom(payload.RoomCode, *payload.QuestionIndex)
			} else {
				err = h.service.Advance(payload.RoomCode)
			}
			if err != nil {
				send <- errorMessage(err.Error())
			}

		case "submit-answer":
			var payload submitAnswerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.RoomCode == "" {
				send <- errorMessage("invalid submit-answer payload")
				continue
			}
			_, _, err := h.service.SubmitAnswer(payload.RoomCode, connID, payload.QuestionIndex, payload.SelectedOption, payload.TimeSpent)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "answer-submitted", Payload: answerSubmittedPayload{
				QuestionIndex:  payload.QuestionIndex,
				SelectedOption: payload.SelectedOption,
			}}

		case "reveal-answer":
			var payload revealAnswerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.RoomCode == "" {
				send <- errorMessage("invalid reveal-answer payload")
				continue
			}
			if err := h.service.Reveal(payload.RoomCode, payload.QuestionIndex); err != nil {
				send <- errorMessage(err.Error())
			}

		case "pause-timer":
			var payload roomOnlyPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.RoomCode == "" {
				send <- errorMessage("invalid pause-timer payload")
				continue
			}
			if err := h.service.PauseTimer(payload.RoomCode); err != nil {
				send <- errorMessage(err.Error())
			}

		case "resume-timer":
			var payload roomOnlyPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.RoomCode == "" {
				send <- errorMessage("invalid resume-timer payload")
				continue
			}
			if err := h.service.ResumeTimer(payload.RoomCode); err != nil {
				send <- errorMessage(err.Error())
			}

		default:
			send <- errorMessage("unsupported message type")
		}
	}

	close(closeSignals)
	if updatesDone != nil {
		<-updatesDone
	}
	close(send)
	<-writerDone
	if cancelSub != nil {
		cancelSub()
	}
	if joinedRoom != "" && !joinedHost {
		h.service.Disconnect(joinedRoom, connID)
	}
}

func forwardEvents(updates <-chan app.Event, send chan<- outboundMessage[any], closeSignals <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-updates:
			if !ok {
				return
			}
			select {
			case send <- outboundMessage[any]{Type: event.Type, Payload: event.Payload}:
			case <-closeSignals:
				return
			}
		case <-closeSignals:
			return
		}
	}
}

// writeOutbound owns the socket for writes. On a write error it closes the
// connection, which fails the pending read, and keeps draining send until it
// is closed so the read loop can never block on a dead writer.
func writeOutbound(conn *websocket.Conn, send <-chan outboundMessage[any], logger *zap.Logger) {
	failed := false
	for msg := range send {
		if failed {
			continue
		}
		if err := conn.WriteJSON(msg); err != nil {
			logger.Debug("ws write error", zap.Error(err))
			failed = true
			_ = conn.Close()
		}
	}
}

func errorMessage(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
