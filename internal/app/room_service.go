package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"quiz-room-service/internal/domain"
)

// RoomRepository abstracts how live rooms are tracked (in-memory, Redis-marked, etc).
type RoomRepository interface {
	Put(code string, room *Room)
	Get(code string) (*Room, bool)
	Delete(code string)
	Range(fn func(code string, room *Room) bool)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ResultWriter persists the final record of a completed room.
type ResultWriter interface {
	SaveResult(ctx context.Context, result domain.SessionResult) error
}

// ServiceOptions tune room lifecycle housekeeping. Zero values pick defaults.
type ServiceOptions struct {
	QuizFetchTimeout   time.Duration // room creation aborts if the bank is slower
	CompletedRetention time.Duration // completed rooms linger this long before eviction
	IdleTimeout        time.Duration // empty waiting rooms are evicted after this
}

const (
	defaultQuizFetchTimeout   = 5 * time.Second
	defaultCompletedRetention = 5 * time.Minute
	defaultIdleTimeout        = 15 * time.Minute

	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength   = 6
)

// RoomService contains the room orchestration use cases: the registry of
// live rooms plus creation, lookup and garbage collection.
type RoomService struct {
	rooms   RoomRepository
	quizzes QuizRepository
	results ResultWriter
	logger  *zap.Logger
	opts    ServiceOptions

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRoomService(rooms RoomRepository, quizzes QuizRepository, results ResultWriter, logger *zap.Logger, opts ServiceOptions) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.QuizFetchTimeout <= 0 {
		opts.QuizFetchTimeout = defaultQuizFetchTimeout
	}
	if opts.CompletedRetention <= 0 {
		opts.CompletedRetention = defaultCompletedRetention
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	return &RoomService{
		rooms:   rooms,
		quizzes: quizzes,
		results: results,
		logger:  logger,
		opts:    opts,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateRoom fetches the quiz, allocates a collision-free code and registers
// a waiting room. A slow or failing question bank aborts creation; no room
// is left half-initialized.
func (s *RoomService) CreateRoom(ctx context.Context, quizID, hostID string) (string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.QuizFetchTimeout)
	defer cancel()

	quiz, err := s.quizzes.GetQuiz(fetchCtx, quizID)
	if err != nil {
		return "", err
	}
	if len(quiz.Questions) == 0 {
		return "", domain.ErrEmptyQuiz
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.generateCodeLocked()
	room := newRoom(code, quiz, hostID)
	room.onComplete = func(result domain.SessionResult) {
		s.persistResult(result)
	}
	s.rooms.Put(code, room)
	s.logger.Info("room created",
		zap.String("roomCode", code),
		zap.String("quizId", quizID),
		zap.Int("questions", len(quiz.Questions)))
	return code, nil
}

// Room looks a live room up by code.
func (s *RoomService) Room(code string) (*Room, error) {
	room, ok := s.rooms.Get(code)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// JoinInfo tells a joiner where the room currently stands.
type JoinInfo struct {
	RoomCode         string
	CurrentIndex     int // -1 while the room is still waiting
	ParticipantCount int
}

// Join registers a participant connection in a room. Hosts attach without
// becoming participants.
func (s *RoomService) Join(code, connID, name string, isHost bool) (JoinInfo, error) {
	room, err := s.Room(code)
	if err != nil {
		return JoinInfo{}, err
	}
	if isHost {
		return JoinInfo{
			RoomCode:         code,
			CurrentIndex:     room.CurrentIndex(),
			ParticipantCount: room.ParticipantCount(),
		}, nil
	}
	index, count, err := room.Join(connID, name)
	if err != nil {
		return JoinInfo{}, err
	}
	return JoinInfo{RoomCode: code, CurrentIndex: index, ParticipantCount: count}, nil
}

// Start begins the quiz in a waiting room.
func (s *RoomService) Start(code string, settings domain.RoomSettings) error {
	room, err := s.Room(code)
	if err != nil {
		return err
	}
	return room.Start(settings)
}

// Advance moves a room to its next question or to completion.
func (s *RoomService) Advance(code string) error {
	room, err := s.Room(code)
	if err != nil {
		return err
	}
	return room.Advance()
}

// AdvanceFrom advances only if questionIndex is still current, so an
// index-aware caller cannot double-fire against the room timer.
func (s *RoomService) AdvanceFrom(code string, questionIndex int) error {
	room, err := s.Room(code)
	if err != nil {
		return err
	}
	return room.AdvanceFrom(questionIndex)
}

// SubmitAnswer records a participant's answer for the current question.
func (s *RoomService) SubmitAnswer(code, connID string, questionIndex, selectedOption int, timeSpent float64) ([]int, int, error) {
	room, err := s.Room(code)
	if err != nil {
		return nil, 0, err
	}
	return room.SubmitAnswer(connID, questionIndex, selectedOption, timeSpent)
}

// Reveal broadcasts the correct option for the current question.
func (s *RoomService) Reveal(code string, questionIndex int) error {
	room, err := s.Room(code)
	if err != nil {
		return err
	}
	return room.Reveal(questionIndex)
}

// PauseTimer freezes a room's countdown; ResumeTimer continues it.
func (s *RoomService) PauseTimer(code string) error {
	room, err := s.Room(code)
	if err != nil {
		return err
	}
	room.PauseTimer()
	return nil
}

func (s *RoomService) ResumeTimer(code string) error {
	room, err := s.Room(code)
	if err != nil {
		return err
	}
	room.ResumeTimer()
	return nil
}

// Subscribe attaches a listener to a room's broadcasts.
func (s *RoomService) Subscribe(code string, isHost bool) (<-chan Event, func(), error) {
	room, err := s.Room(code)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := room.Subscribe(isHost)
	return ch, cancel, nil
}

// Disconnect tears down one connection's presence in a room. Room-level
// work continues regardless; only roster bookkeeping changes.
func (s *RoomService) Disconnect(code, connID string) {
	room, err := s.Room(code)
	if err != nil {
		return
	}
	room.Disconnect(connID)
}

// Sweep evicts terminated rooms: completed ones past the retention window
// and waiting rooms that sat empty past the idle timeout.
func (s *RoomService) Sweep(now time.Time) {
	var evict []string
	s.rooms.Range(func(code string, room *Room) bool {
		room.mu.Lock()
		expired := false
		switch room.status {
		case domain.StatusCompleted:
			expired = now.Sub(room.endedAt) >= s.opts.CompletedRetention
		case domain.StatusWaiting:
			expired = len(room.participants) == 0 && now.Sub(room.lastActivity) >= s.opts.IdleTimeout
		}
		room.mu.Unlock()
		if expired {
			evict = append(evict, code)
		}
		return true
	})

	for _, code := range evict {
		if room, ok := s.rooms.Get(code); ok {
			room.shutdown()
		}
		s.rooms.Delete(code)
		s.logger.Info("room evicted", zap.String("roomCode", code))
	}
}

// persistResult hands the completed room's record to the external writer.
// Failures are logged; the in-memory completed state stands either way.
func (s *RoomService) persistResult(result domain.SessionResult) {
	if s.results == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.results.SaveResult(ctx, result); err != nil {
		s.logger.Warn("persist session result failed",
			zap.String("roomCode", result.RoomCode),
			zap.Error(err))
		return
	}
	s.logger.Info("session result persisted",
		zap.String("roomCode", result.RoomCode),
		zap.Int("participants", result.TotalParticipants))
}

func (s *RoomService) generateCodeLocked() string {
	for {
		buf := make([]byte, roomCodeLength)
		for i := range buf {
			buf[i] = roomCodeAlphabet[s.rnd.Intn(len(roomCodeAlphabet))]
		}
		code := string(buf)
		if _, taken := s.rooms.Get(code); !taken {
			return code
		}
	}
}
