package app

import (
	"sync"
	"time"

	"quiz-room-service/internal/domain"
)

// Room owns one live quiz session: lifecycle, roster, current question,
// live vote counts and the countdown timer. Every mutating call serializes
// on the room mutex, so timer expiry and host actions can never interleave.
type Room struct {
	code      string
	quiz      domain.Quiz
	hostID    string
	createdAt time.Time
	now       func() time.Time

	// onComplete receives the final result once, at the active→completed
	// transition. Invoked outside the room lock.
	onComplete func(domain.SessionResult)

	mu           sync.Mutex
	status       domain.RoomStatus
	settings     domain.RoomSettings
	current      int
	startedAt    time.Time
	endedAt      time.Time
	lastActivity time.Time
	participants map[string]*domain.Participant
	departed     []*domain.Participant
	voteCounts   []int
	timer        *questionTimer
	subscribers  map[*subscriber]struct{}
}

type subscriber struct {
	ch   chan Event
	host bool
}

func newRoom(code string, quiz domain.Quiz, hostID string) *Room {
	return newRoomWithClock(code, quiz, hostID, time.Now)
}

// newRoomWithClock allows deterministic timestamps in tests.
func newRoomWithClock(code string, quiz domain.Quiz, hostID string, now func() time.Time) *Room {
	return &Room{
		code:         code,
		quiz:         quiz,
		hostID:       hostID,
		createdAt:    now(),
		now:          now,
		status:       domain.StatusWaiting,
		settings:     domain.DefaultRoomSettings(),
		current:      -1,
		lastActivity: now(),
		participants: make(map[string]*domain.Participant),
		subscribers:  make(map[*subscriber]struct{}),
	}
}

// Code returns the room's short join code.
func (r *Room) Code() string { return r.code }

// QuizID returns the identifier of the quiz this room runs.
func (r *Room) QuizID() string { return r.quiz.ID }

// Status returns the room's lifecycle state.
func (r *Room) Status() domain.RoomStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// CurrentIndex returns the current question index, -1 before start.
func (r *Room) CurrentIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// IsEmpty reports whether the room has no live participants.
func (r *Room) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants) == 0
}

// Join adds a participant to the roster and notifies the host. Late joins
// during an active quiz are allowed; the returned index tells the joiner
// whether a question is in progress (-1 means still waiting). Each join is
// a fresh participant, a reconnect does not resume prior answers.
func (r *Room) Join(connID, name string) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == domain.StatusCompleted {
		return 0, 0, domain.ErrRoomClosed
	}

	r.participants[connID] = &domain.Participant{
		ID:       connID,
		Name:     name,
		JoinedAt: r.now(),
	}
	r.lastActivity = r.now()
	r.broadcastHostLocked(Event{Type: EventParticipantUpdate, Payload: r.rosterLocked()})
	return r.current, len(r.participants), nil
}

// ParticipantCount returns the size of the live roster.
func (r *Room) ParticipantCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants)
}

// Start moves the room from waiting to active, applies settings, resets the
// vote counts for question 0, starts the countdown and broadcasts the first
// question to everyone.
func (r *Room) Start(settings domain.RoomSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.StatusWaiting {
		return domain.ErrInvalidTransition
	}
	if len(r.participants) == 0 {
		return domain.ErrEmptyRoom
	}
	if len(r.quiz.Questions) == 0 {
		return domain.ErrEmptyQuiz
	}

	if settings.QuestionTimeLimit <= 0 {
		settings.QuestionTimeLimit = domain.DefaultRoomSettings().QuestionTimeLimit
	}
	r.settings = settings
	r.status = domain.StatusActive
	r.current = 0
	r.startedAt = r.now()
	r.lastActivity = r.startedAt
	r.resetVotesLocked()
	r.restartTimerLocked()
	r.broadcastLocked(Event{Type: EventQuizStarted, Payload: r.questionPayloadLocked()})
	return nil
}

// Advance moves the room to the next question, or to completed when the
// question list is exhausted. Calling it again after completion is a no-op
// reported as ErrAlreadyCompleted.
func (r *Room) Advance() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.advanceLocked()
}

// AdvanceFrom advances only while expectedIndex is still current. The index
// is consumed exactly once: when timer expiry and a host action race, the
// loser observes the already-updated index and becomes a harmless no-op.
func (r *Room) AdvanceFrom(expectedIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == domain.StatusCompleted {
		return domain.ErrAlreadyCompleted
	}
	if expectedIndex != r.current {
		return domain.ErrStaleQuestion
	}
	return r.advanceLocked()
}

func (r *Room) advanceLocked() error {
	switch r.status {
	case domain.StatusCompleted:
		return domain.ErrAlreadyCompleted
	case domain.StatusActive:
	default:
		return domain.ErrInvalidTransition
	}

	next := r.current + 1
	if next >= len(r.quiz.Questions) {
		r.completeLocked()
		return nil
	}

	r.current = next
	r.lastActivity = r.now()
	r.resetVotesLocked()
	r.restartTimerLocked()
	// Vote counts are reset before anyone can observe the new question.
	r.broadcastLocked(Event{Type: EventNewQuestion, Payload: r.questionPayloadLocked()})
	return nil
}

func (r *Room) completeLocked() {
	r.status = domain.StatusCompleted
	r.endedAt = r.now()
	r.lastActivity = r.endedAt
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}

	result := computeResults(r.code, r.quiz, r.hostID, r.allParticipantsLocked(), r.startedAt, r.endedAt)
	r.broadcastLocked(Event{Type: EventQuizCompleted, Payload: CompletedPayload{Results: result}})
	if r.onComplete != nil {
		go r.onComplete(result)
	}
}

// SubmitAnswer records one answer for the current question and returns the
// updated vote counts. Answers for any other index are rejected, which
// guards against a submission racing a concurrent advance.
func (r *Room) SubmitAnswer(connID string, questionIndex, selectedOption int, timeSpent float64) ([]int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.StatusActive {
		return nil, 0, domain.ErrInvalidTransition
	}
	if questionIndex != r.current {
		return nil, 0, domain.ErrStaleQuestion
	}
	participant, ok := r.participants[connID]
	if !ok {
		return nil, 0, domain.ErrParticipantNotFound
	}
	question := r.quiz.Questions[questionIndex]
	if selectedOption < 0 || selectedOption >= len(question.Options) {
		return nil, 0, domain.ErrInvalidOption
	}
	for _, answer := range participant.Answers {
		if answer.QuestionIndex == questionIndex {
			return nil, 0, domain.ErrDuplicateAnswer
		}
	}

	participant.Answers = append(participant.Answers, domain.Answer{
		QuestionIndex:  questionIndex,
		SelectedOption: selectedOption,
		Correct:        selectedOption == question.CorrectOption,
		TimeSpent:      timeSpent,
		AnsweredAt:     r.now(),
	})
	r.voteCounts[selectedOption]++
	r.lastActivity = r.now()

	counts := make([]int, len(r.voteCounts))
	copy(counts, r.voteCounts)

	if r.settings.ShowLiveAnswers {
		r.broadcastHostLocked(Event{Type: EventAnswerUpdate, Payload: TallyPayload{
			QuestionIndex:     questionIndex,
			AnswerCounts:      counts,
			TotalParticipants: len(r.participants),
		}})
	}
	return counts, len(r.participants), nil
}

// Reveal broadcasts the correct option for the current question.
func (r *Room) Reveal(questionIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.StatusActive {
		return domain.ErrInvalidTransition
	}
	if questionIndex != r.current {
		return domain.ErrStaleQuestion
	}
	r.revealLocked()
	return nil
}

func (r *Room) revealLocked() {
	r.broadcastLocked(Event{Type: EventAnswerRevealed, Payload: RevealPayload{
		QuestionIndex: r.current,
		CorrectOption: r.quiz.Questions[r.current].CorrectOption,
	}})
}

// PauseTimer freezes the current countdown.
func (r *Room) PauseTimer() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Pause()
	}
}

// ResumeTimer continues a frozen countdown.
func (r *Room) ResumeTimer() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Resume()
	}
}

// TimeRemaining reports the seconds left on the current question, 0 when no
// timer is running. Useful for state sync on reconnect.
func (r *Room) TimeRemaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer == nil {
		return 0
	}
	return r.timer.Remaining()
}

// Disconnect removes a connection's participant from the live roster. The
// participant's recorded answers are retained so they still count toward
// the final scoring.
func (r *Room) Disconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	participant, ok := r.participants[connID]
	if !ok {
		return
	}
	delete(r.participants, connID)
	if len(participant.Answers) > 0 {
		r.departed = append(r.departed, participant)
	}
	r.lastActivity = r.now()
	r.broadcastHostLocked(Event{Type: EventParticipantUpdate, Payload: r.rosterLocked()})
}

// Subscribe registers a listener for room broadcasts. Host subscribers also
// receive host-only events. The caller must invoke cancel to avoid leaks.
func (r *Room) Subscribe(host bool) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, 16), host: host}

	r.mu.Lock()
	r.subscribers[sub] = struct{}{}
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[sub]; ok {
			delete(r.subscribers, sub)
			close(sub.ch)
		}
		r.mu.Unlock()
	}
	return sub.ch, cancel
}

// shutdown stops the timer ahead of eviction from the registry.
func (r *Room) shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// handleExpiry is the timer callback. The index pins the question the timer
// was started for: if the host already advanced, the expiry is stale and
// ignored, so expiry and manual advance can never double-fire.
func (r *Room) handleExpiry(questionIndex int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.StatusActive || questionIndex != r.current {
		return
	}
	if r.settings.AutoRevealAnswers {
		r.revealLocked()
	}
	if r.settings.AutoAdvance {
		_ = r.advanceLocked()
	}
}

func (r *Room) restartTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
	}
	index := r.current
	r.timer = startQuestionTimer(r.settings.QuestionTimeLimit, func() {
		r.handleExpiry(index)
	})
}

func (r *Room) resetVotesLocked() {
	r.voteCounts = make([]int, len(r.quiz.Questions[r.current].Options))
}

func (r *Room) questionPayloadLocked() QuestionPayload {
	question := r.quiz.Questions[r.current]
	return QuestionPayload{
		Question:       question.Prompt,
		Options:        question.Options,
		QuestionIndex:  r.current,
		TotalQuestions: len(r.quiz.Questions),
		TimeLimit:      r.settings.QuestionTimeLimit,
	}
}

func (r *Room) rosterLocked() RosterPayload {
	entries := make([]domain.RosterEntry, 0, len(r.participants))
	for _, participant := range r.participants {
		entries = append(entries, domain.RosterEntry{ID: participant.ID, Name: participant.Name})
	}
	return RosterPayload{Participants: entries}
}

func (r *Room) allParticipantsLocked() []*domain.Participant {
	all := make([]*domain.Participant, 0, len(r.participants)+len(r.departed))
	for _, participant := range r.participants {
		all = append(all, participant)
	}
	all = append(all, r.departed...)
	return all
}

// broadcastLocked fans a state event out to every subscriber. On a full
// buffer the oldest event is dropped so a slow client cannot stall the room.
func (r *Room) broadcastLocked(event Event) {
	for sub := range r.subscribers {
		deliver(sub.ch, event)
	}
}

func (r *Room) broadcastHostLocked(event Event) {
	for sub := range r.subscribers {
		if sub.host {
			deliver(sub.ch, event)
		}
	}
}

func deliver(ch chan Event, event Event) {
	select {
	case ch <- event:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- event
	}
}
