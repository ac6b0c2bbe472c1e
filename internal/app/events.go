package app

import "quiz-room-service/internal/domain"

// Event is a room-scoped broadcast delivered to subscribed connections.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Broadcast event types. State events go to every subscriber; tally events
// go to host subscribers only.
const (
	EventParticipantUpdate = "participant-update"
	EventQuizStarted       = "quiz-started"
	EventNewQuestion       = "new-question"
	EventAnswerUpdate      = "answer-update"
	EventAnswerRevealed    = "answer-revealed"
	EventQuizCompleted     = "quiz-completed"
)

// QuestionPayload carries one question to participants without its answer.
type QuestionPayload struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	QuestionIndex  int      `json:"questionIndex"`
	TotalQuestions int      `json:"totalQuestions"`
	TimeLimit      int      `json:"timeLimit"`
}

// RosterPayload is the live roster view sent to the host.
type RosterPayload struct {
	Participants []domain.RosterEntry `json:"participants"`
}

// TallyPayload is the live per-option vote count for the current question.
type TallyPayload struct {
	QuestionIndex     int   `json:"questionIndex"`
	AnswerCounts      []int `json:"answerCounts"`
	TotalParticipants int   `json:"totalParticipants"`
}

// RevealPayload announces the correct option for a question.
type RevealPayload struct {
	QuestionIndex int `json:"questionIndex"`
	CorrectOption int `json:"correctAnswer"`
}

// CompletedPayload carries the final session result to everyone in the room.
type CompletedPayload struct {
	Results domain.SessionResult `json:"results"`
}
