package domain

import "time"

// RoomStatus is the lifecycle state of a room.
type RoomStatus string

const (
	StatusWaiting   RoomStatus = "waiting"
	StatusActive    RoomStatus = "active"
	StatusCompleted RoomStatus = "completed"
)

// Question models an MCQ question with one correct option index.
type Question struct {
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctAnswer"`
}

// Quiz is an ordered collection of questions, fetched once at room creation.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions"`
}

// RoomSettings tune how a single room runs its questions.
type RoomSettings struct {
	QuestionTimeLimit int  `json:"questionTimeLimit"` // seconds
	AutoAdvance       bool `json:"autoAdvance"`       // timer expiry moves to the next question
	AutoRevealAnswers bool `json:"autoRevealAnswers"` // broadcast the correct option on expiry
	ShowLiveAnswers   bool `json:"showLiveAnswers"`   // host sees live tallies
}

// DefaultRoomSettings is what hosts get when they start without overrides.
func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		QuestionTimeLimit: 30,
		AutoAdvance:       true,
		AutoRevealAnswers: true,
		ShowLiveAnswers:   true,
	}
}

// Answer is a single recorded submission. Correct is fixed at submission time.
type Answer struct {
	QuestionIndex  int       `json:"questionIndex"`
	SelectedOption int       `json:"selectedOption"`
	Correct        bool      `json:"isCorrect"`
	TimeSpent      float64   `json:"timeSpent"` // seconds
	AnsweredAt     time.Time `json:"answeredAt"`
}

// Participant is one joined connection answering questions in a room.
// Answers outlive the live roster entry so a disconnected participant
// can still be scored at completion.
type Participant struct {
	ID       string    `json:"id"` // connection identity
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
	Answers  []Answer  `json:"answers"`
	Score    int       `json:"score"` // percentage, populated at completion
}

// RosterEntry is the roster view broadcast to the host.
type RosterEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ParticipantResult is one participant's final line in a SessionResult.
type ParticipantResult struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Score          int      `json:"score"` // percentage
	CorrectAnswers int      `json:"correctAnswers"`
	TotalQuestions int      `json:"totalQuestions"`
	Answers        []Answer `json:"answers"`
}

// QuestionStats aggregates every answer recorded for one question.
type QuestionStats struct {
	QuestionIndex    int     `json:"questionIndex"`
	TotalResponses   int     `json:"totalResponses"`
	OptionCounts     []int   `json:"optionDistribution"`
	Accuracy         int     `json:"accuracy"`         // percentage, 0 when no responses
	AverageTimeSpent float64 `json:"averageTimeSpent"` // seconds, 0 when no responses
}

// SessionResult is the artifact handed to the persistence collaborator
// when a room completes.
type SessionResult struct {
	RoomCode          string              `json:"roomCode"`
	QuizID            string              `json:"quizId"`
	HostID            string              `json:"hostId"`
	StartedAt         time.Time           `json:"startedAt"`
	EndedAt           time.Time           `json:"endedAt"`
	TotalParticipants int                 `json:"totalParticipants"`
	AverageScore      int                 `json:"averageScore"`
	CompletionRate    int                 `json:"completionRate"`
	Participants      []ParticipantResult `json:"participants"`
	Questions         []QuestionStats     `json:"questions"`
}
