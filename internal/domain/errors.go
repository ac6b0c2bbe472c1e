package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrEmptyQuiz is returned when a quiz has no questions to run.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrRoomNotFound is returned when a room code is unknown.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomClosed is returned when joining a completed room.
	ErrRoomClosed = errors.New("room is closed")
	// ErrInvalidTransition is returned when an operation is attempted in the wrong lifecycle state.
	ErrInvalidTransition = errors.New("invalid room state for operation")
	// ErrEmptyRoom is returned when starting a quiz with no participants.
	ErrEmptyRoom = errors.New("cannot start quiz with no participants")
	// ErrAlreadyCompleted is returned when advancing a room that already finished.
	ErrAlreadyCompleted = errors.New("quiz already completed")
	// ErrParticipantNotFound is returned when a connection acts before joining.
	ErrParticipantNotFound = errors.New("participant not found in room")
	// ErrDuplicateAnswer is returned on a repeat answer for the same question.
	ErrDuplicateAnswer = errors.New("already answered this question")
	// ErrStaleQuestion is returned when an answer targets a question that is not current.
	ErrStaleQuestion = errors.New("answer does not target the current question")
	// ErrInvalidOption is returned when the selected option index is out of range.
	ErrInvalidOption = errors.New("selected option out of range")
)
