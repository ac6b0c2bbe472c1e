package app

import (
	"testing"
	"time"

	"quiz-room-service/internal/domain"
)

func TestComputeResultsRoundsScores(t *testing.T) {
	quiz := threeQuestionQuiz() // correct options 0, 1, 2

	participant := &domain.Participant{
		ID:   "c1",
		Name: "Alice",
		Answers: []domain.Answer{
			{QuestionIndex: 0, SelectedOption: 0, Correct: true, TimeSpent: 2},
			{QuestionIndex: 1, SelectedOption: 1, Correct: true, TimeSpent: 4},
			{QuestionIndex: 2, SelectedOption: 0, Correct: false, TimeSpent: 6},
		},
	}

	now := time.Now()
	result := computeResults("ROOM01", quiz, "host-1", []*domain.Participant{participant}, now, now)

	if got := result.Participants[0].Score; got != 67 {
		t.Fatalf("expected 2/3 to round to 67, got %d", got)
	}
	if got := result.Participants[0].CorrectAnswers; got != 2 {
		t.Fatalf("expected 2 correct answers, got %d", got)
	}

	wantAccuracy := []int{100, 100, 0}
	for i, stats := range result.Questions {
		if stats.Accuracy != wantAccuracy[i] {
			t.Fatalf("question %d: expected accuracy %d, got %d", i, wantAccuracy[i], stats.Accuracy)
		}
		if stats.TotalResponses != 1 {
			t.Fatalf("question %d: expected 1 response, got %d", i, stats.TotalResponses)
		}
	}
	if result.Questions[2].AverageTimeSpent != 6 {
		t.Fatalf("expected average time 6, got %v", result.Questions[2].AverageTimeSpent)
	}
}

func TestComputeResultsWithNoResponses(t *testing.T) {
	quiz := twoQuestionQuiz()
	now := time.Now()

	result := computeResults("ROOM01", quiz, "host-1", nil, now, now)
	if result.TotalParticipants != 0 || result.AverageScore != 0 || result.CompletionRate != 0 {
		t.Fatalf("expected zeroed aggregates, got %+v", result)
	}
	for _, stats := range result.Questions {
		if stats.Accuracy != 0 || stats.AverageTimeSpent != 0 || stats.TotalResponses != 0 {
			t.Fatalf("expected zeroed question stats, got %+v", stats)
		}
	}
}

func TestComputeResultsOrdersByScore(t *testing.T) {
	quiz := twoQuestionQuiz()
	participants := []*domain.Participant{
		{ID: "c1", Name: "Alice", Answers: []domain.Answer{
			{QuestionIndex: 0, SelectedOption: 1, Correct: false},
		}},
		{ID: "c2", Name: "Bob", Answers: []domain.Answer{
			{QuestionIndex: 0, SelectedOption: 0, Correct: true},
			{QuestionIndex: 1, SelectedOption: 1, Correct: true},
		}},
	}

	now := time.Now()
	result := computeResults("ROOM01", quiz, "host-1", participants, now, now)
	if result.Participants[0].Name != "Bob" || result.Participants[0].Score != 100 {
		t.Fatalf("expected Bob first with 100, got %+v", result.Participants[0])
	}
	if result.Participants[1].Score != 0 {
		t.Fatalf("expected Alice at 0, got %+v", result.Participants[1])
	}
	// one participant finished everything
	if result.CompletionRate != 50 {
		t.Fatalf("expected completion rate 50, got %d", result.CompletionRate)
	}
}
