package app

import (
	"math"
	"sort"
	"time"

	"quiz-room-service/internal/domain"
)

// computeResults turns the recorded answers of a finished room into the
// SessionResult handed to persistence. Pure aggregation, no room state.
func computeResults(code string, quiz domain.Quiz, hostID string, participants []*domain.Participant, startedAt, endedAt time.Time) domain.SessionResult {
	totalQuestions := len(quiz.Questions)

	results := make([]domain.ParticipantResult, 0, len(participants))
	scoreSum := 0
	finished := 0
	for _, participant := range participants {
		correct := 0
		for _, answer := range participant.Answers {
			if answer.Correct {
				correct++
			}
		}
		score := roundPercent(correct, totalQuestions)
		participant.Score = score
		scoreSum += score
		if len(participant.Answers) == totalQuestions {
			finished++
		}
		results = append(results, domain.ParticipantResult{
			ID:             participant.ID,
			Name:           participant.Name,
			Score:          score,
			CorrectAnswers: correct,
			TotalQuestions: totalQuestions,
			Answers:        participant.Answers,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Name < results[j].Name
	})

	stats := make([]domain.QuestionStats, totalQuestions)
	for i, question := range quiz.Questions {
		stats[i] = questionStats(i, question, participants)
	}

	averageScore := 0
	if len(results) > 0 {
		averageScore = int(math.Round(float64(scoreSum) / float64(len(results))))
	}

	return domain.SessionResult{
		RoomCode:          code,
		QuizID:            quiz.ID,
		HostID:            hostID,
		StartedAt:         startedAt,
		EndedAt:           endedAt,
		TotalParticipants: len(participants),
		AverageScore:      averageScore,
		CompletionRate:    roundPercent(finished, len(participants)),
		Participants:      results,
		Questions:         stats,
	}
}

func questionStats(index int, question domain.Question, participants []*domain.Participant) domain.QuestionStats {
	counts := make([]int, len(question.Options))
	responses := 0
	correct := 0
	timeSum := 0.0
	for _, participant := range participants {
		for _, answer := range participant.Answers {
			if answer.QuestionIndex != index {
				continue
			}
			responses++
			timeSum += answer.TimeSpent
			if answer.SelectedOption >= 0 && answer.SelectedOption < len(counts) {
				counts[answer.SelectedOption]++
			}
			if answer.Correct {
				correct++
			}
		}
	}

	averageTime := 0.0
	if responses > 0 {
		averageTime = timeSum / float64(responses)
	}
	return domain.QuestionStats{
		QuestionIndex:    index,
		TotalResponses:   responses,
		OptionCounts:     counts,
		Accuracy:         roundPercent(correct, responses),
		AverageTimeSpent: averageTime,
	}
}

// roundPercent is round(100*part/total), 0 when total is 0.
func roundPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
