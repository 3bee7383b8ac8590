package app

import "classroom-live-service/internal/domain"

const (
	// Unanswered marks a question position with no selection. It is
	// negative so it can never match a correct index, which is >= 0.
	Unanswered = -1

	defaultPoints = 10
)

// ScoreQuiz grades a list of selected option indices against the quiz
// questions, positionally aligned. Selections shorter than the question
// list leave the tail unanswered; extra selections are ignored.
//
// This is the single source of truth for scoring: the persisted-attempt
// path and any live flow must go through it.
func ScoreQuiz(questions []domain.Question, selections []int) (int, []domain.AnswerResult) {
	score := 0
	results := make([]domain.AnswerResult, 0, len(questions))

	for i, q := range questions {
		selected := Unanswered
		if i < len(selections) {
			selected = selections[i]
		}

		correct := selected == q.CorrectIndex
		if correct {
			points := q.Points
			if points == 0 {
				points = defaultPoints
			}
			score += points
		}

		results = append(results, domain.AnswerResult{
			QuestionIndex:  i,
			SelectedOption: selected,
			IsCorrect:      correct,
		})
	}

	return score, results
}
