package app

import (
	"context"
	"time"

	"classroom-live-service/internal/domain"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// AttemptRepository persists quiz attempts. Create must reject a second
// attempt for the same (quiz, student) pair with domain.ErrAttemptExists.
type AttemptRepository interface {
	Create(ctx context.Context, attempt domain.QuizAttempt) error
	ListByStudent(ctx context.Context, studentID string) ([]domain.QuizAttempt, error)
}

// AttemptService is the persisted quiz-submission use case.
type AttemptService struct {
	quizzes  QuizRepository
	attempts AttemptRepository
	now      func() time.Time
}

func NewAttemptService(quizzes QuizRepository, attempts AttemptRepository) *AttemptService {
	return &AttemptService{quizzes: quizzes, attempts: attempts, now: time.Now}
}

// NewAttemptServiceWithClock is test-only for deterministic timestamps.
func NewAttemptServiceWithClock(quizzes QuizRepository, attempts AttemptRepository, now func() time.Time) *AttemptService {
	return &AttemptService{quizzes: quizzes, attempts: attempts, now: now}
}

// Submit grades the selections against the quiz and records the attempt.
// XP gain equals the score, one XP per point.
func (s *AttemptService) Submit(ctx context.Context, quizID, studentID string, selections []int) (domain.SubmitResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.SubmitResult{}, err
	}

	score, results := ScoreQuiz(quiz.Questions, selections)

	attempt := domain.QuizAttempt{
		QuizID:         quizID,
		StudentID:      studentID,
		Answers:        results,
		Score:          score,
		TotalQuestions: len(quiz.Questions),
		CompletedAt:    s.now(),
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return domain.SubmitResult{}, err
	}

	return domain.SubmitResult{
		Score:   score,
		Total:   len(quiz.Questions),
		XPGain:  score,
		Answers: results,
	}, nil
}

// Attempts lists a student's recorded attempts, newest first.
func (s *AttemptService) Attempts(ctx context.Context, studentID string) ([]domain.QuizAttempt, error) {
	return s.attempts.ListByStudent(ctx, studentID)
}
