package memory

import (
	"context"
	"sort"
	"sync"

	"classroom-live-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
// It enforces the one-attempt-per-(quiz, student) constraint the same
// way the Postgres store does.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[attemptKey]domain.QuizAttempt
}

type attemptKey struct {
	quizID    string
	studentID string
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{attempts: make(map[attemptKey]domain.QuizAttempt)}
}

func (s *AttemptStore) Create(_ context.Context, attempt domain.QuizAttempt) error {
	key := attemptKey{quizID: attempt.QuizID, studentID: attempt.StudentID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attempts[key]; ok {
		return domain.ErrAttemptExists
	}
	s.attempts[key] = attempt
	return nil
}

func (s *AttemptStore) ListByStudent(_ context.Context, studentID string) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.QuizAttempt
	for key, attempt := range s.attempts {
		if key.studentID == studentID {
			out = append(out, attempt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}
