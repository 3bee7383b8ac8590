package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"classroom-live-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AttemptStore persists quiz attempts in Postgres. The composite
// primary key (quiz_id, student_id) backs the one-attempt-per-student
// constraint.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) Create(ctx context.Context, attempt domain.QuizAttempt) error {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO quiz_attempts (quiz_id, student_id, answers, score, total_questions, time_spent, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (quiz_id, student_id) DO NOTHING`,
		attempt.QuizID, attempt.StudentID, answers, attempt.Score,
		attempt.TotalQuestions, attempt.TimeSpent, attempt.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAttemptExists
	}
	return nil
}

func (s *AttemptStore) ListByStudent(ctx context.Context, studentID string) ([]domain.QuizAttempt, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT quiz_id, student_id, answers, score, total_questions, time_spent, completed_at
		FROM quiz_attempts
		WHERE student_id=$1
		ORDER BY completed_at DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.QuizAttempt
	for rows.Next() {
		var attempt domain.QuizAttempt
		var answers []byte
		if err := rows.Scan(&attempt.QuizID, &attempt.StudentID, &answers, &attempt.Score,
			&attempt.TotalQuestions, &attempt.TimeSpent, &attempt.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if err := json.Unmarshal(answers, &attempt.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}
