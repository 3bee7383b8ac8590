package domain

import (
	"encoding/json"
	"time"
)

// Question models an MCQ question whose answer is an option index.
type Question struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Points       int      `json:"points"` // defaults to 10 if zero
}

// Quiz is an ordered collection of questions.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Room      string     `json:"room,omitempty"`
	Questions []Question `json:"questions"`
}

// AnswerResult records the outcome for one question of an attempt.
type AnswerResult struct {
	QuestionIndex  int  `json:"questionIndex"`
	SelectedOption int  `json:"selectedOption"`
	IsCorrect      bool `json:"isCorrect"`
}

// QuizAttempt is a student's persisted submission for a quiz.
// The store enforces at most one attempt per (quiz, student) pair.
type QuizAttempt struct {
	QuizID         string         `json:"quizId"`
	StudentID      string         `json:"studentId"`
	Answers        []AnswerResult `json:"answers"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	TimeSpent      int            `json:"timeSpent"` // seconds
	CompletedAt    time.Time      `json:"completedAt"`
}

// SubmitResult is what the HTTP caller gets back after scoring.
type SubmitResult struct {
	Score   int            `json:"score"`
	Total   int            `json:"total"`
	XPGain  int            `json:"xpGain"`
	Answers []AnswerResult `json:"answers"`
}

// RoomEventType discriminates outbound room events.
type RoomEventType string

const (
	EventDoubtIncrement RoomEventType = "doubtIncrement"
	EventQuizStarted    RoomEventType = "quizStarted"
	EventDoubtReset     RoomEventType = "doubtReset"
)

// RoomEvent is the tagged union fanned out to room subscribers.
// Count and RaisedBy are set for doubtIncrement; Quiz carries the
// verbatim payload for quizStarted; doubtReset has no payload.
type RoomEvent struct {
	Type     RoomEventType
	Count    int64
	RaisedBy string
	Quiz     json.RawMessage
}
