package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptExists is returned when a student already submitted this quiz.
	ErrAttemptExists = errors.New("quiz attempt already exists")
	// ErrMissingRoom indicates an inbound event without the required room field.
	ErrMissingRoom = errors.New("missing room")
)
