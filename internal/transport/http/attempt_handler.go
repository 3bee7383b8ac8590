package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"classroom-live-service/internal/app"
	"classroom-live-service/internal/domain"
)

// AttemptHandler exposes the persisted quiz-submission path. Identity
// comes from the auth collaborator upstream; here it is just a field.
type AttemptHandler struct {
	attempts *app.AttemptService
}

func NewAttemptHandler(attempts *app.AttemptService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts}
}

type submitRequest struct {
	QuizID    string `json:"quizId"`
	StudentID string `json:"studentId"`
	Answers   []int  `json:"answers"`
}

// Submit handles POST /api/quizzes/submit.
func (h *AttemptHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuizID == "" || req.StudentID == "" {
		writeError(w, http.StatusBadRequest, "quizId and studentId are required")
		return
	}

	result, err := h.attempts.Submit(r.Context(), req.QuizID, req.StudentID, req.Answers)
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	case errors.Is(err, domain.ErrAttemptExists):
		writeError(w, http.StatusConflict, "quiz already attempted")
		return
	case err != nil:
		log.Printf("submit attempt failed: %v", err)
		writeError(w, http.StatusInternalServerError, "error submitting quiz")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Attempts handles GET /api/quizzes/attempts?studentId=.
func (h *AttemptHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	studentID := r.URL.Query().Get("studentId")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "studentId is required")
		return
	}

	attempts, err := h.attempts.Attempts(r.Context(), studentID)
	if err != nil {
		log.Printf("list attempts failed: %v", err)
		writeError(w, http.StatusInternalServerError, "error listing attempts")
		return
	}
	if attempts == nil {
		attempts = []domain.QuizAttempt{}
	}
	writeJSON(w, http.StatusOK, attempts)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"msg": msg})
}
