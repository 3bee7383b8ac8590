package redis

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"classroom-live-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches quiz content from a backing store (e.g., Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizRepository caches grading data in Redis (hash per quiz) and falls
// back to a loader on cache miss. Questions are keyed by position:
//
//	HSET quiz:{quizID}:answers {questionIndex} {correctIndex}
//	HSET quiz:{quizID}:points  {questionIndex} {points}
//
// The cached form keeps only what scoring needs; prompts and option
// text are not stored.
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	answerKey := r.answersKey(quizID)
	pointKey := r.pointsKey(quizID)

	answers, err := r.client.HGetAll(ctx, answerKey).Result()
	if err == nil && len(answers) > 0 {
		pointsMap, _ := r.client.HGetAll(ctx, pointKey).Result()
		return buildQuizFromCache(quizID, answers, pointsMap), nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		answers, err := r.client.HGetAll(ctx, answerKey).Result()
		if err == nil && len(answers) > 0 {
			pointsMap, _ := r.client.HGetAll(ctx, pointKey).Result()
			return buildQuizFromCache(quizID, answers, pointsMap), nil
		}

		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.Pipeline()
		for i, q := range quiz.Questions {
			points := q.Points
			if points == 0 {
				points = 10
			}
			pipe.HSet(ctx, answerKey, strconv.Itoa(i), q.CorrectIndex)
			pipe.HSet(ctx, pointKey, strconv.Itoa(i), points)
		}
		if ttl > 0 {
			pipe.Expire(ctx, answerKey, ttl)
			pipe.Expire(ctx, pointKey, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) answersKey(quizID string) string {
	return "quiz:" + quizID + ":answers"
}

func (r *QuizRepository) pointsKey(quizID string) string {
	return "quiz:" + quizID + ":points"
}

func buildQuizFromCache(quizID string, answers map[string]string, pointsMap map[string]string) domain.Quiz {
	indices := make([]int, 0, len(answers))
	for idx := range answers {
		if i, err := strconv.Atoi(idx); err == nil {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)

	questions := make([]domain.Question, 0, len(indices))
	for _, i := range indices {
		idx := strconv.Itoa(i)
		correct, err := strconv.Atoi(answers[idx])
		if err != nil {
			correct = 0
		}
		points := 10
		if pStr, ok := pointsMap[idx]; ok {
			if p, err := strconv.Atoi(pStr); err == nil && p > 0 {
				points = p
			}
		}
		questions = append(questions, domain.Question{
			// prompt and options not cached in this lightweight form
			CorrectIndex: correct,
			Points:       points,
		})
	}
	return domain.Quiz{ID: quizID, Questions: questions}
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
