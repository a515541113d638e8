package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"livequiz-service/internal/domain"
)

// QuizStore persists quiz documents as JSONB rows.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

func (s *QuizStore) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, data, created_at FROM quizzes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []domain.Quiz
	for rows.Next() {
		var (
			id        string
			raw       []byte
			createdAt time.Time
		)
		if err := rows.Scan(&id, &raw, &createdAt); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quiz, err := decodeQuiz(id, raw, createdAt)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

func (s *QuizStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var (
		raw       []byte
		createdAt time.Time
	)
	err := s.pool.QueryRow(ctx, `SELECT data, created_at FROM quizzes WHERE id=$1`, quizID).Scan(&raw, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return decodeQuiz(quizID, raw, createdAt)
}

func (s *QuizStore) CreateQuiz(ctx context.Context, quiz domain.Quiz) (string, error) {
	quiz.ID = uuid.NewString()
	raw, err := encodeQuiz(quiz)
	if err != nil {
		return "", err
	}
	if _, err := s.pool.Exec(ctx, `INSERT INTO quizzes (id, data) VALUES ($1, $2)`, quiz.ID, raw); err != nil {
		return "", fmt.Errorf("insert quiz: %w", err)
	}
	return quiz.ID, nil
}

// UpdateQuiz replaces the stored document wholesale.
func (s *QuizStore) UpdateQuiz(ctx context.Context, quizID string, quiz domain.Quiz) error {
	quiz.ID = quizID
	raw, err := encodeQuiz(quiz)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `UPDATE quizzes SET data=$2 WHERE id=$1`, quizID, raw)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

// DeleteQuiz is idempotent; deleting an unknown id is not an error.
func (s *QuizStore) DeleteQuiz(ctx context.Context, quizID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE id=$1`, quizID); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return nil
}

// quizDoc is the JSONB shape; id and created_at live in their own columns.
type quizDoc struct {
	Title     string            `json:"title"`
	Questions []domain.Question `json:"questions"`
}

func encodeQuiz(quiz domain.Quiz) ([]byte, error) {
	raw, err := json.Marshal(quizDoc{Title: quiz.Title, Questions: quiz.Questions})
	if err != nil {
		return nil, fmt.Errorf("marshal quiz: %w", err)
	}
	return raw, nil
}

func decodeQuiz(id string, raw []byte, createdAt time.Time) (domain.Quiz, error) {
	var doc quizDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return domain.Quiz{ID: id, Title: doc.Title, Questions: doc.Questions, CreatedAt: createdAt}, nil
}
