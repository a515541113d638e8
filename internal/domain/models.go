package domain

import (
	"fmt"
	"time"
)

// Question option and time-limit bounds enforced when authoring quizzes.
const (
	MinOptions   = 2
	MaxOptions   = 6
	MinTimeLimit = 5
	MaxTimeLimit = 120
)

// Question models an MCQ question broadcast during a live game.
// Once loaded into a room the question is never mutated.
type Question struct {
	Text          string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	TimeLimit     int      `json:"timeLimit"` // seconds
	ImageURL      string   `json:"imageUrl,omitempty"`
}

// Validate checks the authoring constraints for a single question.
func (q Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("%w: question text is empty", ErrInvalidQuiz)
	}
	if len(q.Options) < MinOptions || len(q.Options) > MaxOptions {
		return fmt.Errorf("%w: question needs %d-%d options, got %d", ErrInvalidQuiz, MinOptions, MaxOptions, len(q.Options))
	}
	if q.TimeLimit < MinTimeLimit || q.TimeLimit > MaxTimeLimit {
		return fmt.Errorf("%w: time limit must be %d-%d seconds, got %d", ErrInvalidQuiz, MinTimeLimit, MaxTimeLimit, q.TimeLimit)
	}
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return nil
		}
	}
	return fmt.Errorf("%w: correct answer does not match any option", ErrInvalidQuiz)
}

// Quiz is an authored, ordered question set.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Validate checks the authoring constraints for the whole quiz.
func (z Quiz) Validate() error {
	if z.Title == "" {
		return fmt.Errorf("%w: title is empty", ErrInvalidQuiz)
	}
	if len(z.Questions) == 0 {
		return fmt.Errorf("%w: quiz has no questions", ErrInvalidQuiz)
	}
	for i, q := range z.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}

// PlayerView is the roster/leaderboard snapshot of a player.
type PlayerView struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	Streak   int    `json:"streak"`
}
