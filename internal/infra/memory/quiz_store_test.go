package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"livequiz-service/internal/domain"
)

func storeQuiz(title string) domain.Quiz {
	return domain.Quiz{
		Title: title,
		Questions: []domain.Question{
			{
				Text:          "What is 2 + 2?",
				Options:       []string{"3", "4"},
				CorrectAnswer: "4",
				TimeLimit:     20,
			},
		},
	}
}

func TestQuizStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	id, err := store.CreateQuiz(ctx, storeQuiz("Math"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	quiz, err := store.GetQuiz(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if quiz.Title != "Math" || quiz.ID != id || quiz.CreatedAt.IsZero() {
		t.Fatalf("unexpected quiz %+v", quiz)
	}

	updated := storeQuiz("Maths")
	if err := store.UpdateQuiz(ctx, id, updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	quiz, _ = store.GetQuiz(ctx, id)
	if quiz.Title != "Maths" || quiz.ID != id {
		t.Fatalf("update not applied: %+v", quiz)
	}

	if err := store.DeleteQuiz(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetQuiz(ctx, id); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
	// Idempotent delete.
	if err := store.DeleteQuiz(ctx, id); err != nil {
		t.Fatalf("repeated delete: %v", err)
	}
}

func TestQuizStoreUpdateUnknown(t *testing.T) {
	store := NewQuizStore()
	err := store.UpdateQuiz(context.Background(), "missing", storeQuiz("X"))
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestQuizStoreListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store.clock = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	if _, err := store.CreateQuiz(ctx, storeQuiz("first")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreateQuiz(ctx, storeQuiz("second")); err != nil {
		t.Fatalf("create: %v", err)
	}

	quizzes, err := store.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 2 || quizzes[0].Title != "second" || quizzes[1].Title != "first" {
		t.Fatalf("expected newest first, got %+v", quizzes)
	}
}
