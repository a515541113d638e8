package memory

import (
	"context"
	"testing"
	"time"

	"livequiz-service/internal/domain"
)

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.GetQuiz(ctx, quizID)
}

func newSeededStore(t *testing.T) (*QuizStore, string) {
	t.Helper()
	store := NewQuizStore()
	id, err := store.CreateQuiz(context.Background(), storeQuiz("Cached"))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store, id
}

func TestQuizCacheCaches(t *testing.T) {
	ctx := context.Background()
	store, id := newSeededStore(t)
	loader := &countingLoader{QuizLoader: store}
	cache := NewQuizCache(loader, time.Minute)

	if _, err := cache.GetQuiz(ctx, id); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.GetQuiz(ctx, id); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuizCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	store, id := newSeededStore(t)
	loader := &countingLoader{QuizLoader: store}
	cache := NewQuizCache(loader, time.Minute)

	if _, err := cache.GetQuiz(ctx, id); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if err := cache.InvalidateQuiz(ctx, id); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := cache.GetQuiz(ctx, id); err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidation, loader calls %d", loader.calls)
	}
}
