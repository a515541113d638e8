package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"livequiz-service/internal/domain"
)

// QuizStore is the persistent CRUD surface behind the authoring API.
type QuizStore interface {
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	CreateQuiz(ctx context.Context, quiz domain.Quiz) (string, error)
	UpdateQuiz(ctx context.Context, quizID string, quiz domain.Quiz) error
	DeleteQuiz(ctx context.Context, quizID string) error
}

// QuizInvalidator drops cached quiz documents after a write. Optional.
type QuizInvalidator interface {
	InvalidateQuiz(ctx context.Context, quizID string) error
}

// QuizAPI serves the quiz-authoring REST endpoints.
type QuizAPI struct {
	store QuizStore
	cache QuizInvalidator // may be nil
}

func NewQuizAPI(store QuizStore, cache QuizInvalidator) *QuizAPI {
	return &QuizAPI{store: store, cache: cache}
}

// Register installs the API routes on the mux.
func (a *QuizAPI) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/quizzes", a.handleCollection)
	mux.HandleFunc("/api/quizzes/", a.handleItem)
}

func (a *QuizAPI) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		quizzes, err := a.store.ListQuizzes(r.Context())
		if err != nil {
			a.serverError(w, err)
			return
		}
		if quizzes == nil {
			quizzes = []domain.Quiz{}
		}
		writeJSON(w, http.StatusOK, quizzes)
	case http.MethodPost:
		var quiz domain.Quiz
		if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
			httpError(w, http.StatusBadRequest, "invalid quiz payload")
			return
		}
		if err := quiz.Validate(); err != nil {
			httpError(w, http.StatusBadRequest, err.Error())
			return
		}
		id, err := a.store.CreateQuiz(r.Context(), quiz)
		if err != nil {
			a.serverError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	default:
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (a *QuizAPI) handleItem(w http.ResponseWriter, r *http.Request) {
	quizID := strings.TrimPrefix(r.URL.Path, "/api/quizzes/")
	if quizID == "" || strings.Contains(quizID, "/") {
		httpError(w, http.StatusNotFound, "quiz not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		quiz, err := a.store.GetQuiz(r.Context(), quizID)
		if errors.Is(err, domain.ErrQuizNotFound) {
			httpError(w, http.StatusNotFound, "quiz not found")
			return
		}
		if err != nil {
			a.serverError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, quiz)
	case http.MethodPut:
		var quiz domain.Quiz
		if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
			httpError(w, http.StatusBadRequest, "invalid quiz payload")
			return
		}
		if err := quiz.Validate(); err != nil {
			httpError(w, http.StatusBadRequest, err.Error())
			return
		}
		err := a.store.UpdateQuiz(r.Context(), quizID, quiz)
		if errors.Is(err, domain.ErrQuizNotFound) {
			httpError(w, http.StatusNotFound, "quiz not found")
			return
		}
		if err != nil {
			a.serverError(w, err)
			return
		}
		a.invalidate(r.Context(), quizID)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case http.MethodDelete:
		if err := a.store.DeleteQuiz(r.Context(), quizID); err != nil {
			a.serverError(w, err)
			return
		}
		a.invalidate(r.Context(), quizID)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (a *QuizAPI) invalidate(ctx context.Context, quizID string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.InvalidateQuiz(ctx, quizID); err != nil {
		log.Warn().Err(err).Str("quiz", quizID).Msg("cache invalidation failed")
	}
}

func (a *QuizAPI) serverError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("quiz api error")
	httpError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func httpError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
