package app

import (
	"sort"
	"strings"
	"sync"
	"time"

	"livequiz-service/internal/domain"
)

// Phase is the lifecycle stage of a room.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseQuestion
	PhaseReviewing
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseQuestion:
		return "question"
	case PhaseReviewing:
		return "reviewing"
	case PhaseGameOver:
		return "gameover"
	}
	return "unknown"
}

type playerState struct {
	id         string
	nickname   string
	score      int
	streak     int
	answered   bool
	lastAnswer string
}

// Room is one live game session. All fields are guarded by mu; the service
// layer holds the lock for the duration of each inbound action or timer
// callback, which makes every phase transition run to completion before the
// next one is observed.
type Room struct {
	mu sync.Mutex

	code      string
	hostID    string
	questions []domain.Question
	current   int // -1 while in the lobby
	phase     Phase
	players   map[string]*playerState
	order     []string // join order, doubles as lobby display order
	askedAt   time.Time
	timer     *time.Timer // at most one outstanding per room
	closed    bool

	now func() time.Time
}

func newRoom(code, hostID string, questions []domain.Question, now func() time.Time) *Room {
	return &Room{
		code:      code,
		hostID:    hostID,
		questions: questions,
		current:   -1,
		phase:     PhaseLobby,
		players:   make(map[string]*playerState),
		now:       now,
	}
}

// Code returns the room's join code.
func (r *Room) Code() string {
	return r.code
}

// close stops the room's pending timer and marks it dead so that any timer
// callback already in flight becomes a no-op.
func (r *Room) close() {
	r.mu.Lock()
	r.closeLocked()
	r.mu.Unlock()
}

func (r *Room) closeLocked() {
	r.closed = true
	r.stopTimerLocked()
}

func (r *Room) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Room) questionLocked() (domain.Question, bool) {
	if r.current < 0 || r.current >= len(r.questions) {
		return domain.Question{}, false
	}
	return r.questions[r.current], true
}

func (r *Room) nicknameTakenLocked(nickname string) bool {
	for _, p := range r.players {
		if strings.EqualFold(p.nickname, nickname) {
			return true
		}
	}
	return false
}

func (r *Room) addPlayerLocked(id, nickname string) {
	r.players[id] = &playerState{id: id, nickname: nickname}
	r.order = append(r.order, id)
}

func (r *Room) removePlayerLocked(id string) bool {
	if _, ok := r.players[id]; !ok {
		return false
	}
	delete(r.players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Room) resetPlayersLocked() {
	for _, p := range r.players {
		p.score = 0
		p.streak = 0
		p.answered = false
		p.lastAnswer = ""
	}
}

func (r *Room) clearAnswersLocked() {
	for _, p := range r.players {
		p.answered = false
		p.lastAnswer = ""
	}
}

func (r *Room) allAnsweredLocked() bool {
	if len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !p.answered {
			return false
		}
	}
	return true
}

func (r *Room) answeredCountLocked() int {
	n := 0
	for _, p := range r.players {
		if p.answered {
			n++
		}
	}
	return n
}

// rosterLocked snapshots players in join order.
func (r *Room) rosterLocked() []domain.PlayerView {
	views := make([]domain.PlayerView, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		views = append(views, domain.PlayerView{ID: p.id, Nickname: p.nickname, Score: p.score, Streak: p.streak})
	}
	return views
}

// leaderboardLocked snapshots players sorted by descending score. The sort is
// stable over join order so ties keep a consistent relative order.
func (r *Room) leaderboardLocked() []domain.PlayerView {
	views := r.rosterLocked()
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Score > views[j].Score
	})
	return views
}
