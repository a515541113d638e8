package app

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"livequiz-service/internal/domain"
)

// Notifier delivers outbound events to connected clients. The transport
// layer implements it; delivery is best-effort and must never block the
// caller, since events are sent while a room's lock is held.
type Notifier interface {
	Send(clientID string, event domain.Event)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// Timings are the reviewing-phase delays. Production values match the
// original cadence players expect; tests shrink them.
type Timings struct {
	StatsDelay      time.Duration // answer stats shown -> leaderboard
	ZeroAnswerDelay time.Duration // nobody answered -> leaderboard
}

func DefaultTimings() Timings {
	return Timings{StatsDelay: 4 * time.Second, ZeroAnswerDelay: 3 * time.Second}
}

// GameService drives live rooms through their lifecycle: creation, joins,
// the question/review cycle, scoring, and teardown. Inbound actions arrive
// from the transport, identified by connection id; outbound events leave
// through the Notifier.
type GameService struct {
	rooms   *Registry
	quizzes QuizRepository
	notify  Notifier
	timings Timings
}

func NewGameService(rooms *Registry, quizzes QuizRepository, notify Notifier, timings Timings) *GameService {
	return &GameService{rooms: rooms, quizzes: quizzes, notify: notify, timings: timings}
}

// CreateRoom fetches the quiz and registers a new lobby owned by hostID.
// A failed fetch aborts the attempt and leaves the registry untouched.
func (s *GameService) CreateRoom(ctx context.Context, hostID, quizID string) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			s.notify.Send(hostID, domain.HostErrorEvent("quiz not found"))
		} else {
			log.Error().Err(err).Str("quiz", quizID).Msg("quiz fetch failed")
			s.notify.Send(hostID, domain.HostErrorEvent("failed to load quiz"))
		}
		return
	}

	questions := append([]domain.Question(nil), quiz.Questions...)
	room := s.rooms.Create(hostID, questions)
	log.Info().Str("code", room.code).Str("quiz", quizID).Msg("room created")
	s.notify.Send(hostID, domain.Event{Type: domain.EventRoomCreated, Payload: domain.RoomCreatedPayload{Code: room.code}})
}

// JoinRoom adds a player to a lobby. Nicknames are unique per room ignoring
// case and immutable for the room's duration.
func (s *GameService) JoinRoom(clientID, code, nickname string) {
	room, ok := s.rooms.Get(code)
	if !ok {
		s.notify.Send(clientID, domain.JoinErrorEvent(domain.ErrRoomNotFound.Error()))
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed || room.phase != PhaseLobby {
		s.notify.Send(clientID, domain.JoinErrorEvent(domain.ErrGameInProgress.Error()))
		return
	}
	if room.nicknameTakenLocked(nickname) {
		s.notify.Send(clientID, domain.JoinErrorEvent(domain.ErrNicknameTaken.Error()))
		return
	}
	room.addPlayerLocked(clientID, nickname)
	log.Info().Str("code", code).Str("nickname", nickname).Msg("player joined")
	s.notify.Send(clientID, domain.Event{Type: domain.EventJoinSuccess})
	s.broadcastRosterLocked(room)
}

// StartGame begins the question cycle. Host-only; requires at least one
// player. Scores and streaks reset so the host can reuse a lobby.
func (s *GameService) StartGame(clientID, code string, shuffle bool) {
	room, ok := s.rooms.Get(code)
	if !ok {
		return
	}
	room.mu.Lock()
	if room.closed || room.hostID != clientID {
		room.mu.Unlock()
		return
	}
	if room.phase != PhaseLobby {
		s.notify.Send(room.hostID, domain.HostErrorEvent(domain.ErrGameInProgress.Error()))
		room.mu.Unlock()
		return
	}
	if len(room.players) == 0 {
		s.notify.Send(room.hostID, domain.HostErrorEvent(domain.ErrNoPlayers.Error()))
		room.mu.Unlock()
		return
	}

	room.resetPlayersLocked()
	if shuffle {
		rand.Shuffle(len(room.questions), func(i, j int) {
			room.questions[i], room.questions[j] = room.questions[j], room.questions[i]
		})
	}
	room.current = 0
	log.Info().Str("code", code).Bool("shuffle", shuffle).Int("players", len(room.players)).Msg("game started")
	finished := s.sendQuestionLocked(room)
	room.mu.Unlock()
	if finished {
		s.rooms.Delete(code)
	}
}

// SubmitAnswer validates and scores one answer. Each player contributes at
// most one answer per question; duplicates are no-ops. The literal answer
// text is recorded even when it matches no option, it simply scores as
// incorrect. When the last player answers, the question settles immediately
// instead of waiting for the deadline.
func (s *GameService) SubmitAnswer(clientID, code, answer string) {
	room, ok := s.rooms.Get(code)
	if !ok {
		s.notify.Send(clientID, domain.ErrorEvent(domain.ErrRoomNotFound.Error()))
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed || room.phase != PhaseQuestion {
		s.notify.Send(clientID, domain.ErrorEvent(domain.ErrQuestionClosed.Error()))
		return
	}
	player, ok := room.players[clientID]
	if !ok {
		s.notify.Send(clientID, domain.ErrorEvent(domain.ErrNotInRoom.Error()))
		return
	}
	if player.answered {
		return
	}

	question, _ := room.questionLocked()
	player.answered = true
	player.lastAnswer = answer

	correct := answer == question.CorrectAnswer
	elapsed := room.now().Sub(room.askedAt).Seconds()
	gained, streak := ScoreAnswer(correct, elapsed, question.TimeLimit, player.streak)
	player.streak = streak
	player.score += gained

	s.notify.Send(clientID, domain.Event{Type: domain.EventAnswerResult, Payload: domain.AnswerResultPayload{
		Correct: correct,
		Score:   player.score,
	}})

	if room.allAnsweredLocked() {
		s.settleLocked(room, room.current)
	}
}

// AdvanceQuestion moves the room to the next question, or to game over when
// none remain. Host-only; accepted from any non-lobby phase so the host can
// cut a running question short.
func (s *GameService) AdvanceQuestion(clientID, code string) {
	room, ok := s.rooms.Get(code)
	if !ok {
		return
	}
	room.mu.Lock()
	if room.closed || room.hostID != clientID || room.phase == PhaseLobby {
		room.mu.Unlock()
		return
	}
	room.stopTimerLocked()
	room.current++
	room.clearAnswersLocked()
	finished := s.sendQuestionLocked(room)
	room.mu.Unlock()
	if finished {
		s.rooms.Delete(code)
	}
}

// KickPlayer removes a player at the host's request.
func (s *GameService) KickPlayer(clientID, code, playerID string) {
	room, ok := s.rooms.Get(code)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed || room.hostID != clientID {
		return
	}
	if !room.removePlayerLocked(playerID) {
		return
	}
	log.Info().Str("code", code).Str("player", playerID).Msg("player kicked")
	s.notify.Send(playerID, domain.Event{Type: domain.EventKicked})
	s.broadcastRosterLocked(room)
	if room.phase == PhaseQuestion && room.allAnsweredLocked() {
		s.settleLocked(room, room.current)
	}
}

// CancelRoom destroys a room at the host's request and notifies members.
func (s *GameService) CancelRoom(clientID, code string) {
	room, ok := s.rooms.Get(code)
	if !ok {
		return
	}
	room.mu.Lock()
	if room.closed || room.hostID != clientID {
		room.mu.Unlock()
		return
	}
	log.Info().Str("code", code).Msg("room cancelled by host")
	s.broadcastLocked(room, domain.Event{Type: domain.EventHostLeft})
	room.closeLocked()
	room.mu.Unlock()
	s.rooms.Delete(code)
}

// Disconnect handles a dropped connection. A host disconnect destroys its
// room; a player disconnect removes the player and may settle the current
// question if everyone remaining has already answered.
func (s *GameService) Disconnect(clientID string) {
	for _, room := range s.rooms.Snapshot() {
		room.mu.Lock()
		if room.closed {
			room.mu.Unlock()
			continue
		}
		if room.hostID == clientID {
			code := room.code
			log.Info().Str("code", code).Msg("host disconnected, destroying room")
			s.broadcastLocked(room, domain.Event{Type: domain.EventHostLeft})
			room.closeLocked()
			room.mu.Unlock()
			s.rooms.Delete(code)
			return
		}
		if room.removePlayerLocked(clientID) {
			log.Info().Str("code", room.code).Str("player", clientID).Msg("player disconnected")
			s.broadcastRosterLocked(room)
			if room.phase == PhaseQuestion && room.allAnsweredLocked() {
				s.settleLocked(room, room.current)
			}
			room.mu.Unlock()
			return
		}
		room.mu.Unlock()
	}
}

// sendQuestionLocked broadcasts the current question and arms the deadline
// timer, or finishes the game when the index is past the last question.
// Returns true when the game ended; the caller removes the room from the
// registry after releasing the lock.
func (s *GameService) sendQuestionLocked(room *Room) (finished bool) {
	question, ok := room.questionLocked()
	if !ok {
		s.finishGameLocked(room)
		return true
	}

	room.phase = PhaseQuestion
	s.broadcastLocked(room, domain.Event{Type: domain.EventNewQuestion, Payload: domain.QuestionPayload{
		Text:      question.Text,
		Options:   question.Options,
		TimeLimit: question.TimeLimit,
		ImageURL:  question.ImageURL,
	}})
	room.askedAt = room.now()
	room.stopTimerLocked()

	index := room.current
	room.timer = time.AfterFunc(time.Duration(question.TimeLimit)*time.Second, func() {
		s.settleQuestion(room, index)
	})
	return false
}

// settleQuestion is the deadline-timer entry into the settle transition.
func (s *GameService) settleQuestion(room *Room, index int) {
	room.mu.Lock()
	defer room.mu.Unlock()
	s.settleLocked(room, index)
}

// settleLocked performs the QuestionActive -> Reviewing transition exactly
// once per question. Both the deadline timer and the all-answered trigger
// funnel through here; whichever loses the race observes the phase already
// changed and does nothing.
func (s *GameService) settleLocked(room *Room, index int) {
	if room.closed || room.phase != PhaseQuestion || room.current != index {
		return
	}
	room.stopTimerLocked()
	room.phase = PhaseReviewing

	answered := room.answeredCountLocked()
	if answered == 0 {
		room.timer = time.AfterFunc(s.timings.ZeroAnswerDelay, func() {
			s.publishLeaderboard(room, index)
		})
		return
	}

	question, _ := room.questionLocked()
	stats := make(map[string]int, len(question.Options))
	for _, opt := range question.Options {
		stats[opt] = 0
	}
	for _, p := range room.players {
		if !p.answered {
			continue
		}
		// Answers that match no option stay out of the stats; the
		// percentages are still relative to everyone who answered.
		if _, ok := stats[p.lastAnswer]; ok {
			stats[p.lastAnswer]++
		}
	}
	for opt, count := range stats {
		stats[opt] = int(math.Round(float64(count) / float64(answered) * 100))
	}

	s.broadcastLocked(room, domain.Event{Type: domain.EventAnswerStats, Payload: domain.AnswerStatsPayload{
		Stats:         stats,
		CorrectAnswer: question.CorrectAnswer,
	}})
	room.timer = time.AfterFunc(s.timings.StatsDelay, func() {
		s.publishLeaderboard(room, index)
	})
}

// publishLeaderboard fires after the reviewing delay. A room that advanced
// or died in the meantime is left alone.
func (s *GameService) publishLeaderboard(room *Room, index int) {
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed || room.phase != PhaseReviewing || room.current != index {
		return
	}
	s.broadcastLocked(room, domain.Event{Type: domain.EventLeaderboard, Payload: domain.LeaderboardPayload{
		Players: room.leaderboardLocked(),
	}})
}

func (s *GameService) finishGameLocked(room *Room) {
	room.phase = PhaseGameOver
	log.Info().Str("code", room.code).Msg("game over")
	s.broadcastLocked(room, domain.Event{Type: domain.EventGameOver, Payload: domain.LeaderboardPayload{
		Players: room.leaderboardLocked(),
	}})
	room.closeLocked()
}

func (s *GameService) broadcastRosterLocked(room *Room) {
	s.broadcastLocked(room, domain.Event{Type: domain.EventRoster, Payload: domain.RosterPayload{
		Players: room.rosterLocked(),
	}})
}

// broadcastLocked delivers an event to the host and every player, in join
// order. Room membership lives here rather than in the transport hub, so
// the hub only ever needs per-connection delivery.
func (s *GameService) broadcastLocked(room *Room, event domain.Event) {
	s.notify.Send(room.hostID, event)
	for _, id := range room.order {
		s.notify.Send(id, event)
	}
}
