package domain

// Event is a tagged message delivered to connected clients. One type per
// outbound action; payloads are plain structs so the transport can marshal
// them without knowing their shape.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Outbound event types.
const (
	EventRoomCreated  = "roomCreated"
	EventJoinSuccess  = "joinSuccess"
	EventJoinError    = "joinError"
	EventRoster       = "roster"
	EventNewQuestion  = "newQuestion"
	EventAnswerResult = "answerResult"
	EventAnswerStats  = "answerStats"
	EventLeaderboard  = "leaderboard"
	EventGameOver     = "gameOver"
	EventKicked       = "kicked"
	EventHostLeft     = "hostLeft"
	EventHostError    = "hostError"
	EventError        = "error"
)

// RoomCreatedPayload carries the code players use to join.
type RoomCreatedPayload struct {
	Code string `json:"code"`
}

// RosterPayload is the ordered player list, insertion order = join order.
type RosterPayload struct {
	Players []PlayerView `json:"players"`
}

// QuestionPayload is the public view of a question. The correct answer is
// deliberately absent.
type QuestionPayload struct {
	Text      string   `json:"questionText"`
	Options   []string `json:"options"`
	TimeLimit int      `json:"timeLimit"`
	ImageURL  string   `json:"imageUrl,omitempty"`
}

// AnswerResultPayload is sent privately to the answering player.
type AnswerResultPayload struct {
	Correct bool `json:"correct"`
	Score   int  `json:"score"`
}

// AnswerStatsPayload carries the per-option answer percentages and reveals
// the correct option once the question has settled.
type AnswerStatsPayload struct {
	Stats         map[string]int `json:"stats"` // option text -> % of answering players
	CorrectAnswer string         `json:"correctAnswer"`
}

// LeaderboardPayload lists players sorted by descending score.
type LeaderboardPayload struct {
	Players []PlayerView `json:"players"`
}

// ErrorPayload carries a human-readable failure reason.
type ErrorPayload struct {
	Message string `json:"message"`
}

// ErrorEvent builds a generic error event for the acting party.
func ErrorEvent(message string) Event {
	return Event{Type: EventError, Payload: ErrorPayload{Message: message}}
}

// HostErrorEvent builds an error event surfaced only on the host channel.
func HostErrorEvent(message string) Event {
	return Event{Type: EventHostError, Payload: ErrorPayload{Message: message}}
}

// JoinErrorEvent builds a join rejection for the joining connection.
func JoinErrorEvent(message string) Event {
	return Event{Type: EventJoinError, Payload: ErrorPayload{Message: message}}
}
