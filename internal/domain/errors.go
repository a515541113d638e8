package domain

import "errors"

var (
	// ErrRoomNotFound is returned when no live room matches a game code.
	ErrRoomNotFound = errors.New("room not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuiz is returned when authored quiz content fails validation.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrGameInProgress is returned when a player tries to join after the game started.
	ErrGameInProgress = errors.New("game already started")
	// ErrNicknameTaken is returned when a nickname is already used in the room (case-insensitive).
	ErrNicknameTaken = errors.New("nickname already taken")
	// ErrNoPlayers is returned when the host starts a game with an empty lobby.
	ErrNoPlayers = errors.New("no players in room")
	// ErrNotInRoom is returned when a connection acts on a room it never joined.
	ErrNotInRoom = errors.New("player not in room")
	// ErrQuestionClosed is returned when an answer arrives outside the question phase.
	ErrQuestionClosed = errors.New("question is not accepting answers")
)
