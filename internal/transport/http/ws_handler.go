package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
)

type WSHandler struct {
	service  *app.GameService
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, hub *Hub) *WSHandler {
	return &WSHandler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Inbound action types.
const (
	actionCreateRoom   = "createRoom"
	actionJoinRoom     = "joinRoom"
	actionStartGame    = "startGame"
	actionSubmitAnswer = "submitAnswer"
	actionNextQuestion = "nextQuestion"
	actionKickPlayer   = "kickPlayer"
	actionCancelRoom   = "cancelRoom"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type createRoomPayload struct {
	QuizID string `json:"quizId"`
}

type joinRoomPayload struct {
	Code     string `json:"code"`
	Nickname string `json:"nickname"`
}

type startGamePayload struct {
	Code    string `json:"code"`
	Shuffle bool   `json:"shuffle"`
}

type submitAnswerPayload struct {
	Code   string `json:"code"`
	Answer string `json:"answer"`
}

type nextQuestionPayload struct {
	Code string `json:"code"`
}

type kickPlayerPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
}

type cancelRoomPayload struct {
	Code string `json:"code"`
}

// ServeWS upgrades the request, assigns the connection its identity, and
// relays inbound actions into the game service until the peer goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan domain.Event, 16),
	}
	h.hub.add(c)
	go c.writeLoop()

	log.Debug().Str("client", c.id).Msg("client connected")

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r, c.id, inbound)
	}

	// Read loop ended: the connection is gone. Let the game react first so
	// host-left/roster events still reach the remaining members.
	h.service.Disconnect(c.id)
	h.hub.remove(c.id)
	log.Debug().Str("client", c.id).Msg("client disconnected")
}

func (h *WSHandler) dispatch(r *http.Request, clientID string, inbound inboundMessage) {
	switch inbound.Type {
	case actionCreateRoom:
		var payload createRoomPayload
		if !h.decode(clientID, inbound.Payload, &payload) {
			return
		}
		h.service.CreateRoom(r.Context(), clientID, payload.QuizID)
	case actionJoinRoom:
		var payload joinRoomPayload
		if !h.decode(clientID, inbound.Payload, &payload) {
			return
		}
		h.service.JoinRoom(clientID, payload.Code, payload.Nickname)
	case actionStartGame:
		var payload startGamePayload
		if !h.decode(clientID, inbound.Payload, &payload) {
			return
		}
		h.service.StartGame(clientID, payload.Code, payload.Shuffle)
	case actionSubmitAnswer:
		var payload submitAnswerPayload
		if !h.decode(clientID, inbound.Payload, &payload) {
			return
		}
		h.service.SubmitAnswer(clientID, payload.Code, payload.Answer)
	case actionNextQuestion:
		var payload nextQuestionPayload
		if !h.decode(clientID, inbound.Payload, &payload) {
			return
		}
		h.service.AdvanceQuestion(clientID, payload.Code)
	case actionKickPlayer:
		var payload kickPlayerPayload
		if !h.decode(clientID, inbound.Payload, &payload) {
			return
		}
		h.service.KickPlayer(clientID, payload.Code, payload.PlayerID)
	case actionCancelRoom:
		var payload cancelRoomPayload
		if !h.decode(clientID, inbound.Payload, &payload) {
			return
		}
		h.service.CancelRoom(clientID, payload.Code)
	default:
		h.hub.Send(clientID, domain.ErrorEvent("unsupported message type"))
	}
}

func (h *WSHandler) decode(clientID string, raw json.RawMessage, into any) bool {
	if err := json.Unmarshal(raw, into); err != nil {
		h.hub.Send(clientID, domain.ErrorEvent("invalid payload"))
		return false
	}
	return true
}
