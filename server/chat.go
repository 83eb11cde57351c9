package server

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/emberworks/aria/engine"
)

// clientEvent is a message from the browser. Type selects the action;
// Message carries the utterance for user_message events.
type clientEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// botEvent is a message to the browser.
type botEvent struct {
	Type string `json:"type"`
	engine.Reply
}

const (
	eventUserMessage  = "user_message"
	eventRequestTopic = "request_topic"
	eventEndChat      = "end_chat"
	eventBotResponse  = "bot_response"
)

// handleChat upgrades to WebSocket and runs the chat loop for one client.
// The user identity comes from the user_id query parameter so a client can
// resume its session; a missing ID gets a fresh one.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = uuid.NewString()
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close() //nolint:errcheck // best-effort close on handler exit

	logger := s.logger.With().Str("user_id", userID).Logger()
	logger.Info().Msg("client connected")

	// Writes can come from concurrent turn completions; gorilla connections
	// allow one writer at a time.
	var writeMu sync.Mutex
	send := func(reply engine.Reply) bool {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(botEvent{Type: eventBotResponse, Reply: reply}); err != nil {
			logger.Warn().Err(err).Msg("write failed")
			return false
		}
		return true
	}

	if !send(s.engine.Greet(r.Context(), userID)) {
		return
	}

	for {
		var ev clientEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("read failed")
			} else {
				logger.Info().Msg("client disconnected")
			}
			return
		}

		switch ev.Type {
		case eventUserMessage:
			if !send(s.engine.HandleMessage(r.Context(), userID, ev.Message)) {
				return
			}
		case eventRequestTopic:
			if !send(s.engine.SuggestTopic(r.Context(), userID)) {
				return
			}
		case eventEndChat:
			send(s.engine.Farewell(r.Context(), userID))
			logger.Info().Msg("client ended chat")
			return
		default:
			logger.Debug().Str("type", ev.Type).Msg("ignoring unknown event")
		}
	}
}
