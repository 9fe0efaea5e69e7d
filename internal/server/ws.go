package server

import (
	"fmt"
	"net/http"

	"github.com/anchal00/blackjack/internal/game"
	"github.com/anchal00/blackjack/internal/parser"
	"github.com/gorilla/websocket"
)

func (s *GameServer) UpgradeToWebsocket(writer http.ResponseWriter, request *http.Request) *websocket.Conn {
	conn, err := s.wssUpgrader.Upgrade(writer, request, nil)
	if err != nil {
		s.Logger.Error("Failed to upgrade to WS connection", err)
		return nil
	}
	return conn
}

// HandleWebsocket authenticates the connection and then routes its frames to the
// game service until the socket closes.
func (s *GameServer) HandleWebsocket(writer http.ResponseWriter, request *http.Request) {
	id, authErr := s.Auth.Resolve(request)
	wssConn := s.UpgradeToWebsocket(writer, request)
	if wssConn == nil {
		return
	}
	if authErr != nil {
		s.Logger.Info(fmt.Sprintf("Rejected websocket from %s", request.RemoteAddr))
		_ = wssConn.WriteJSON(game.Event{Type: game.EventError, Message: "Authentication failed"})
		wssConn.Close()
		return
	}
	participantID := id.ParticipantID
	connID := s.ConnStore.AddConnection(participantID, wssConn)
	s.Logger.Info(fmt.Sprintf("%s connected (%s)", participantID, connID))
	s.Service.Connected(participantID)

	for {
		_, data, err := wssConn.ReadMessage()
		if err != nil {
			s.Logger.Info(fmt.Sprintf("%s disconnected (%s)", participantID, connID))
			break
		}
		frame, err := parser.ParseClientFrame(data)
		if err != nil {
			s.ConnStore.SendToParticipant(participantID, game.Event{Type: game.EventError, Message: "Bad payload"})
			continue
		}
		if err := s.dispatch(participantID, frame); err != nil {
			s.ConnStore.SendToParticipant(participantID, game.Event{
				Type:    game.EventError,
				Message: err.Error(),
				Data:    map[string]any{"kind": game.KindOf(err), "command": frame.Type},
			})
		}
	}
	if s.ConnStore.RemoveConnection(participantID, connID) {
		s.Service.Disconnect(participantID)
	}
	wssConn.Close()
}

func (s *GameServer) dispatch(participantID string, frame *parser.ClientFrame) error {
	switch frame.Type {
	case "bet":
		return s.Service.PlaceBet(frame.TableID, participantID, frame.Amount)
	case "hit":
		_, err := s.Service.Hit(frame.TableID, participantID)
		return err
	case "stand":
		return s.Service.Stand(frame.TableID, participantID)
	case "continue":
		vote, err := game.ParseVote(frame.Vote)
		if err != nil {
			return err
		}
		return s.Service.Vote(frame.TableID, participantID, vote)
	}
	return fmt.Errorf("%w: %q", game.ErrUnknownCommand, frame.Type)
}
