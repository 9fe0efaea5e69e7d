package server

import (
	"fmt"
	"net/http"

	"github.com/anchal00/blackjack/internal/game"
	"github.com/anchal00/blackjack/internal/parser"
)

func (s *GameServer) Me(writer http.ResponseWriter, request *http.Request) {
	account, err := s.Service.Me(participantOf(request).ParticipantID)
	if err != nil {
		s.sendError(writer, err)
		return
	}
	s.sendOK(writer, http.StatusOK, map[string]any{"user": account})
}

// IssueSession exchanges the request's credentials for a session token.
func (s *GameServer) IssueSession(writer http.ResponseWriter, request *http.Request) {
	id := participantOf(request)
	token, expires, err := s.Auth.Tokens().Issue(id)
	if err != nil {
		s.sendError(writer, err)
		return
	}
	s.sendJSON(writer, http.StatusOK, parser.SessionResponse{
		Ok:        true,
		Token:     token,
		ExpiresAt: expires.Unix(),
		UserID:    id.ParticipantID,
	})
}

func (s *GameServer) ListTables(writer http.ResponseWriter, request *http.Request) {
	tables, err := s.Service.ListTables()
	if err != nil {
		s.sendError(writer, err)
		return
	}
	s.sendOK(writer, http.StatusOK, map[string]any{"tables": tables})
}

func (s *GameServer) CreateTable(writer http.ResponseWriter, request *http.Request) {
	participantID := participantOf(request).ParticipantID
	s.Logger.Info(fmt.Sprintf("%s is creating a new table", participantID))
	data, err := s.ReadRequestBody(request)
	if err != nil {
		s.badRequest(writer, err)
		return
	}
	req, err := parser.ParseCreateTableRequest(data)
	if err != nil {
		s.Logger.Error("Failed to parse create table request", err)
		s.badRequest(writer, err)
		return
	}
	table, err := s.Service.CreateTable(participantID, req.Name, req.StartChips, req.Password)
	if err != nil {
		s.sendError(writer, err)
		return
	}
	s.sendOK(writer, http.StatusCreated, map[string]any{"table": table})
}

func (s *GameServer) JoinTable(writer http.ResponseWriter, request *http.Request) {
	tableID := tableIDOf(request)
	participantID := participantOf(request).ParticipantID
	s.Logger.Info(fmt.Sprintf("%s is joining table %d", participantID, tableID))
	data, err := s.ReadRequestBody(request)
	if err != nil {
		s.badRequest(writer, err)
		return
	}
	req, err := parser.ParseJoinTableRequest(data)
	if err != nil {
		s.Logger.Error("Failed to parse join table request", err)
		s.badRequest(writer, err)
		return
	}
	seat, err := s.Service.JoinTable(tableID, participantID, req.Password)
	if err != nil {
		s.sendError(writer, err)
		return
	}
	s.sendOK(writer, http.StatusOK, map[string]any{"chips": seat.Chips})
}

// command runs a table command that carries no payload back.
func (s *GameServer) command(writer http.ResponseWriter, request *http.Request, run func(tableID int64, participantID string) error) {
	if err := run(tableIDOf(request), participantOf(request).ParticipantID); err != nil {
		s.sendError(writer, err)
		return
	}
	s.sendOK(writer, http.StatusOK, nil)
}

func (s *GameServer) LeaveTable(writer http.ResponseWriter, request *http.Request) {
	s.command(writer, request, s.Service.LeaveTable)
}

func (s *GameServer) StartGame(writer http.ResponseWriter, request *http.Request) {
	s.command(writer, request, s.Service.StartGame)
}

func (s *GameServer) EndGame(writer http.ResponseWriter, request *http.Request) {
	s.command(writer, request, s.Service.EndGame)
}

func (s *GameServer) Stand(writer http.ResponseWriter, request *http.Request) {
	s.command(writer, request, s.Service.Stand)
}

func (s *GameServer) PlaceBet(writer http.ResponseWriter, request *http.Request) {
	data, err := s.ReadRequestBody(request)
	if err != nil {
		s.badRequest(writer, err)
		return
	}
	req, err := parser.ParseBetRequest(data)
	if err != nil {
		s.badRequest(writer, err)
		return
	}
	s.command(writer, request, func(tableID int64, participantID string) error {
		return s.Service.PlaceBet(tableID, participantID, req.Amount)
	})
}

func (s *GameServer) Hit(writer http.ResponseWriter, request *http.Request) {
	result, err := s.Service.Hit(tableIDOf(request), participantOf(request).ParticipantID)
	if err != nil {
		s.sendError(writer, err)
		return
	}
	s.sendOK(writer, http.StatusOK, map[string]any{"card": result.Card, "value": result.Value, "busted": result.Busted})
}

func (s *GameServer) Vote(writer http.ResponseWriter, request *http.Request) {
	data, err := s.ReadRequestBody(request)
	if err != nil {
		s.badRequest(writer, err)
		return
	}
	req, err := parser.ParseVoteRequest(data)
	if err != nil {
		s.badRequest(writer, err)
		return
	}
	vote, err := game.ParseVote(req.Vote)
	if err != nil {
		s.sendError(writer, err)
		return
	}
	s.command(writer, request, func(tableID int64, participantID string) error {
		return s.Service.Vote(tableID, participantID, vote)
	})
}
