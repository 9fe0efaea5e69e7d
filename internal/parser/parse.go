package parser

import (
	"encoding/json"
	"errors"
)

var ErrEmptyBody = errors.New("empty request body")

type CreateTableRequest struct {
	Name       string `json:"name"`
	StartChips int64  `json:"startChips"`
	Password   string `json:"password"`
}

type JoinTableRequest struct {
	Password string `json:"password"`
}

type BetRequest struct {
	Amount int64 `json:"amount"`
}

type VoteRequest struct {
	Vote string `json:"vote"`
}

type SessionResponse struct {
	Ok        bool   `json:"ok"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	UserID    string `json:"userId"`
}

// ClientFrame is a command sent over the websocket.
type ClientFrame struct {
	Type    string `json:"type"`
	TableID int64  `json:"tableId"`
	Amount  int64  `json:"amount"`
	Vote    string `json:"vote"`
}

func parse[T any](data []byte, allowEmpty bool) (*T, error) {
	req := new(T)
	if len(data) == 0 {
		if allowEmpty {
			return req, nil
		}
		return nil, ErrEmptyBody
	}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, err
	}
	return req, nil
}

func ParseCreateTableRequest(data []byte) (*CreateTableRequest, error) {
	return parse[CreateTableRequest](data, false)
}

// ParseJoinTableRequest accepts an empty body for tables without a password.
func ParseJoinTableRequest(data []byte) (*JoinTableRequest, error) {
	return parse[JoinTableRequest](data, true)
}

func ParseBetRequest(data []byte) (*BetRequest, error) {
	return parse[BetRequest](data, false)
}

func ParseVoteRequest(data []byte) (*VoteRequest, error) {
	return parse[VoteRequest](data, false)
}

func ParseClientFrame(data []byte) (*ClientFrame, error) {
	return parse[ClientFrame](data, false)
}
