package identity

import (
	"errors"
	"strconv"
)

var (
	ErrMissingCredentials = errors.New("no credentials presented")
	ErrInvalidInitData    = errors.New("invalid init data")
	ErrExpiredInitData    = errors.New("init data expired")
	ErrInvalidToken       = errors.New("invalid session token")
)

// Identity is the authenticated participant behind a request or connection.
type Identity struct {
	ParticipantID string `json:"id"`
	Username      string `json:"username"`
	FirstName     string `json:"first_name"`
}

func (i Identity) DisplayName() string {
	if len(i.Username) != 0 {
		return "@" + i.Username
	}
	if len(i.FirstName) != 0 {
		return i.FirstName
	}
	return i.ParticipantID
}

// telegramUser is the user object carried in the initData "user" field.
type telegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

func (u telegramUser) identity() Identity {
	return Identity{ParticipantID: strconv.FormatInt(u.ID, 10), Username: u.Username, FirstName: u.FirstName}
}
