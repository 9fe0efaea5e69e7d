package db

import (
	"database/sql"
	"errors"

	"github.com/anchal00/blackjack/internal/cards"
)

var ErrNotFound = errors.New("record not found")

type Account struct {
	ParticipantID string `db:"participant_id" json:"participant_id"`
	Username      string `db:"username" json:"username"`
	FirstName     string `db:"first_name" json:"first_name"`
	Balance       int64  `db:"balance" json:"balance"`
}

func (a Account) DisplayName() string {
	if len(a.Username) != 0 {
		return "@" + a.Username
	}
	if len(a.FirstName) != 0 {
		return a.FirstName
	}
	return a.ParticipantID
}

type TableStatus string

const (
	TableWaiting TableStatus = "waiting"
	TablePlaying TableStatus = "playing"
	TableEnded   TableStatus = "ended"
)

type Table struct {
	ID             int64          `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	CreatorID      string         `db:"creator_id" json:"creator_id"`
	Password       sql.NullString `db:"password" json:"-"`
	StartChips     int64          `db:"start_chips" json:"start_chips"`
	Status         TableStatus    `db:"status" json:"status"`
	AccumulatedPot int64          `db:"accumulated_pot" json:"accumulated_pot"`
}

func (t Table) HasPassword() bool {
	return t.Password.Valid && len(t.Password.String) != 0
}

type TableSummary struct {
	Table
	PlayerCount int `db:"player_count" json:"player_count"`
}

type Seat struct {
	ID            int64  `db:"id"`
	TableID       int64  `db:"table_id"`
	ParticipantID string `db:"participant_id"`
	Chips         int64  `db:"chips"`
	Active        bool   `db:"active"`
}

type RoundStatus string

const (
	RoundBetting RoundStatus = "betting"
	RoundDealing RoundStatus = "dealing"
	RoundPlaying RoundStatus = "playing"
	RoundDone    RoundStatus = "done"
)

type Round struct {
	ID           int64       `db:"id"`
	TableID      int64       `db:"table_id"`
	Pot          int64       `db:"pot"`
	BetPerPlayer int64       `db:"bet_per_player"`
	Status       RoundStatus `db:"status"`
}

type PlayerHand struct {
	ID      int64       `db:"id"`
	RoundID int64       `db:"round_id"`
	SeatID  int64       `db:"seat_id"`
	Cards   cards.Cards `db:"cards"`
	Value   int         `db:"hand_value"`
	Stood   bool        `db:"stood"`
	Busted  bool        `db:"busted"`
}
