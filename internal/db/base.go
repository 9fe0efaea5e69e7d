package db

import (
	"github.com/anchal00/blackjack/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

type Repository interface {
	SetupConnection(database string) error
	CloseConnection()

	EnsureAccount(participantID, username, firstName string) (*Account, error)
	GetAccount(participantID string) (*Account, error)
	DisplayName(participantID string) string

	ListOpenTables() ([]TableSummary, error)
	CreateTable(name, creatorID, password string, startChips int64) (*Table, error)
	GetTable(tableID int64) (*Table, error)
	GetTableByName(name string) (*Table, error)
	SetTableStatus(tableID int64, status TableStatus) error
	SetTableCreator(tableID int64, creatorID string) error
	EndTable(tableID int64) error

	JoinTable(tableID int64, participantID string, chips int64) (*Seat, error)
	GetSeat(tableID int64, participantID string) (*Seat, error)
	ActiveSeats(tableID int64) ([]Seat, error)
	ActiveSeatsOf(participantID string) ([]Seat, error)
	LeaveSeat(seatID int64) (int64, error)
	DeactivateSeat(seatID int64) error

	StartRound(tableID int64) (*Round, error)
	CurrentRound(tableID int64) (*Round, error)
	CollectBets(roundID int64, seatIDs []int64, bet int64) (*Round, error)
	DealHands(roundID int64, hands []PlayerHand) ([]PlayerHand, error)
	GetPlayerHand(roundID, seatID int64) (*PlayerHand, error)
	RoundHands(roundID int64) ([]PlayerHand, error)
	UpdatePlayerHand(hand PlayerHand) error
	SettleRound(roundID, tableID int64, credits map[int64]int64, carry int64) error
}

func SetupDB(dbName string) (Repository, error) {
	var repository Repository = &SqliteStore{
		Logger: logger.New("database"),
	}
	err := repository.SetupConnection(dbName)
	return repository, err
}
