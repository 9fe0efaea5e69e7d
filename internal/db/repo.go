package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/anchal00/blackjack/internal/config"
	"github.com/anchal00/blackjack/internal/logger"
	"github.com/jmoiron/sqlx"
)

var ErrRoundInProgress = errors.New("table already has a round in progress")
var ErrInsufficientChips = errors.New("insufficient chips")

var schema = `CREATE TABLE IF NOT EXISTS accounts (
  participant_id varchar PRIMARY KEY,
  username varchar DEFAULT '' NOT NULL,
  first_name varchar DEFAULT '' NOT NULL,
  balance int DEFAULT %d NOT NULL,
  CONSTRAINT non_negative_balance CHECK (balance >= 0)
);

CREATE TABLE IF NOT EXISTS tables (
  id integer PRIMARY KEY AUTOINCREMENT,
  name varchar NOT NULL UNIQUE,
  creator_id varchar NOT NULL,
  password varchar,
  start_chips int DEFAULT 100 NOT NULL,
  status varchar DEFAULT 'waiting' NOT NULL,
  accumulated_pot int DEFAULT 0 NOT NULL
);

CREATE TABLE IF NOT EXISTS seats (
  id integer PRIMARY KEY AUTOINCREMENT,
  table_id int NOT NULL,
  participant_id varchar NOT NULL,
  chips int NOT NULL,
  active boolean DEFAULT true NOT NULL,
  CONSTRAINT unq_seat UNIQUE (table_id, participant_id),
  CONSTRAINT non_negative_chips CHECK (chips >= 0)
);

CREATE TABLE IF NOT EXISTS rounds (
  id integer PRIMARY KEY AUTOINCREMENT,
  table_id int NOT NULL,
  pot int DEFAULT 0 NOT NULL,
  bet_per_player int DEFAULT 0 NOT NULL,
  status varchar DEFAULT 'betting' NOT NULL
);

CREATE TABLE IF NOT EXISTS player_hands (
  id integer PRIMARY KEY AUTOINCREMENT,
  round_id int NOT NULL,
  seat_id int NOT NULL,
  cards varchar DEFAULT '[]' NOT NULL,
  hand_value int DEFAULT 0 NOT NULL,
  stood boolean DEFAULT false NOT NULL,
  busted boolean DEFAULT false NOT NULL,
  CONSTRAINT unq_hand UNIQUE (round_id, seat_id)
);`

const tableColumns = `id, name, creator_id, password, start_chips, status, accumulated_pot`
const seatColumns = `id, table_id, participant_id, chips, active`
const roundColumns = `id, table_id, pot, bet_per_player, status`
const handColumns = `id, round_id, seat_id, cards, hand_value, stood, busted`

type SqliteStore struct {
	Conn   *sqlx.DB
	Logger logger.Logger
}

func (s *SqliteStore) SetupConnection(dbname string) error {
	sqliteDbfile := dbname
	if dbname != ":memory:" {
		sqliteDbfile = dbname + ".db"
	}
	db, err := sqlx.Connect("sqlite3", sqliteDbfile)
	if err != nil {
		s.Logger.Error("Database setup failed", err)
		return err
	}
	// SQLite has a single writer, and a :memory: database only lives on its connection.
	db.SetMaxOpenConns(1)
	s.Conn = db
	if _, err := s.Conn.Exec(fmt.Sprintf(schema, config.NewAccountBalance)); err != nil {
		s.Logger.Error("Failed to apply schema", err)
		return err
	}
	s.Logger.Info(fmt.Sprintf("Database %s setup successfully", sqliteDbfile))
	return nil
}

func (s *SqliteStore) CloseConnection() {
	s.Logger.Info("Closing database connection")
	if err := s.Conn.Close(); err != nil {
		s.Logger.Error("Failed to tear down database connection", err)
		return
	}
	s.Logger.Info("Database connection closed successfully")
}

// inTxn runs fn inside a transaction, rolling back on any error.
func (s *SqliteStore) inTxn(name string, fn func(txn *sqlx.Tx) error) error {
	txn, err := s.Conn.Beginx()
	if err != nil {
		s.Logger.Error(fmt.Sprintf("Failed to begin %s txn", name), err)
		return err
	}
	if err := fn(txn); err != nil {
		s.Logger.Error(fmt.Sprintf("%s failed", name), err)
		if errRoll := txn.Rollback(); errRoll != nil {
			s.Logger.Error(fmt.Sprintf("Failed to rollback %s txn", name), errRoll)
		}
		return err
	}
	if errCommit := txn.Commit(); errCommit != nil {
		s.Logger.Error(fmt.Sprintf("Failed to commit %s txn", name), errCommit)
		return errCommit
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *SqliteStore) EnsureAccount(participantID, username, firstName string) (*Account, error) {
	sql := `INSERT OR IGNORE INTO accounts(participant_id, username, first_name) VALUES(?, ?, ?);`
	if _, err := s.Conn.Exec(sql, participantID, username, firstName); err != nil {
		return nil, fmt.Errorf("ensure account %s: %w", participantID, err)
	}
	return s.GetAccount(participantID)
}

func (s *SqliteStore) GetAccount(participantID string) (*Account, error) {
	sql := `SELECT participant_id, username, first_name, balance FROM accounts WHERE participant_id = ?;`
	account := &Account{}
	if err := s.Conn.Get(account, sql, participantID); err != nil {
		return nil, notFound(err)
	}
	return account, nil
}

func (s *SqliteStore) DisplayName(participantID string) string {
	account, err := s.GetAccount(participantID)
	if err != nil {
		return participantID
	}
	return account.DisplayName()
}

func (s *SqliteStore) ListOpenTables() ([]TableSummary, error) {
	sql := `SELECT t.id, t.name, t.creator_id, t.password, t.start_chips, t.status, t.accumulated_pot,
	  COUNT(s.id) AS player_count
	FROM tables t
	LEFT JOIN seats s ON t.id = s.table_id AND s.active = 1
	WHERE t.status != 'ended'
	GROUP BY t.id
	ORDER BY t.id;`
	tables := []TableSummary{}
	if err := s.Conn.Select(&tables, sql); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

func debitAccount(txn *sqlx.Tx, participantID string, amount int64) error {
	res, err := txn.Exec(`UPDATE accounts SET balance = balance - ? WHERE participant_id = ? AND balance >= ?;`,
		amount, participantID, amount)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return ErrInsufficientChips
	}
	return nil
}

func (s *SqliteStore) CreateTable(name, creatorID, password string, startChips int64) (*Table, error) {
	var tableID int64
	err := s.inTxn("CreateTable", func(txn *sqlx.Tx) error {
		pw := sql.NullString{String: password, Valid: len(password) != 0}
		res, err := txn.Exec(`INSERT INTO tables(name, creator_id, password, start_chips) VALUES(?, ?, ?, ?);`,
			name, creatorID, pw, startChips)
		if err != nil {
			return err
		}
		if tableID, err = res.LastInsertId(); err != nil {
			return err
		}
		if err := debitAccount(txn, creatorID, startChips); err != nil {
			return err
		}
		_, err = txn.Exec(`INSERT INTO seats(table_id, participant_id, chips) VALUES(?, ?, ?);`,
			tableID, creatorID, startChips)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create table %q: %w", name, err)
	}
	s.Logger.Info(fmt.Sprintf("Table %d (%s) created by %s", tableID, name, creatorID))
	return s.GetTable(tableID)
}

func (s *SqliteStore) GetTable(tableID int64) (*Table, error) {
	table := &Table{}
	if err := s.Conn.Get(table, `SELECT `+tableColumns+` FROM tables WHERE id = ?;`, tableID); err != nil {
		return nil, notFound(err)
	}
	return table, nil
}

func (s *SqliteStore) GetTableByName(name string) (*Table, error) {
	table := &Table{}
	if err := s.Conn.Get(table, `SELECT `+tableColumns+` FROM tables WHERE name = ?;`, name); err != nil {
		return nil, notFound(err)
	}
	return table, nil
}

func (s *SqliteStore) SetTableStatus(tableID int64, status TableStatus) error {
	if _, err := s.Conn.Exec(`UPDATE tables SET status = ? WHERE id = ?;`, status, tableID); err != nil {
		return fmt.Errorf("set table %d status: %w", tableID, err)
	}
	return nil
}

func (s *SqliteStore) SetTableCreator(tableID int64, creatorID string) error {
	if _, err := s.Conn.Exec(`UPDATE tables SET creator_id = ? WHERE id = ?;`, creatorID, tableID); err != nil {
		return fmt.Errorf("set table %d creator: %w", tableID, err)
	}
	return nil
}

// EndTable credits every seat's chips back to its account and removes the table with all its rows.
func (s *SqliteStore) EndTable(tableID int64) error {
	err := s.inTxn("EndTable", func(txn *sqlx.Tx) error {
		seats := []Seat{}
		if err := txn.Select(&seats, `SELECT `+seatColumns+` FROM seats WHERE table_id = ?;`, tableID); err != nil {
			return err
		}
		for _, seat := range seats {
			if seat.Chips <= 0 {
				continue
			}
			if _, err := txn.Exec(`UPDATE accounts SET balance = balance + ? WHERE participant_id = ?;`,
				seat.Chips, seat.ParticipantID); err != nil {
				return err
			}
		}
		stmts := []string{
			`DELETE FROM player_hands WHERE round_id IN (SELECT id FROM rounds WHERE table_id = ?);`,
			`DELETE FROM rounds WHERE table_id = ?;`,
			`DELETE FROM seats WHERE table_id = ?;`,
			`DELETE FROM tables WHERE id = ?;`,
		}
		for _, stmt := range stmts {
			if _, err := txn.Exec(stmt, tableID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("end table %d: %w", tableID, err)
	}
	s.Logger.Info(fmt.Sprintf("Table %d removed", tableID))
	return nil
}

func (s *SqliteStore) JoinTable(tableID int64, participantID string, chips int64) (*Seat, error) {
	err := s.inTxn("JoinTable", func(txn *sqlx.Tx) error {
		if err := debitAccount(txn, participantID, chips); err != nil {
			return err
		}
		_, err := txn.Exec(`INSERT INTO seats(table_id, participant_id, chips, active) VALUES(?, ?, ?, 1)
		  ON CONFLICT(table_id, participant_id) DO UPDATE SET chips = excluded.chips, active = 1;`,
			tableID, participantID, chips)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("join table %d: %w", tableID, err)
	}
	s.Logger.Info(fmt.Sprintf("Participant %s seated at table %d", participantID, tableID))
	return s.GetSeat(tableID, participantID)
}

func (s *SqliteStore) GetSeat(tableID int64, participantID string) (*Seat, error) {
	seat := &Seat{}
	sql := `SELECT ` + seatColumns + ` FROM seats WHERE table_id = ? AND participant_id = ?;`
	if err := s.Conn.Get(seat, sql, tableID, participantID); err != nil {
		return nil, notFound(err)
	}
	return seat, nil
}

func (s *SqliteStore) ActiveSeats(tableID int64) ([]Seat, error) {
	seats := []Seat{}
	sql := `SELECT ` + seatColumns + ` FROM seats WHERE table_id = ? AND active = 1 ORDER BY id;`
	if err := s.Conn.Select(&seats, sql, tableID); err != nil {
		return nil, fmt.Errorf("active seats of table %d: %w", tableID, err)
	}
	return seats, nil
}

// ActiveSeatsOf lists every table the participant is still seated at, oldest first.
func (s *SqliteStore) ActiveSeatsOf(participantID string) ([]Seat, error) {
	seats := []Seat{}
	sql := `SELECT ` + seatColumns + ` FROM seats WHERE participant_id = ? AND active = 1 ORDER BY id;`
	if err := s.Conn.Select(&seats, sql, participantID); err != nil {
		return nil, fmt.Errorf("active seats of %s: %w", participantID, err)
	}
	return seats, nil
}

// LeaveSeat deactivates the seat and returns its remaining chips to the account.
func (s *SqliteStore) LeaveSeat(seatID int64) (int64, error) {
	var refunded int64
	err := s.inTxn("LeaveSeat", func(txn *sqlx.Tx) error {
		seat := Seat{}
		if err := txn.Get(&seat, `SELECT `+seatColumns+` FROM seats WHERE id = ?;`, seatID); err != nil {
			return notFound(err)
		}
		refunded = seat.Chips
		if _, err := txn.Exec(`UPDATE accounts SET balance = balance + ? WHERE participant_id = ?;`,
			seat.Chips, seat.ParticipantID); err != nil {
			return err
		}
		_, err := txn.Exec(`UPDATE seats SET chips = 0, active = 0 WHERE id = ?;`, seatID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("leave seat %d: %w", seatID, err)
	}
	return refunded, nil
}

func (s *SqliteStore) DeactivateSeat(seatID int64) error {
	if _, err := s.Conn.Exec(`UPDATE seats SET active = 0 WHERE id = ?;`, seatID); err != nil {
		return fmt.Errorf("deactivate seat %d: %w", seatID, err)
	}
	return nil
}

// StartRound opens a betting round whose pot starts at the table's accumulated pot.
func (s *SqliteStore) StartRound(tableID int64) (*Round, error) {
	var roundID int64
	err := s.inTxn("StartRound", func(txn *sqlx.Tx) error {
		var open int
		if err := txn.Get(&open, `SELECT COUNT(*) FROM rounds WHERE table_id = ? AND status != 'done';`, tableID); err != nil {
			return err
		}
		if open != 0 {
			return ErrRoundInProgress
		}
		var carried int64
		if err := txn.Get(&carried, `SELECT accumulated_pot FROM tables WHERE id = ?;`, tableID); err != nil {
			return notFound(err)
		}
		res, err := txn.Exec(`INSERT INTO rounds(table_id, pot, bet_per_player, status) VALUES(?, ?, 0, 'betting');`,
			tableID, carried)
		if err != nil {
			return err
		}
		if roundID, err = res.LastInsertId(); err != nil {
			return err
		}
		_, err = txn.Exec(`UPDATE tables SET accumulated_pot = 0 WHERE id = ?;`, tableID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("start round at table %d: %w", tableID, err)
	}
	return s.getRound(roundID)
}

func (s *SqliteStore) getRound(roundID int64) (*Round, error) {
	round := &Round{}
	if err := s.Conn.Get(round, `SELECT `+roundColumns+` FROM rounds WHERE id = ?;`, roundID); err != nil {
		return nil, notFound(err)
	}
	return round, nil
}

func (s *SqliteStore) CurrentRound(tableID int64) (*Round, error) {
	round := &Round{}
	sql := `SELECT ` + roundColumns + ` FROM rounds WHERE table_id = ? AND status != 'done' ORDER BY id DESC LIMIT 1;`
	if err := s.Conn.Get(round, sql, tableID); err != nil {
		return nil, notFound(err)
	}
	return round, nil
}

// CollectBets takes bet chips from every seat into the pot and moves the round to dealing.
func (s *SqliteStore) CollectBets(roundID int64, seatIDs []int64, bet int64) (*Round, error) {
	err := s.inTxn("CollectBets", func(txn *sqlx.Tx) error {
		for _, seatID := range seatIDs {
			res, err := txn.Exec(`UPDATE seats SET chips = chips - ? WHERE id = ? AND chips >= ?;`, bet, seatID, bet)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n != 1 {
				return fmt.Errorf("seat %d: %w", seatID, ErrInsufficientChips)
			}
		}
		_, err := txn.Exec(`UPDATE rounds SET pot = pot + ?, bet_per_player = ?, status = 'dealing' WHERE id = ?;`,
			bet*int64(len(seatIDs)), bet, roundID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("collect bets for round %d: %w", roundID, err)
	}
	return s.getRound(roundID)
}

// DealHands stores the initial hands and moves the round to playing.
func (s *SqliteStore) DealHands(roundID int64, hands []PlayerHand) ([]PlayerHand, error) {
	dealt := make([]PlayerHand, 0, len(hands))
	err := s.inTxn("DealHands", func(txn *sqlx.Tx) error {
		for _, hand := range hands {
			res, err := txn.Exec(`INSERT INTO player_hands(round_id, seat_id, cards, hand_value, stood, busted)
			  VALUES(?, ?, ?, ?, ?, ?);`, roundID, hand.SeatID, hand.Cards, hand.Value, hand.Stood, hand.Busted)
			if err != nil {
				return err
			}
			if hand.ID, err = res.LastInsertId(); err != nil {
				return err
			}
			hand.RoundID = roundID
			dealt = append(dealt, hand)
		}
		_, err := txn.Exec(`UPDATE rounds SET status = 'playing' WHERE id = ?;`, roundID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("deal hands for round %d: %w", roundID, err)
	}
	return dealt, nil
}

func (s *SqliteStore) GetPlayerHand(roundID, seatID int64) (*PlayerHand, error) {
	hand := &PlayerHand{}
	sql := `SELECT ` + handColumns + ` FROM player_hands WHERE round_id = ? AND seat_id = ?;`
	if err := s.Conn.Get(hand, sql, roundID, seatID); err != nil {
		return nil, notFound(err)
	}
	return hand, nil
}

func (s *SqliteStore) RoundHands(roundID int64) ([]PlayerHand, error) {
	hands := []PlayerHand{}
	sql := `SELECT ` + handColumns + ` FROM player_hands WHERE round_id = ? ORDER BY id;`
	if err := s.Conn.Select(&hands, sql, roundID); err != nil {
		return nil, fmt.Errorf("hands of round %d: %w", roundID, err)
	}
	return hands, nil
}

func (s *SqliteStore) UpdatePlayerHand(hand PlayerHand) error {
	sql := `UPDATE player_hands SET cards = ?, hand_value = ?, stood = ?, busted = ? WHERE id = ?;`
	if _, err := s.Conn.Exec(sql, hand.Cards, hand.Value, hand.Stood, hand.Busted, hand.ID); err != nil {
		return fmt.Errorf("update hand %d: %w", hand.ID, err)
	}
	return nil
}

// SettleRound marks the round done, credits winners and carries any undistributed pot to the table.
func (s *SqliteStore) SettleRound(roundID, tableID int64, credits map[int64]int64, carry int64) error {
	err := s.inTxn("SettleRound", func(txn *sqlx.Tx) error {
		if _, err := txn.Exec(`UPDATE rounds SET status = 'done' WHERE id = ?;`, roundID); err != nil {
			return err
		}
		for seatID, amount := range credits {
			if _, err := txn.Exec(`UPDATE seats SET chips = chips + ? WHERE id = ?;`, amount, seatID); err != nil {
				return err
			}
		}
		if carry == 0 {
			return nil
		}
		_, err := txn.Exec(`UPDATE tables SET accumulated_pot = accumulated_pot + ? WHERE id = ?;`, carry, tableID)
		return err
	})
	if err != nil {
		return fmt.Errorf("settle round %d: %w", roundID, err)
	}
	return nil
}
