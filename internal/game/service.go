package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/anchal00/blackjack/internal/cards"
	"github.com/anchal00/blackjack/internal/config"
	"github.com/anchal00/blackjack/internal/db"
	"github.com/anchal00/blackjack/internal/logger"
)

type Options struct {
	Timings config.Timings
	Clock   Clock
	// Deck builds the deck for each round. Defaults to a shuffled 52 card deck.
	Deck   func(rng *rand.Rand) *cards.Deck
	Logger logger.Logger
}

// Service is the transport agnostic command surface. Every command is scoped to
// a table and the calling participant.
type Service struct {
	repo     db.Repository
	notifier *Notifier
	registry *Registry
	log      logger.Logger
	opts     Options
}

func NewService(repo db.Repository, sender Sender, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Deck == nil {
		opts.Deck = cards.NewDeck
	}
	if opts.Logger == nil {
		opts.Logger = logger.New("session")
	}
	return &Service{
		repo:     repo,
		notifier: NewNotifier(repo, sender, opts.Logger),
		registry: NewRegistry(opts.Logger),
		log:      opts.Logger,
		opts:     opts,
	}
}

func (svc *Service) Registry() *Registry {
	return svc.registry
}

type TableListing struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	CreatorID      string `json:"creator_id"`
	StartChips     int64  `json:"start_chips"`
	Status         string `json:"status"`
	AccumulatedPot int64  `json:"accumulated_pot"`
	PlayerCount    int    `json:"player_count"`
	HasPassword    bool   `json:"password"`
}

func (svc *Service) Me(participantID string) (*db.Account, error) {
	account, err := svc.repo.GetAccount(participantID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNoAccount
	}
	if err != nil {
		return nil, internal("failed to load account", err)
	}
	return account, nil
}

func (svc *Service) ListTables() ([]TableListing, error) {
	tables, err := svc.repo.ListOpenTables()
	if err != nil {
		return nil, internal("failed to list tables", err)
	}
	listings := make([]TableListing, 0, len(tables))
	for _, t := range tables {
		listings = append(listings, TableListing{
			ID:             t.ID,
			Name:           t.Name,
			CreatorID:      t.CreatorID,
			StartChips:     t.StartChips,
			Status:         string(t.Status),
			AccumulatedPot: t.AccumulatedPot,
			PlayerCount:    t.PlayerCount,
			HasPassword:    t.HasPassword(),
		})
	}
	return listings, nil
}

func (svc *Service) table(tableID int64) (*db.Table, error) {
	table, err := svc.repo.GetTable(tableID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, internal("failed to load table", err)
	}
	return table, nil
}

func (svc *Service) CreateTable(participantID, name string, startChips int64, password string) (*db.Table, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return nil, ErrInvalidTableName
	}
	if startChips < config.MinStartChips {
		return nil, ErrStartChipsTooLow
	}
	account, err := svc.Me(participantID)
	if err != nil {
		return nil, err
	}
	if account.Balance < startChips {
		return nil, ErrInsufficientChips
	}
	if _, err := svc.repo.GetTableByName(name); err == nil {
		return nil, ErrTableNameTaken
	}
	table, err := svc.repo.CreateTable(name, participantID, password, startChips)
	if errors.Is(err, db.ErrInsufficientChips) {
		return nil, ErrInsufficientChips
	}
	if err != nil {
		return nil, internal("failed to create table", err)
	}
	svc.log.Info(fmt.Sprintf("%s created table %d", participantID, table.ID))
	return table, nil
}

func (svc *Service) JoinTable(tableID int64, participantID, password string) (*db.Seat, error) {
	unlock := svc.registry.Lock(tableID)
	defer unlock()
	table, err := svc.table(tableID)
	if err != nil {
		return nil, err
	}
	if table.Status == db.TablePlaying {
		return nil, ErrGameInProgress
	}
	seats, err := svc.repo.ActiveSeats(tableID)
	if err != nil {
		return nil, internal("failed to load seats", err)
	}
	if len(seats) >= config.MaxSeats {
		return nil, ErrTableFull
	}
	if table.HasPassword() && table.Password.String != password {
		return nil, ErrWrongPassword
	}
	for _, seat := range seats {
		if seat.ParticipantID == participantID {
			return nil, ErrAlreadySeated
		}
	}
	account, err := svc.Me(participantID)
	if err != nil {
		return nil, err
	}
	if account.Balance < table.StartChips {
		return nil, ErrInsufficientChips
	}
	seat, err := svc.repo.JoinTable(tableID, participantID, table.StartChips)
	if errors.Is(err, db.ErrInsufficientChips) {
		return nil, ErrInsufficientChips
	}
	if err != nil {
		return nil, internal("failed to join table", err)
	}
	svc.notifier.Notify(tableID, fmt.Sprintf("👤 %s joined the table!", svc.repo.DisplayName(participantID)), participantID)
	svc.notifier.PushState(tableID, RoundView{})
	return seat, nil
}

func (svc *Service) LeaveTable(tableID int64, participantID string) error {
	unlock := svc.registry.Lock(tableID)
	defer unlock()
	seat, err := svc.repo.GetSeat(tableID, participantID)
	if errors.Is(err, db.ErrNotFound) || (err == nil && !seat.Active) {
		return ErrNotSeated
	}
	if err != nil {
		return internal("failed to load seat", err)
	}
	if sess, ok := svc.registry.Get(tableID); ok {
		return sess.leave(*seat)
	}

	refunded, err := svc.repo.LeaveSeat(seat.ID)
	if err != nil {
		return internal("failed to leave table", err)
	}
	name := svc.repo.DisplayName(participantID)
	svc.log.Info(fmt.Sprintf("%s left waiting table %d with %d chips", participantID, tableID, refunded))
	newCreator := handOverCreator(svc.repo, svc.notifier, svc.log, tableID, participantID)
	svc.notifier.Send(participantID, Event{Type: EventLeftTable})
	svc.notifier.Broadcast(tableID, Event{
		Type:    EventPlayerLeft,
		Message: fmt.Sprintf("👋 %s left.", name),
		Data:    PlayerLeft{ParticipantID: participantID, Name: name, NewCreator: newCreator},
	})
	remaining, err := svc.repo.ActiveSeats(tableID)
	if err != nil {
		return internal("failed to load seats", err)
	}
	if len(remaining) == 0 {
		if err := svc.repo.EndTable(tableID); err != nil {
			return internal("failed to remove empty table", err)
		}
		svc.registry.forget(tableID)
		return nil
	}
	svc.notifier.PushState(tableID, RoundView{})
	return nil
}

// handOverCreator makes the first active seat the creator when the creator leaves.
// It returns the new creator, or "" when nothing changed.
func handOverCreator(repo db.Repository, notifier *Notifier, log logger.Logger, tableID int64, leaverID string) string {
	table, err := repo.GetTable(tableID)
	if err != nil || table.CreatorID != leaverID {
		return ""
	}
	seats, err := repo.ActiveSeats(tableID)
	if err != nil || len(seats) == 0 {
		return ""
	}
	heir := seats[0].ParticipantID
	if err := repo.SetTableCreator(tableID, heir); err != nil {
		log.Error(fmt.Sprintf("Table %d: cannot hand creator over to %s", tableID, heir), err)
		return ""
	}
	notifier.Notify(tableID, fmt.Sprintf("👑 New creator: %s", repo.DisplayName(heir)))
	return heir
}

func (svc *Service) newSession(tableID int64) *Session {
	return &Session{
		mu:       svc.registry.unit(tableID),
		tableID:  tableID,
		repo:     svc.repo,
		notifier: svc.notifier,
		log:      svc.log,
		timings:  svc.opts.Timings,
		clock:    svc.opts.Clock,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano() + tableID)),
		newDeck:  svc.opts.Deck,
		onEnd:    svc.registry.forget,
	}
}

func (svc *Service) StartGame(tableID int64, participantID string) error {
	unlock := svc.registry.Lock(tableID)
	defer unlock()
	table, err := svc.table(tableID)
	if err != nil {
		return err
	}
	if table.CreatorID != participantID {
		return ErrNotCreator
	}
	if _, live := svc.registry.Get(tableID); live || table.Status == db.TablePlaying {
		return ErrGameInProgress
	}
	seats, err := svc.repo.ActiveSeats(tableID)
	if err != nil {
		return internal("failed to load seats", err)
	}
	if len(seats) < 2 {
		return ErrTooFewPlayers
	}
	if err := svc.repo.SetTableStatus(tableID, db.TablePlaying); err != nil {
		return internal("failed to start game", err)
	}
	sess := svc.newSession(tableID)
	svc.registry.register(sess)
	svc.notifier.Notify(tableID, "🎮 Game started!")
	if err := sess.startBettingPhase(); err != nil {
		svc.registry.drop(tableID)
		if errRevert := svc.repo.SetTableStatus(tableID, db.TableWaiting); errRevert != nil {
			svc.log.Error(fmt.Sprintf("Failed to revert table %d status", tableID), errRevert)
		}
		return err
	}
	return nil
}

// EndGame lets the creator close the table, refunding every seat.
func (svc *Service) EndGame(tableID int64, participantID string) error {
	unlock := svc.registry.Lock(tableID)
	defer unlock()
	table, err := svc.table(tableID)
	if err != nil {
		return err
	}
	if table.CreatorID != participantID {
		return ErrNotCreator
	}
	if sess, ok := svc.registry.Get(tableID); ok {
		sess.teardown()
		return nil
	}
	seats, err := svc.repo.ActiveSeats(tableID)
	if err != nil {
		return internal("failed to load seats", err)
	}
	if err := svc.repo.EndTable(tableID); err != nil {
		return internal("failed to end table", err)
	}
	svc.registry.forget(tableID)
	for _, seat := range seats {
		svc.notifier.Send(seat.ParticipantID, Event{Type: EventGameEnded, Message: "🏁 Game over!"})
	}
	return nil
}

func (svc *Service) session(tableID int64, absent error) (*Session, error) {
	if sess, ok := svc.registry.Get(tableID); ok {
		return sess, nil
	}
	if _, err := svc.table(tableID); err != nil {
		return nil, err
	}
	return nil, absent
}

func (svc *Service) PlaceBet(tableID int64, participantID string, amount int64) error {
	sess, err := svc.session(tableID, ErrNotBetting)
	if err != nil {
		return err
	}
	return sess.PlaceBet(participantID, amount)
}

func (svc *Service) Hit(tableID int64, participantID string) (HitResult, error) {
	sess, err := svc.session(tableID, ErrNotYourTurn)
	if err != nil {
		return HitResult{}, err
	}
	return sess.Hit(participantID)
}

func (svc *Service) Stand(tableID int64, participantID string) error {
	sess, err := svc.session(tableID, ErrNotYourTurn)
	if err != nil {
		return err
	}
	return sess.Stand(participantID)
}

func (svc *Service) Vote(tableID int64, participantID string, vote Vote) error {
	sess, err := svc.session(tableID, ErrNoVote)
	if err != nil {
		return err
	}
	return sess.Vote(participantID, vote)
}

// Connected greets a new connection and pushes the state of every table the participant sits at.
func (svc *Service) Connected(participantID string) {
	svc.notifier.Send(participantID, Event{Type: EventConnected, Data: map[string]string{"userId": participantID}})
	seats, err := svc.repo.ActiveSeatsOf(participantID)
	if err != nil {
		svc.log.Error(fmt.Sprintf("failed to load seats of %s", participantID), err)
		return
	}
	for _, seat := range seats {
		if sess, ok := svc.registry.Get(seat.TableID); ok {
			sess.PushState()
			continue
		}
		unlock := svc.registry.Lock(seat.TableID)
		svc.notifier.PushState(seat.TableID, RoundView{})
		unlock()
	}
}

// Disconnect is called by the transport when a participant's connection is lost.
// Every live session the participant sits at is told, so a held turn is forfeited wherever it is.
func (svc *Service) Disconnect(participantID string) {
	seats, err := svc.repo.ActiveSeatsOf(participantID)
	if err != nil {
		svc.log.Error(fmt.Sprintf("failed to load seats of %s", participantID), err)
		return
	}
	for _, seat := range seats {
		if sess, ok := svc.registry.Get(seat.TableID); ok {
			sess.Disconnect(participantID)
		}
	}
}
