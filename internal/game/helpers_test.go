package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/anchal00/blackjack/internal/cards"
	"github.com/anchal00/blackjack/internal/config"
	"github.com/anchal00/blackjack/internal/db"
	"github.com/anchal00/blackjack/internal/logger"
	"github.com/stretchr/testify/suite"
)

type fakeTimer struct {
	clock   *fakeClock
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	live := !t.stopped && !t.fired
	t.stopped = true
	return live
}

// fakeClock only runs tasks when the test fires them.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) live() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.timers) - 1; i >= 0; i-- {
		if t := c.timers[i]; !t.stopped && !t.fired {
			return t
		}
	}
	return nil
}

func (c *fakeClock) Pending() (time.Duration, bool) {
	t := c.live()
	if t == nil {
		return 0, false
	}
	return t.d, true
}

// Fire runs the latest live task as if its delay elapsed.
func (c *fakeClock) Fire() bool {
	t := c.live()
	if t == nil {
		return false
	}
	c.mu.Lock()
	t.fired = true
	c.mu.Unlock()
	t.f()
	return true
}

type recorder struct {
	mu     sync.Mutex
	events map[string][]Event
}

func newRecorder() *recorder {
	return &recorder{events: map[string][]Event{}}
}

func (r *recorder) SendToParticipant(participantID string, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[participantID] = append(r.events[participantID], event)
}

func (r *recorder) Of(participantID string, typ EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events[participantID] {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) Last(participantID string, typ EventType) (Event, bool) {
	events := r.Of(participantID, typ)
	if len(events) == 0 {
		return Event{}, false
	}
	return events[len(events)-1], true
}

func (r *recorder) Notices(participantID, contains string) int {
	count := 0
	for _, ev := range r.Of(participantID, EventNotify) {
		if strings.Contains(ev.Message, contains) {
			count++
		}
	}
	return count
}

func card(rank string) cards.Card {
	return cards.Card{Rank: rank, Suit: "♠"}
}

// gameSuite runs the service against an in-memory store, a fake clock and
// scripted decks. Inter-phase delays are zero so they run inline.
type gameSuite struct {
	suite.Suite
	store  *db.SqliteStore
	clock  *fakeClock
	sender *recorder
	decks  [][]cards.Card
	svc    *Service
}

func (suite *gameSuite) SetupTest() {
	suite.store = &db.SqliteStore{Logger: logger.Discard()}
	suite.Require().NoError(suite.store.SetupConnection(":memory:"))
	for _, id := range []string{"alice", "bob", "carol"} {
		_, err := suite.store.EnsureAccount(id, id, "")
		suite.Require().NoError(err)
	}
	suite.clock = &fakeClock{}
	suite.sender = newRecorder()
	suite.decks = nil
	suite.svc = NewService(suite.store, suite.sender, Options{
		Timings: config.Timings{
			BetDeadline:  60 * time.Second,
			TurnDeadline: 15 * time.Second,
			VoteDeadline: 30 * time.Second,
		},
		Clock:  suite.clock,
		Deck:   suite.nextDeck,
		Logger: logger.Discard(),
	})
}

func (suite *gameSuite) TearDownTest() {
	suite.store.CloseConnection()
}

func (suite *gameSuite) nextDeck(rng *rand.Rand) *cards.Deck {
	if len(suite.decks) == 0 {
		return cards.NewDeck(rng)
	}
	next := suite.decks[0]
	suite.decks = suite.decks[1:]
	return cards.NewStackedDeck(next...)
}

func (suite *gameSuite) stack(cs ...cards.Card) {
	suite.decks = append(suite.decks, cs)
}

// openTable seats the players in order, the first as creator, without starting.
func (suite *gameSuite) openTable(startChips int64, players ...string) int64 {
	table, err := suite.svc.CreateTable(players[0], "table of "+players[0], startChips, "")
	suite.Require().NoError(err)
	for _, p := range players[1:] {
		_, err := suite.svc.JoinTable(table.ID, p, "")
		suite.Require().NoError(err)
	}
	return table.ID
}

func (suite *gameSuite) startTable(startChips int64, players ...string) int64 {
	tableID := suite.openTable(startChips, players...)
	suite.Require().NoError(suite.svc.StartGame(tableID, players[0]))
	return tableID
}

func (suite *gameSuite) session(tableID int64) *Session {
	sess, ok := suite.svc.Registry().Get(tableID)
	suite.Require().True(ok, "table %d has no live session", tableID)
	return sess
}

func (suite *gameSuite) chips(tableID int64, participantID string) int64 {
	seat, err := suite.store.GetSeat(tableID, participantID)
	suite.Require().NoError(err)
	return seat.Chips
}

func (suite *gameSuite) balance(participantID string) int64 {
	account, err := suite.store.GetAccount(participantID)
	suite.Require().NoError(err)
	return account.Balance
}

func (suite *gameSuite) hand(tableID int64, participantID string) *db.PlayerHand {
	round, err := suite.store.CurrentRound(tableID)
	suite.Require().NoError(err)
	seat, err := suite.store.GetSeat(tableID, participantID)
	suite.Require().NoError(err)
	hand, err := suite.store.GetPlayerHand(round.ID, seat.ID)
	suite.Require().NoError(err)
	return hand
}
