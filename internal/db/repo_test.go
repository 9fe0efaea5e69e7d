package db

import (
	"testing"

	"github.com/anchal00/blackjack/internal/cards"
	"github.com/anchal00/blackjack/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SqliteStoreTestSuite struct {
	suite.Suite
	store *SqliteStore
}

func (suite *SqliteStoreTestSuite) SetupTest() {
	suite.store = &SqliteStore{Logger: logger.Discard()}
	suite.Require().NoError(suite.store.SetupConnection(":memory:"))
	for _, id := range []string{"alice", "bob", "carol"} {
		_, err := suite.store.EnsureAccount(id, id, "")
		suite.Require().NoError(err)
	}
}

func (suite *SqliteStoreTestSuite) TearDownTest() {
	suite.store.CloseConnection()
}

func TestSqliteStoreSuite(t *testing.T) {
	suite.Run(t, new(SqliteStoreTestSuite))
}

func (suite *SqliteStoreTestSuite) balance(id string) int64 {
	account, err := suite.store.GetAccount(id)
	suite.Require().NoError(err)
	return account.Balance
}

func (suite *SqliteStoreTestSuite) TestEnsureAccountIsIdempotent() {
	account, err := suite.store.EnsureAccount("alice", "renamed", "Alice")
	suite.Require().NoError(err)
	suite.Equal("alice", account.Username, "existing account must not be overwritten")
	suite.Equal(int64(1000), account.Balance)
	suite.Equal("@alice", suite.store.DisplayName("alice"))
	suite.Equal("ghost", suite.store.DisplayName("ghost"))

	_, err = suite.store.GetAccount("ghost")
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *SqliteStoreTestSuite) TestCreateAndJoinTable() {
	table, err := suite.store.CreateTable("high rollers", "alice", "secret", 100)
	suite.Require().NoError(err)
	suite.Equal(TableWaiting, table.Status)
	suite.True(table.HasPassword())
	suite.Equal(int64(900), suite.balance("alice"))

	seat, err := suite.store.JoinTable(table.ID, "bob", 100)
	suite.Require().NoError(err)
	suite.True(seat.Active)
	suite.Equal(int64(100), seat.Chips)
	suite.Equal(int64(900), suite.balance("bob"))

	seats, err := suite.store.ActiveSeats(table.ID)
	suite.Require().NoError(err)
	suite.Require().Len(seats, 2)
	suite.Equal("alice", seats[0].ParticipantID)

	tables, err := suite.store.ListOpenTables()
	suite.Require().NoError(err)
	suite.Require().Len(tables, 1)
	suite.Equal(2, tables[0].PlayerCount)

	_, err = suite.store.CreateTable("broke", "carol", "", 5000)
	suite.ErrorIs(err, ErrInsufficientChips)
	suite.Equal(int64(1000), suite.balance("carol"), "failed create must roll back")
	_, err = suite.store.GetTableByName("broke")
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *SqliteStoreTestSuite) TestLeaveSeatRefunds() {
	table, err := suite.store.CreateTable("t", "alice", "", 100)
	suite.Require().NoError(err)
	seat, err := suite.store.GetSeat(table.ID, "alice")
	suite.Require().NoError(err)

	refunded, err := suite.store.LeaveSeat(seat.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(100), refunded)
	suite.Equal(int64(1000), suite.balance("alice"))

	seats, err := suite.store.ActiveSeatsOf("alice")
	suite.Require().NoError(err)
	suite.Empty(seats)
}

func (suite *SqliteStoreTestSuite) TestRoundLifecycle() {
	table, err := suite.store.CreateTable("t", "alice", "", 100)
	suite.Require().NoError(err)
	bob, err := suite.store.JoinTable(table.ID, "bob", 100)
	suite.Require().NoError(err)
	alice, err := suite.store.GetSeat(table.ID, "alice")
	suite.Require().NoError(err)

	round, err := suite.store.StartRound(table.ID)
	suite.Require().NoError(err)
	suite.Equal(RoundBetting, round.Status)
	_, err = suite.store.StartRound(table.ID)
	suite.ErrorIs(err, ErrRoundInProgress, "only one open round per table")

	round, err = suite.store.CollectBets(round.ID, []int64{alice.ID, bob.ID}, 20)
	suite.Require().NoError(err)
	suite.Equal(int64(40), round.Pot)
	suite.Equal(RoundDealing, round.Status)

	hands, err := suite.store.DealHands(round.ID, []PlayerHand{
		{SeatID: alice.ID, Cards: cards.Cards{{Rank: "10", Suit: "♠"}, {Rank: "9", Suit: "♥"}}, Value: 19},
		{SeatID: bob.ID, Cards: cards.Cards{{Rank: "K", Suit: "♦"}, {Rank: "A", Suit: "♣"}}, Value: 21},
	})
	suite.Require().NoError(err)
	suite.Require().Len(hands, 2)

	hand, err := suite.store.GetPlayerHand(round.ID, bob.ID)
	suite.Require().NoError(err)
	suite.Equal(21, hand.Value)
	suite.Len(hand.Cards, 2)

	hand.Stood = true
	suite.Require().NoError(suite.store.UpdatePlayerHand(*hand))
	hand, err = suite.store.GetPlayerHand(round.ID, bob.ID)
	suite.Require().NoError(err)
	suite.True(hand.Stood)

	current, err := suite.store.CurrentRound(table.ID)
	suite.Require().NoError(err)
	suite.Equal(RoundPlaying, current.Status)

	suite.Require().NoError(suite.store.SettleRound(round.ID, table.ID, map[int64]int64{bob.ID: 40}, 0))
	_, err = suite.store.CurrentRound(table.ID)
	suite.ErrorIs(err, ErrNotFound)

	bobSeat, err := suite.store.GetSeat(table.ID, "bob")
	suite.Require().NoError(err)
	suite.Equal(int64(120), bobSeat.Chips)
}

func (suite *SqliteStoreTestSuite) TestCarryAndEndTable() {
	table, err := suite.store.CreateTable("t", "alice", "", 100)
	suite.Require().NoError(err)
	bob, err := suite.store.JoinTable(table.ID, "bob", 100)
	suite.Require().NoError(err)
	alice, err := suite.store.GetSeat(table.ID, "alice")
	suite.Require().NoError(err)

	round, err := suite.store.StartRound(table.ID)
	suite.Require().NoError(err)
	round, err = suite.store.CollectBets(round.ID, []int64{alice.ID, bob.ID}, 10)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.store.SettleRound(round.ID, table.ID, nil, round.Pot))

	next, err := suite.store.StartRound(table.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(20), next.Pot, "carried pot seeds the next round")
	t, err := suite.store.GetTable(table.ID)
	suite.Require().NoError(err)
	suite.Zero(t.AccumulatedPot)

	_, err = suite.store.CollectBets(next.ID, []int64{alice.ID}, 500)
	suite.ErrorIs(err, ErrInsufficientChips)
	aliceSeat, err := suite.store.GetSeat(table.ID, "alice")
	suite.Require().NoError(err)
	suite.Equal(int64(90), aliceSeat.Chips, "failed collection must roll back")

	suite.Require().NoError(suite.store.EndTable(table.ID))
	suite.Equal(int64(990), suite.balance("alice"))
	suite.Equal(int64(990), suite.balance("bob"))
	_, err = suite.store.GetTable(table.ID)
	suite.ErrorIs(err, ErrNotFound)
}

func TestAccountDisplayName(t *testing.T) {
	assert.Equal(t, "@neo", Account{ParticipantID: "1", Username: "neo"}.DisplayName())
	assert.Equal(t, "Thomas", Account{ParticipantID: "1", FirstName: "Thomas"}.DisplayName())
	require.Equal(t, "1", Account{ParticipantID: "1"}.DisplayName())
}
