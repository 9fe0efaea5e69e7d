package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/anchal00/blackjack/internal/cards"
	"github.com/anchal00/blackjack/internal/config"
	"github.com/anchal00/blackjack/internal/db"
	"github.com/anchal00/blackjack/internal/logger"
	"github.com/hashicorp/go-set/v2"
)

type Phase string

const (
	PhaseBetting      Phase = "betting"
	PhaseDealing      Phase = "dealing"
	PhasePlaying      Phase = "playing"
	PhaseResolving    Phase = "resolving"
	PhaseContinueVote Phase = "continue_vote"
	PhaseTeardown     Phase = "teardown"
)

type Vote string

const (
	VoteContinue Vote = "continue"
	VoteLeave    Vote = "leave"
)

func ParseVote(raw string) (Vote, error) {
	switch Vote(strings.ToLower(strings.TrimSpace(raw))) {
	case VoteContinue:
		return VoteContinue, nil
	case VoteLeave:
		return VoteLeave, nil
	}
	return "", ErrInvalidVote
}

// retryDelay spaces out retries of a timer driven step whose storage write failed.
const retryDelay = time.Second

// Session owns the round lifecycle of one table. Every exported method, every timer
// callback and every delayed step runs under mu, the table's serialization unit.
type Session struct {
	mu       *sync.Mutex
	tableID  int64
	repo     db.Repository
	notifier *Notifier
	log      logger.Logger
	timings  config.Timings
	clock    Clock
	rng      *rand.Rand
	newDeck  func(rng *rand.Rand) *cards.Deck
	onEnd    func(tableID int64)

	phase    Phase
	round    *db.Round
	bets     map[string]int64
	deck     *cards.Deck
	turns    *TurnScheduler
	turnOpen bool
	hands    map[string]*db.PlayerHand
	departed *set.Set[string]
	votes    map[string]Vote

	pending Timer
	epoch   uint64
}

func (s *Session) view() RoundView {
	v := RoundView{Phase: s.phase}
	if s.phase == PhaseBetting {
		v.Bets = s.bets
	}
	if s.turns != nil && s.turnOpen {
		v.CurrentTurn, _ = s.turns.Current()
	}
	return v
}

func (s *Session) pushState() {
	s.notifier.PushState(s.tableID, s.view())
}

// PushState re-sends every seat its snapshot, e.g. when a participant reconnects.
func (s *Session) PushState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushState()
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) name(participantID string) string {
	return s.repo.DisplayName(participantID)
}

// schedule replaces the pending task with fn after d. A fired task re-checks that the
// session is still in the epoch and phase it was armed for, so a task whose
// cancellation lost the race is a no-op.
func (s *Session) schedule(d time.Duration, fn func()) {
	s.cancelPending()
	if d <= 0 {
		fn()
		return
	}
	epoch, phase := s.epoch, s.phase
	s.pending = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != epoch || s.phase != phase {
			s.log.Debug(fmt.Sprintf("Table %d: stale %s timer ignored", s.tableID, phase))
			return
		}
		s.pending = nil
		fn()
	})
}

func (s *Session) retry(step string, err error, fn func()) {
	s.log.Error(fmt.Sprintf("Table %d: %s failed, retrying in %s", s.tableID, step, retryDelay), err)
	s.schedule(retryDelay, fn)
}

func (s *Session) cancelPending() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.epoch++
}

func (s *Session) activeSeats() ([]db.Seat, error) {
	seats, err := s.repo.ActiveSeats(s.tableID)
	if err != nil {
		return nil, internal("failed to load seats", err)
	}
	return seats, nil
}

func (s *Session) activeSeat(participantID string) (*db.Seat, error) {
	seat, err := s.repo.GetSeat(s.tableID, participantID)
	if errors.Is(err, db.ErrNotFound) || (err == nil && !seat.Active) {
		return nil, ErrNotSeated
	}
	if err != nil {
		return nil, internal("failed to load seat", err)
	}
	return seat, nil
}

// startBettingPhase opens a new round carrying the accumulated pot.
func (s *Session) startBettingPhase() error {
	round, err := s.repo.StartRound(s.tableID)
	if err != nil {
		return internal("failed to start round", err)
	}
	s.cancelPending()
	s.round = round
	s.phase = PhaseBetting
	s.bets = map[string]int64{}
	s.deck = nil
	s.turns = nil
	s.turnOpen = false
	s.hands = map[string]*db.PlayerHand{}
	s.departed = set.New[string](0)
	s.votes = nil
	s.log.Info(fmt.Sprintf("Table %d: round %d betting opened, pot %d", s.tableID, round.ID, round.Pot))

	s.notifier.Notify(s.tableID, fmt.Sprintf("💰 Place your bets! (min %d chips, %ds)",
		config.MinBet, int(s.timings.BetDeadline.Seconds())))
	s.pushState()
	s.schedule(s.timings.BetDeadline, s.betDeadlineExpired)
	return nil
}

func (s *Session) betDeadlineExpired() {
	seats, err := s.activeSeats()
	if err != nil {
		s.retry("bet deadline", err, s.betDeadlineExpired)
		return
	}
	for _, seat := range seats {
		if _, ok := s.bets[seat.ParticipantID]; !ok {
			s.bets[seat.ParticipantID] = min(int64(config.MinBet), seat.Chips)
			s.log.Info(fmt.Sprintf("Table %d: auto bet %d for %s", s.tableID, s.bets[seat.ParticipantID], seat.ParticipantID))
		}
	}
	s.closeBettingIfComplete()
}

// PlaceBet records a participant's bet for the current round.
func (s *Session) PlaceBet(participantID string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseBetting {
		return ErrNotBetting
	}
	seat, err := s.activeSeat(participantID)
	if err != nil {
		return err
	}
	if amount < config.MinBet {
		return ErrBetTooSmall
	}
	if amount > seat.Chips {
		return ErrInsufficientChips
	}
	if _, ok := s.bets[participantID]; ok {
		return ErrDuplicateBet
	}
	s.bets[participantID] = amount
	s.log.Info(fmt.Sprintf("Table %d: %s bet %d", s.tableID, participantID, amount))

	s.notifier.Notify(s.tableID, fmt.Sprintf("💰 %s placed a bet.", s.name(participantID)), participantID)
	s.notifier.Send(participantID, notice(fmt.Sprintf("✅ Your bet: %d chips", amount)))
	s.pushState()
	s.closeBettingIfComplete()
	return nil
}

// closeBettingIfComplete charges the smallest bet to every seat once all seats have bet.
func (s *Session) closeBettingIfComplete() {
	seats, err := s.activeSeats()
	if err != nil {
		s.log.Error(fmt.Sprintf("Table %d: cannot check bets", s.tableID), err)
		return
	}
	if len(seats) == 0 {
		s.teardown()
		return
	}
	minBet := int64(-1)
	seatIDs := make([]int64, 0, len(seats))
	for _, seat := range seats {
		bet, ok := s.bets[seat.ParticipantID]
		if !ok {
			return
		}
		if minBet < 0 || bet < minBet {
			minBet = bet
		}
		seatIDs = append(seatIDs, seat.ID)
	}

	round, err := s.repo.CollectBets(s.round.ID, seatIDs, minBet)
	if err != nil {
		s.retry("collect bets", err, s.closeBettingIfComplete)
		return
	}
	s.cancelPending()
	s.round = round
	s.phase = PhaseDealing
	s.log.Info(fmt.Sprintf("Table %d: bets closed at %d per seat, pot %d", s.tableID, minBet, round.Pot))

	s.notifier.Notify(s.tableID, fmt.Sprintf("✅ All bets are in! Pot: %d chips", round.Pot))
	s.schedule(s.timings.DealDelay, s.dealCards)
}

// dealCards gives two cards to every active seat and fixes the turn order.
func (s *Session) dealCards() {
	seats, err := s.activeSeats()
	if err != nil {
		s.retry("deal", err, s.dealCards)
		return
	}
	deck := s.newDeck(s.rng)
	hands := make([]db.PlayerHand, 0, len(seats))
	for _, seat := range seats {
		dealt := cards.Cards{}
		for i := 0; i < 2; i++ {
			c, ok := deck.Draw()
			if !ok {
				deck = s.newDeck(s.rng)
				c, _ = deck.Draw()
			}
			dealt = append(dealt, c)
		}
		value, busted := cards.Evaluate(dealt)
		hands = append(hands, db.PlayerHand{SeatID: seat.ID, Cards: dealt, Value: value, Stood: busted, Busted: busted})
	}
	stored, err := s.repo.DealHands(s.round.ID, hands)
	if err != nil {
		s.retry("deal", err, s.dealCards)
		return
	}

	order := make([]string, 0, len(seats))
	s.hands = make(map[string]*db.PlayerHand, len(seats))
	for i, seat := range seats {
		hand := stored[i]
		s.hands[seat.ParticipantID] = &hand
		order = append(order, seat.ParticipantID)
	}
	s.deck = deck
	s.turns = NewTurnScheduler(order)
	s.turnOpen = false
	s.round.Status = db.RoundPlaying
	s.phase = PhasePlaying
	s.log.Info(fmt.Sprintf("Table %d: dealt %d hands", s.tableID, len(order)))

	s.notifier.Notify(s.tableID, "🃏 Cards dealt!")
	s.pushState()
	s.nextTurn()
}

func (s *Session) canAct(participantID string) bool {
	if s.departed.Contains(participantID) {
		return false
	}
	hand, ok := s.hands[participantID]
	return ok && !hand.Stood && !hand.Busted
}

func (s *Session) isActor(participantID string) bool {
	return s.phase == PhasePlaying && s.turnOpen && s.turns.IsCurrent(participantID)
}

// nextTurn announces the next participant able to act, or resolves the round.
func (s *Session) nextTurn() {
	s.cancelPending()
	actor, ok := s.turns.Seek(s.canAct)
	if !ok {
		s.turnOpen = false
		s.resolveHand()
		return
	}
	s.turnOpen = true
	s.notifier.Notify(s.tableID, fmt.Sprintf("⏳ %s's turn! (%d seconds)",
		s.name(actor), int(s.timings.TurnDeadline.Seconds())))
	s.pushState()
	s.armTurnDeadline(actor)
}

func (s *Session) armTurnDeadline(participantID string) {
	s.schedule(s.timings.TurnDeadline, func() {
		if !s.isActor(participantID) {
			return
		}
		s.log.Info(fmt.Sprintf("Table %d: turn deadline expired for %s", s.tableID, participantID))
		s.notifier.Send(participantID, notice("⏰ Time is up! Auto STAND."))
		if err := s.stand(participantID); err != nil {
			s.retry("auto stand", err, func() { s.armTurnDeadline(participantID) })
		}
	})
}

// passTurn closes the current turn and moves to the next actor after the advance delay.
func (s *Session) passTurn() {
	s.turns.Pass()
	s.turnOpen = false
	s.schedule(s.timings.AdvanceDelay, s.nextTurn)
}

// Hit draws one card for the participant holding the turn.
func (s *Session) Hit(participantID string) (HitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isActor(participantID) {
		return HitResult{}, ErrNotYourTurn
	}
	hand := s.hands[participantID]
	if hand.Busted {
		return HitResult{}, ErrAlreadyBusted
	}

	card, ok := s.deck.Draw()
	if !ok {
		s.deck = s.newDeck(s.rng)
		card, _ = s.deck.Draw()
	}
	updated := *hand
	updated.Cards = append(append(cards.Cards{}, hand.Cards...), card)
	updated.Value, updated.Busted = cards.Evaluate(updated.Cards)
	updated.Stood = updated.Busted
	if err := s.repo.UpdatePlayerHand(updated); err != nil {
		return HitResult{}, internal("failed to save hand", err)
	}
	*hand = updated
	s.log.Info(fmt.Sprintf("Table %d: %s hit %s, value %d", s.tableID, participantID, card, updated.Value))

	s.pushState()
	if updated.Busted {
		s.notifier.Notify(s.tableID, fmt.Sprintf("💥 %s busted with %d!", s.name(participantID), updated.Value))
		s.passTurn()
	} else {
		s.armTurnDeadline(participantID)
	}
	return HitResult{Card: card, Value: updated.Value, Busted: updated.Busted}, nil
}

// Stand ends the participant's turn, banking the current total.
func (s *Session) Stand(participantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stand(participantID)
}

func (s *Session) stand(participantID string) error {
	if !s.isActor(participantID) {
		return ErrNotYourTurn
	}
	hand := s.hands[participantID]
	updated := *hand
	updated.Stood = true
	if err := s.repo.UpdatePlayerHand(updated); err != nil {
		return internal("failed to save hand", err)
	}
	*hand = updated
	s.log.Info(fmt.Sprintf("Table %d: %s stood on %d", s.tableID, participantID, updated.Value))

	s.notifier.Notify(s.tableID, fmt.Sprintf("✋ %s stands.", s.name(participantID)))
	s.passTurn()
	return nil
}

// forfeit forces the hand busted and stood. It reports whether the participant held the turn.
func (s *Session) forfeit(participantID string) (bool, error) {
	hand, ok := s.hands[participantID]
	if !ok {
		return false, nil
	}
	wasActor := s.isActor(participantID)
	updated := *hand
	updated.Stood, updated.Busted = true, true
	if err := s.repo.UpdatePlayerHand(updated); err != nil {
		return false, internal("failed to forfeit hand", err)
	}
	*hand = updated
	return wasActor, nil
}

// Disconnect forfeits the hand of a participant who drops while holding the turn.
// Dropping at any other time, or a repeated signal, changes nothing.
func (s *Session) Disconnect(participantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isActor(participantID) {
		return
	}
	s.cancelPending()
	if _, err := s.forfeit(participantID); err != nil {
		s.log.Error(fmt.Sprintf("Table %d: cannot forfeit %s", s.tableID, participantID), err)
		s.armTurnDeadline(participantID)
		return
	}
	s.log.Info(fmt.Sprintf("Table %d: %s disconnected on their turn", s.tableID, participantID))
	s.turns.Pass()
	s.turnOpen = false
	s.notifier.Notify(s.tableID, fmt.Sprintf("🔌 %s disconnected and lost the hand.", s.name(participantID)))
	s.nextTurn()
}

// resolveHand settles the round once nobody can act.
func (s *Session) resolveHand() {
	s.phase = PhaseResolving
	s.cancelPending()
	seats, err := s.activeSeats()
	if err != nil {
		s.retry("resolve", err, s.resolveHand)
		return
	}
	contenders := make([]Contender, 0, len(seats))
	for _, seat := range seats {
		c := Contender{SeatID: seat.ID, ParticipantID: seat.ParticipantID}
		if hand, ok := s.hands[seat.ParticipantID]; ok {
			c.Value, c.Busted = hand.Value, hand.Busted
		}
		contenders = append(contenders, c)
	}
	payout := ResolvePayout(s.round.Pot, contenders)
	if err := s.repo.SettleRound(s.round.ID, s.tableID, payout.Credits, payout.Carry); err != nil {
		s.retry("settle", err, s.resolveHand)
		return
	}
	s.round.Status = db.RoundDone
	s.log.Info(fmt.Sprintf("Table %d: round %d settled, %d winner(s), share %d, carry %d, remainder %d",
		s.tableID, s.round.ID, len(payout.Winners), payout.Share, payout.Carry, payout.Remainder))

	var accumulated int64
	if table, err := s.repo.GetTable(s.tableID); err == nil {
		accumulated = table.AccumulatedPot
	}
	result := HandResult{Pot: s.round.Pot, Share: payout.Share, AccumulatedPot: accumulated, PlayerHands: []RevealedHand{}}
	for _, c := range contenders {
		revealed := RevealedHand{
			ParticipantID: c.ParticipantID,
			Name:          s.name(c.ParticipantID),
			Cards:         cards.Cards{},
			Value:         c.Value,
			Busted:        c.Busted,
			Winner:        payout.IsWinner(c.SeatID),
		}
		if hand, ok := s.hands[c.ParticipantID]; ok {
			revealed.Cards = hand.Cards
		}
		result.PlayerHands = append(result.PlayerHands, revealed)
	}
	s.notifier.Broadcast(s.tableID, Event{Type: EventHandResult, Message: resultMessage(payout, accumulated, s.name), Data: result})

	for _, seat := range seats {
		current, err := s.repo.GetSeat(s.tableID, seat.ParticipantID)
		if err != nil || current.Chips > 0 {
			continue
		}
		if err := s.repo.DeactivateSeat(current.ID); err != nil {
			s.log.Error(fmt.Sprintf("Table %d: cannot remove broke seat %s", s.tableID, seat.ParticipantID), err)
			continue
		}
		s.log.Info(fmt.Sprintf("Table %d: %s removed with zero chips", s.tableID, seat.ParticipantID))
		s.notifier.Send(seat.ParticipantID, Event{Type: EventKicked, Message: "💸 You ran out of chips and were removed from the table!"})
		s.handOverCreator(seat.ParticipantID)
	}
	s.schedule(s.timings.ResultDelay, s.askContinue)
}

func resultMessage(payout Payout, accumulated int64, name func(string) string) string {
	if payout.AllBusted() {
		return fmt.Sprintf("💥 Everyone busted! The pot carries over, now %d chips", accumulated)
	}
	if len(payout.Winners) == 1 {
		return fmt.Sprintf("🏆 %s wins! +%d chips", name(payout.Winners[0].ParticipantID), payout.Share)
	}
	names := make([]string, 0, len(payout.Winners))
	for _, w := range payout.Winners {
		names = append(names, name(w.ParticipantID))
	}
	return fmt.Sprintf("🤝 Tie! %s (+%d chips)", strings.Join(names, " & "), payout.Share)
}

// handOverCreator passes creator status to the first active seat when the creator goes.
func (s *Session) handOverCreator(leaverID string) string {
	return handOverCreator(s.repo, s.notifier, s.log, s.tableID, leaverID)
}

func (s *Session) askContinue() {
	seats, err := s.activeSeats()
	if err != nil {
		s.retry("continue vote", err, s.askContinue)
		return
	}
	if len(seats) < 2 {
		s.teardown()
		return
	}
	s.phase = PhaseContinueVote
	s.votes = map[string]Vote{}
	s.log.Info(fmt.Sprintf("Table %d: continue vote opened", s.tableID))
	s.notifier.Broadcast(s.tableID, Event{
		Type: EventAskContinue,
		Data: AskContinue{TimeoutSeconds: int(s.timings.VoteDeadline.Seconds())},
	})
	s.pushState()
	s.schedule(s.timings.VoteDeadline, s.voteDeadlineExpired)
}

func (s *Session) voteDeadlineExpired() {
	seats, err := s.activeSeats()
	if err != nil {
		s.retry("vote deadline", err, s.voteDeadlineExpired)
		return
	}
	for _, seat := range seats {
		if _, ok := s.votes[seat.ParticipantID]; !ok {
			s.votes[seat.ParticipantID] = VoteContinue
		}
	}
	s.resolveContinue()
}

// Vote records a participant's continue-or-leave choice.
func (s *Session) Vote(participantID string, vote Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if vote != VoteContinue && vote != VoteLeave {
		return ErrInvalidVote
	}
	if s.phase != PhaseContinueVote {
		return ErrNoVote
	}
	if _, err := s.activeSeat(participantID); err != nil {
		return err
	}
	if _, ok := s.votes[participantID]; ok {
		return ErrAlreadyVoted
	}
	s.votes[participantID] = vote
	s.log.Info(fmt.Sprintf("Table %d: %s voted %s", s.tableID, participantID, vote))
	s.resolveContinue()
	return nil
}

func (s *Session) resolveContinue() {
	seats, err := s.activeSeats()
	if err != nil {
		s.log.Error(fmt.Sprintf("Table %d: cannot check votes", s.tableID), err)
		return
	}
	for _, seat := range seats {
		if _, ok := s.votes[seat.ParticipantID]; !ok {
			return
		}
	}
	s.cancelPending()
	for _, seat := range seats {
		if s.votes[seat.ParticipantID] != VoteLeave {
			continue
		}
		if err := s.removeSeat(seat); err != nil {
			s.log.Error(fmt.Sprintf("Table %d: cannot remove leaver %s", s.tableID, seat.ParticipantID), err)
		}
	}
	s.votes = nil

	remaining, err := s.activeSeats()
	if err != nil {
		s.retry("continue", err, s.askContinue)
		return
	}
	if len(remaining) < 2 {
		s.teardown()
		return
	}
	if err := s.startBettingPhase(); err != nil {
		s.retry("next round", err, s.askContinue)
	}
}

// removeSeat refunds and deactivates a seat and tells the table.
func (s *Session) removeSeat(seat db.Seat) error {
	refunded, err := s.repo.LeaveSeat(seat.ID)
	if err != nil {
		return internal("failed to leave seat", err)
	}
	if s.departed != nil {
		s.departed.Insert(seat.ParticipantID)
	}
	name := s.name(seat.ParticipantID)
	s.log.Info(fmt.Sprintf("Table %d: %s left with %d chips", s.tableID, seat.ParticipantID, refunded))
	newCreator := s.handOverCreator(seat.ParticipantID)
	s.notifier.Send(seat.ParticipantID, Event{Type: EventLeftTable})
	s.notifier.Broadcast(s.tableID, Event{
		Type:    EventPlayerLeft,
		Message: fmt.Sprintf("👋 %s left.", name),
		Data:    PlayerLeft{ParticipantID: seat.ParticipantID, Name: name, NewCreator: newCreator},
	}, seat.ParticipantID)
	return nil
}

// leave removes a participant from a live game. Caller holds mu.
func (s *Session) leave(seat db.Seat) error {
	if s.phase == PhaseTeardown {
		return ErrNoSession
	}
	if err := s.removeSeat(seat); err != nil {
		return err
	}
	remaining, err := s.activeSeats()
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		s.teardown()
		return nil
	}

	switch s.phase {
	case PhaseBetting:
		delete(s.bets, seat.ParticipantID)
		// Bets are not collected yet; a lone seat never plays an uncontested round.
		if len(remaining) < 2 {
			s.teardown()
			return nil
		}
		s.pushState()
		s.closeBettingIfComplete()
	case PhasePlaying:
		wasActor, err := s.forfeit(seat.ParticipantID)
		if err != nil {
			return err
		}
		s.pushState()
		if wasActor {
			s.turns.Pass()
			s.turnOpen = false
			s.nextTurn()
		}
	case PhaseContinueVote:
		delete(s.votes, seat.ParticipantID)
		s.pushState()
		s.resolveContinue()
	default:
		s.pushState()
	}
	return nil
}

// teardown refunds every seat, notifies the table and deletes it. Caller holds mu.
func (s *Session) teardown() {
	if s.phase == PhaseTeardown {
		return
	}
	seats, err := s.activeSeats()
	if err != nil {
		s.retry("teardown", err, s.teardown)
		return
	}
	if err := s.repo.EndTable(s.tableID); err != nil {
		s.retry("teardown", err, s.teardown)
		return
	}
	s.cancelPending()
	s.phase = PhaseTeardown
	s.log.Info(fmt.Sprintf("Table %d: game ended", s.tableID))
	recipients := make([]string, 0, len(seats))
	for _, seat := range seats {
		recipients = append(recipients, seat.ParticipantID)
	}
	s.notifier.SendAll(recipients, Event{Type: EventGameEnded, Message: "🏁 Game over!"})
	if s.onEnd != nil {
		s.onEnd(s.tableID)
	}
}
