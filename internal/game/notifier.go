package game

import (
	"errors"
	"fmt"

	"github.com/anchal00/blackjack/internal/cards"
	"github.com/anchal00/blackjack/internal/db"
	"github.com/anchal00/blackjack/internal/logger"
	"github.com/hashicorp/go-set/v2"
)

// Sender delivers an event to a connected participant. Delivery is best effort:
// events for participants without a live connection are dropped.
type Sender interface {
	SendToParticipant(participantID string, event Event)
}

// RoundView is the runtime part of a snapshot that storage does not hold.
type RoundView struct {
	Phase       Phase
	CurrentTurn string
	Bets        map[string]int64
}

// Notifier fans events and snapshots out to every seat of a table.
type Notifier struct {
	repo   db.Repository
	sender Sender
	log    logger.Logger
}

func NewNotifier(repo db.Repository, sender Sender, log logger.Logger) *Notifier {
	return &Notifier{repo: repo, sender: sender, log: log}
}

func (n *Notifier) Send(participantID string, event Event) {
	n.sender.SendToParticipant(participantID, event)
}

func (n *Notifier) SendAll(participantIDs []string, event Event) {
	for _, id := range participantIDs {
		n.sender.SendToParticipant(id, event)
	}
}

// Broadcast sends event to every active seat of the table except the excluded participants.
func (n *Notifier) Broadcast(tableID int64, event Event, exclude ...string) {
	seats, err := n.repo.ActiveSeats(tableID)
	if err != nil {
		n.log.Error(fmt.Sprintf("Failed to broadcast %s to table %d", event.Type, tableID), err)
		return
	}
	skip := set.From(exclude)
	for _, seat := range seats {
		if skip.Contains(seat.ParticipantID) {
			continue
		}
		n.sender.SendToParticipant(seat.ParticipantID, event)
	}
}

func (n *Notifier) Notify(tableID int64, msg string, exclude ...string) {
	n.Broadcast(tableID, notice(msg), exclude...)
}

// PushState sends every active seat its own snapshot of the table.
func (n *Notifier) PushState(tableID int64, view RoundView) {
	snapshots, err := n.Snapshots(tableID, view)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			n.log.Error(fmt.Sprintf("Failed to build snapshots for table %d", tableID), err)
		}
		return
	}
	for participantID, snap := range snapshots {
		n.sender.SendToParticipant(participantID, Event{Type: EventStateUpdate, Data: snap})
	}
}

// Snapshots builds the view of the table for each active seat, keyed by participant.
func (n *Notifier) Snapshots(tableID int64, view RoundView) (map[string]Snapshot, error) {
	table, err := n.repo.GetTable(tableID)
	if err != nil {
		return nil, err
	}
	seats, err := n.repo.ActiveSeats(tableID)
	if err != nil {
		return nil, err
	}
	round, err := n.repo.CurrentRound(tableID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}
	hands := map[int64]db.PlayerHand{}
	if round != nil {
		roundHands, err := n.repo.RoundHands(round.ID)
		if err != nil {
			return nil, err
		}
		for _, h := range roundHands {
			hands[h.SeatID] = h
		}
	}
	names := make(map[string]string, len(seats))
	for _, seat := range seats {
		names[seat.ParticipantID] = n.repo.DisplayName(seat.ParticipantID)
	}

	var currentTurnName *string
	if len(view.CurrentTurn) != 0 {
		name, ok := names[view.CurrentTurn]
		if !ok {
			name = n.repo.DisplayName(view.CurrentTurn)
		}
		currentTurnName = &name
	}

	snapshots := make(map[string]Snapshot, len(seats))
	for _, seat := range seats {
		snap := Snapshot{
			TableID:         table.ID,
			TableName:       table.Name,
			TableStatus:     string(table.Status),
			Phase:           string(view.Phase),
			IsCreator:       table.CreatorID == seat.ParticipantID,
			MyChips:         seat.Chips,
			MyCards:         cards.Cards{},
			AccumulatedPot:  table.AccumulatedPot,
			Others:          []OpponentView{},
			IsMyTurn:        len(view.CurrentTurn) != 0 && view.CurrentTurn == seat.ParticipantID,
			CurrentTurnName: currentTurnName,
		}
		if round != nil {
			status := string(round.Status)
			snap.HandStatus = &status
			snap.Pot = round.Pot
			if round.Status == db.RoundBetting && view.Bets != nil {
				_, placed := view.Bets[seat.ParticipantID]
				snap.NeedsBet = !placed
			}
		}
		if h, ok := hands[seat.ID]; ok {
			snap.MyCards = h.Cards
			snap.MyValue = h.Value
			snap.MyBusted = h.Busted
			snap.MyStood = h.Stood
		}
		for _, other := range seats {
			if other.ID == seat.ID {
				continue
			}
			op := OpponentView{
				ParticipantID: other.ParticipantID,
				Name:          names[other.ParticipantID],
				Chips:         other.Chips,
			}
			if h, ok := hands[other.ID]; ok {
				op.CardCount = len(h.Cards)
				op.Stood = h.Stood
			}
			snap.Others = append(snap.Others, op)
		}
		snapshots[seat.ParticipantID] = snap
	}
	return snapshots, nil
}
