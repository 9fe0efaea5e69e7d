package game

import "github.com/anchal00/blackjack/internal/cards"

type EventType string

const (
	EventStateUpdate EventType = "STATE_UPDATE"
	EventNotify      EventType = "NOTIFY"
	EventHandResult  EventType = "HAND_RESULT"
	EventAskContinue EventType = "ASK_CONTINUE"
	EventKicked      EventType = "KICKED"
	EventLeftTable   EventType = "LEFT_TABLE"
	EventPlayerLeft  EventType = "PLAYER_LEFT"
	EventGameEnded   EventType = "GAME_ENDED"
	EventConnected   EventType = "CONNECTED"
	EventError       EventType = "ERROR"
)

type Event struct {
	Type    EventType `json:"type"`
	Message string    `json:"message,omitempty"`
	Data    any       `json:"data,omitempty"`
}

func notice(msg string) Event {
	return Event{Type: EventNotify, Message: msg}
}

type OpponentView struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	Chips         int64  `json:"chips"`
	CardCount     int    `json:"cardCount"`
	Stood         bool   `json:"stood"`
}

// Snapshot is the per-participant view pushed on every state change.
type Snapshot struct {
	TableID         int64          `json:"tableId"`
	TableName       string         `json:"tableName"`
	TableStatus     string         `json:"tableStatus"`
	Phase           string         `json:"phase,omitempty"`
	IsCreator       bool           `json:"isCreator"`
	MyChips         int64          `json:"myChips"`
	MyCards         cards.Cards    `json:"myCards"`
	MyValue         int            `json:"myValue"`
	MyBusted        bool           `json:"myBusted"`
	MyStood         bool           `json:"myStood"`
	Pot             int64          `json:"pot"`
	AccumulatedPot  int64          `json:"accumulatedPot"`
	HandStatus      *string        `json:"handStatus"`
	Others          []OpponentView `json:"others"`
	IsMyTurn        bool           `json:"isMyTurn"`
	CurrentTurnName *string        `json:"currentTurnName"`
	NeedsBet        bool           `json:"needsBet"`
}

type RevealedHand struct {
	ParticipantID string      `json:"participantId"`
	Name          string      `json:"name"`
	Cards         cards.Cards `json:"cards"`
	Value         int         `json:"value"`
	Busted        bool        `json:"busted"`
	Winner        bool        `json:"winner"`
}

type HandResult struct {
	Pot            int64          `json:"pot"`
	Share          int64          `json:"share"`
	AccumulatedPot int64          `json:"accumulatedPot"`
	PlayerHands    []RevealedHand `json:"playerHands"`
}

type AskContinue struct {
	TimeoutSeconds int `json:"timeoutSeconds"`
}

type PlayerLeft struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	NewCreator    string `json:"newCreator,omitempty"`
}

type HitResult struct {
	Card   cards.Card `json:"card"`
	Value  int        `json:"value"`
	Busted bool       `json:"busted"`
}
