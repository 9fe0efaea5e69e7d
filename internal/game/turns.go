package game

// TurnScheduler walks a turn order fixed at deal time. The index only moves forward.
type TurnScheduler struct {
	order []string
	index int
}

func NewTurnScheduler(order []string) *TurnScheduler {
	return &TurnScheduler{order: append([]string{}, order...)}
}

func (t *TurnScheduler) Order() []string {
	return append([]string{}, t.order...)
}

func (t *TurnScheduler) Current() (string, bool) {
	if t.index >= len(t.order) {
		return "", false
	}
	return t.order[t.index], true
}

func (t *TurnScheduler) IsCurrent(participantID string) bool {
	current, ok := t.Current()
	return ok && current == participantID
}

// Pass moves past the current actor.
func (t *TurnScheduler) Pass() {
	if t.index < len(t.order) {
		t.index++
	}
}

// Seek skips every participant that can no longer act and returns the next actor.
// It reports false once the order is exhausted.
func (t *TurnScheduler) Seek(canAct func(participantID string) bool) (string, bool) {
	for t.index < len(t.order) {
		if canAct(t.order[t.index]) {
			return t.order[t.index], true
		}
		t.index++
	}
	return "", false
}

func (t *TurnScheduler) Exhausted() bool {
	return t.index >= len(t.order)
}
