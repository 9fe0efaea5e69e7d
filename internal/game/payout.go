package game

// Contender is one settled hand entering payout resolution.
type Contender struct {
	SeatID        int64
	ParticipantID string
	Value         int
	Busted        bool
}

type Payout struct {
	Winners []Contender
	Share   int64
	// Credits maps seat id to the chips it receives.
	Credits map[int64]int64
	// Carry is added to the table's accumulated pot.
	Carry int64
	// Remainder is the floor division leftover. It goes to nobody.
	Remainder int64
}

func (p Payout) AllBusted() bool {
	return len(p.Winners) == 0
}

func (p Payout) IsWinner(seatID int64) bool {
	_, ok := p.Credits[seatID]
	return ok
}

// ResolvePayout splits pot evenly among the non-busted hands tied at the best value.
// When every hand busted the whole pot is carried instead.
func ResolvePayout(pot int64, hands []Contender) Payout {
	best := -1
	for _, h := range hands {
		if !h.Busted && h.Value > best {
			best = h.Value
		}
	}
	if best < 0 {
		return Payout{Credits: map[int64]int64{}, Carry: pot}
	}

	payout := Payout{Credits: map[int64]int64{}}
	for _, h := range hands {
		if !h.Busted && h.Value == best {
			payout.Winners = append(payout.Winners, h)
		}
	}
	n := int64(len(payout.Winners))
	payout.Share = pot / n
	payout.Remainder = pot % n
	for _, w := range payout.Winners {
		payout.Credits[w.SeatID] = payout.Share
	}
	return payout
}
