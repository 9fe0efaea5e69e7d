package cards

import "math/rand"

type Deck struct {
	cards []Card
}

// NewDeck returns a full 52 card deck shuffled with rng.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{cards: make([]Card, 0, len(Suits)*len(Ranks))}
	for _, s := range Suits {
		for _, r := range Ranks {
			d.cards = append(d.cards, Card{Rank: r, Suit: s})
		}
	}
	rng.Shuffle(len(d.cards), func(i, j int) { d.cards[i], d.cards[j] = d.cards[j], d.cards[i] })
	return d
}

// NewStackedDeck deals the given cards in order. Used for scripted rounds.
func NewStackedDeck(cs ...Card) *Deck {
	return &Deck{cards: append([]Card{}, cs...)}
}

func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, true
}

func (d *Deck) Remaining() int {
	return len(d.cards)
}
