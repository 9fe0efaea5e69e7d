package cards

import "strconv"

const Blackjack = 21

func rankPoints(rank string) (points int, ace bool) {
	switch rank {
	case "J", "Q", "K":
		return 10, false
	case "A":
		return 11, true
	}
	n, err := strconv.Atoi(rank)
	if err != nil {
		return 0, false
	}
	return n, false
}

// Evaluate returns the best value of a hand, counting aces as 11 and
// dropping them to 1 one at a time only while the total is over 21.
func Evaluate(hand []Card) (value int, busted bool) {
	softAces := 0
	for _, c := range hand {
		points, ace := rankPoints(c.Rank)
		value += points
		if ace {
			softAces++
		}
	}
	for value > Blackjack && softAces > 0 {
		value -= 10
		softAces--
	}
	return value, value > Blackjack
}
