package cards

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

var Suits = []string{"♠", "♥", "♦", "♣"}
var Ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

func (c Card) String() string {
	return c.Rank + c.Suit
}

// Cards is an ordered hand. It is persisted as a JSON array of {rank, suit} objects.
type Cards []Card

func (cs Cards) Value() (driver.Value, error) {
	if cs == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]Card(cs))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (cs *Cards) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*cs = Cards{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Cards", src)
	}
	parsed := []Card{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("malformed card list: %w", err)
	}
	*cs = parsed
	return nil
}
