package workspace

import "time"

// CardUpdate is a progress note left on a card. A ping names the person it
// is meant for.
type CardUpdate struct {
	ID         string    `json:"id"`
	CardID     string    `json:"cardId"`
	Author     string    `json:"author"`
	Content    string    `json:"content"`
	IsPing     bool      `json:"isPing"`
	PingedUser string    `json:"pingedUser,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AddUpdate appends a note to a card's log. ID, CardID and CreatedAt are
// filled in by the store.
func (s *CardStore) AddUpdate(cardID string, u CardUpdate) (CardUpdate, bool) {
	if !s.Has(cardID) {
		return CardUpdate{}, false
	}
	u.ID = s.newID()
	u.CardID = cardID
	u.CreatedAt = s.now()
	if !u.IsPing {
		u.PingedUser = ""
	}
	s.updates[cardID] = append(s.updates[cardID], u)
	return u, true
}

// Updates returns the log of a card, newest first.
func (s *CardStore) Updates(cardID string) ([]CardUpdate, bool) {
	if !s.Has(cardID) {
		return nil, false
	}
	log := s.updates[cardID]
	out := make([]CardUpdate, len(log))
	for i, u := range log {
		out[len(log)-1-i] = u
	}
	return out, true
}
