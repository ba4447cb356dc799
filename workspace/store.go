package workspace

import (
	"time"

	"github.com/google/uuid"
)

// CardStore is the ordered, in-memory collection of cards of one session.
//
// Operations on unknown ids are no-ops and report false. Removing a card
// also removes every connection that references it.
type CardStore struct {
	order   []string
	cards   map[string]*Card
	updates map[string][]CardUpdate
	graph   *ConnectionGraph

	newID func() string
	now   func() time.Time
}

// NewCardStore returns an empty store.
func NewCardStore() *CardStore {
	return &CardStore{
		cards:   make(map[string]*Card),
		updates: make(map[string][]CardUpdate),
		newID:   newCardID,
		now:     time.Now,
	}
}

// newCardID returns a UUIDv7: a millisecond timestamp followed by random
// bits, so ids stay distinct even for cards created in the same instant.
func newCardID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Create adds a card and returns a copy of it.
func (s *CardStore) Create(category Category, title, content string, position Point, generated bool) Card {
	id := s.newID()
	for s.Has(id) {
		id = s.newID()
	}

	card := &Card{
		ID:          id,
		Category:    category,
		Title:       title,
		Content:     content,
		Position:    position,
		IsGenerated: generated,
		Status:      StatusDraft,
		CreatedAt:   s.now(),
	}
	s.cards[id] = card
	s.order = append(s.order, id)
	return *card
}

// Has reports whether a card with the id exists.
func (s *CardStore) Has(id string) bool {
	_, ok := s.cards[id]
	return ok
}

// Get returns a copy of the card.
func (s *CardStore) Get(id string) (Card, bool) {
	card, ok := s.cards[id]
	if !ok {
		return Card{}, false
	}
	return *card, true
}

// List returns copies of all cards in creation order.
func (s *CardStore) List() []Card {
	out := make([]Card, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.cards[id])
	}
	return out
}

// Len returns the number of cards.
func (s *CardStore) Len() int {
	return len(s.order)
}

// UpdatePosition moves a card. The canvas has no upper bound, so the
// position is stored as given.
func (s *CardStore) UpdatePosition(id string, position Point) bool {
	card, ok := s.cards[id]
	if !ok {
		return false
	}
	card.Position = position
	return true
}

// PositionUpdate moves one card as part of a batch.
type PositionUpdate struct {
	ID       string `json:"id"`
	Position Point  `json:"position"`
}

// UpdatePositions applies a batch of moves and returns the moved cards in
// batch order. Unknown ids are skipped.
func (s *CardStore) UpdatePositions(moves []PositionUpdate) []Card {
	out := make([]Card, 0, len(moves))
	for _, m := range moves {
		card, ok := s.cards[m.ID]
		if !ok {
			continue
		}
		card.Position = m.Position
		out = append(out, *card)
	}
	return out
}

// UpdateContent replaces the title and content of a card. Category,
// position and the generated flag are left untouched.
func (s *CardStore) UpdateContent(id, title, content string) bool {
	card, ok := s.cards[id]
	if !ok {
		return false
	}
	card.Title = title
	card.Content = content
	return true
}

// SetDeadline sets the explicit deadline override, or clears it when
// deadline is nil.
func (s *CardStore) SetDeadline(id string, deadline *string) bool {
	card, ok := s.cards[id]
	if !ok {
		return false
	}
	if deadline == nil {
		card.Deadline = nil
		return true
	}
	d := *deadline
	card.Deadline = &d
	return true
}

// SetStatus moves a card to another lifecycle status.
func (s *CardStore) SetStatus(id string, status Status) bool {
	card, ok := s.cards[id]
	if !ok {
		return false
	}
	card.Status = status
	return true
}

// SetAssignee records who owns a card. An empty name unassigns it.
func (s *CardStore) SetAssignee(id, assignee string) bool {
	card, ok := s.cards[id]
	if !ok {
		return false
	}
	card.AssignedTo = assignee
	return true
}

// Remove deletes a card together with all of its connections.
func (s *CardStore) Remove(id string) bool {
	if _, ok := s.cards[id]; !ok {
		return false
	}
	delete(s.cards, id)
	delete(s.updates, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.graph != nil {
		s.graph.detach(id)
	}
	return true
}

// Clear removes every card and every connection.
func (s *CardStore) Clear() {
	s.order = nil
	s.cards = make(map[string]*Card)
	s.updates = make(map[string][]CardUpdate)
	if s.graph != nil {
		s.graph.clear()
	}
}
