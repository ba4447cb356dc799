package workspace

// Layout answers "where is this card drawn and how large is it" from the
// stored position and the size the client last measured. Cards that were
// never measured fall back to EstimateSize.
type Layout struct {
	cards *CardStore
	sizes map[string]Size
}

// NewLayout returns a layout over cards with no measurements.
func NewLayout(cards *CardStore) *Layout {
	return &Layout{cards: cards, sizes: make(map[string]Size)}
}

// Measure records the rendered size of a card. Unknown cards and
// non-positive sizes are ignored.
func (l *Layout) Measure(cardID string, size Size) bool {
	if !l.cards.Has(cardID) || size.Width <= 0 || size.Height <= 0 {
		return false
	}
	l.sizes[cardID] = size
	return true
}

// Forget drops the measurement of a card.
func (l *Layout) Forget(cardID string) {
	delete(l.sizes, cardID)
}

// Reset drops every measurement.
func (l *Layout) Reset() {
	l.sizes = make(map[string]Size)
}

// Bounds implements BoundsProvider using stored positions.
func (l *Layout) Bounds(cardID string) (Rect, bool) {
	card, ok := l.cards.Get(cardID)
	if !ok {
		return Rect{}, false
	}
	size, measured := l.sizes[cardID]
	if !measured {
		size = EstimateSize(card)
	}
	return Rect{X: card.Position.X, Y: card.Position.Y, Width: size.Width, Height: size.Height}, true
}
