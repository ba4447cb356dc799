package workspace

import "fmt"

// ViewMode selects what the workspace shows.
type ViewMode string

const (
	ViewTranscript ViewMode = "transcript"
	ViewCanvas     ViewMode = "canvas"
)

// ParseViewMode validates a view mode string.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case ViewTranscript, ViewCanvas:
		return ViewMode(s), nil
	}
	return "", fmt.Errorf("unknown view mode %q", s)
}

// CardView is a card together with everything derived for drawing it.
type CardView struct {
	Card
	Label           string   `json:"label"`
	Tags            []string `json:"tags"`
	DerivedDeadline string   `json:"derivedDeadline,omitempty"`
	Bounds          Rect     `json:"bounds"`
	Dragging        bool     `json:"dragging,omitempty"`
}

// EdgeView is a connection with its drawn geometry.
type EdgeView struct {
	Connection
	From    Point `json:"from"`
	To      Point `json:"to"`
	Mid     Point `json:"mid"`
	Hovered bool  `json:"hovered,omitempty"`
}

// Scene is everything needed to draw the workspace.
type Scene struct {
	Mode       ViewMode   `json:"mode"`
	State      string     `json:"state"`
	Transcript string     `json:"transcript,omitempty"`
	Canvas     Size       `json:"canvas"`
	Cards      []CardView `json:"cards"`
	Edges      []EdgeView `json:"edges"`
	RubberBand *Segment   `json:"rubberBand,omitempty"`
}

// Board groups the card store, connection graph, measured layout and
// interaction engine of one workspace.
type Board struct {
	cards  *CardStore
	graph  *ConnectionGraph
	layout *Layout
	engine *Engine
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	cards := NewCardStore()
	graph := NewConnectionGraph(cards)
	layout := NewLayout(cards)
	return &Board{
		cards:  cards,
		graph:  graph,
		layout: layout,
		engine: NewEngine(cards, graph, layout),
	}
}

func (b *Board) Cards() *CardStore       { return b.cards }
func (b *Board) Graph() *ConnectionGraph { return b.graph }
func (b *Board) Layout() *Layout         { return b.layout }
func (b *Board) Engine() *Engine         { return b.engine }

// RemoveCard deletes a card, its connections and its measurement.
func (b *Board) RemoveCard(id string) bool {
	if !b.cards.Remove(id) {
		return false
	}
	b.layout.Forget(id)
	return true
}

const (
	generatedColumnX = 20.0
	generatedStartY  = 140.0
	generatedStepY   = 280.0
)

// Populate replaces every card with generated cards stacked in one column.
// Existing connections and measurements are dropped.
func (b *Board) Populate(drafts []Draft) []Card {
	b.cards.Clear()
	b.layout.Reset()
	b.engine.reset()

	out := make([]Card, 0, len(drafts))
	y := generatedStartY
	for _, d := range drafts {
		out = append(out, b.cards.Create(d.Category, d.Title, d.Content, Point{X: generatedColumnX, Y: y}, true))
		y += generatedStepY
	}
	return out
}

// Render projects the board into a scene. It reads live geometry on every
// call and never mutates the board.
func (b *Board) Render(mode ViewMode, transcript string) Scene {
	scene := Scene{
		Mode:  mode,
		State: b.engine.State().String(),
		Cards: []CardView{},
		Edges: []EdgeView{},
	}
	if mode == ViewTranscript {
		scene.Transcript = transcript
		return scene
	}

	draggingID, _, _ := b.engine.Dragging()
	cards := b.cards.List()
	positions := make([]Point, 0, len(cards))
	for _, c := range cards {
		bounds, _ := b.engine.Bounds(c.ID)
		positions = append(positions, Point{X: bounds.X, Y: bounds.Y})

		view := CardView{
			Card:     c,
			Label:    c.Category.Label(),
			Tags:     DerivedTags(c),
			Bounds:   bounds,
			Dragging: c.ID == draggingID,
		}
		if d, ok := DerivedDeadline(c); ok {
			view.DerivedDeadline = d
		}
		scene.Cards = append(scene.Cards, view)
	}
	scene.Canvas = CanvasExtent(positions)

	hovered, hasHover := b.engine.Hovered()
	for _, e := range b.graph.Edges() {
		seg, ok := EdgeSegment(b.engine, e)
		if !ok {
			continue
		}
		scene.Edges = append(scene.Edges, EdgeView{
			Connection: e,
			From:       seg.From,
			To:         seg.To,
			Mid:        seg.Midpoint(),
			Hovered:    hasHover && hovered == e,
		})
	}

	if band, ok := b.engine.RubberBand(); ok {
		scene.RubberBand = &band
	}
	return scene
}
