package workspace

import "fmt"

// State is the gesture state of the interaction engine.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateConnecting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateConnecting:
		return "connecting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// TargetKind names the element a pointer event was dispatched to.
type TargetKind string

const (
	TargetDragHandle    TargetKind = "drag-handle"
	TargetTextControl   TargetKind = "text-control"
	TargetConnectHandle TargetKind = "connect-handle"
	TargetCardBody      TargetKind = "card-body"
	TargetCanvas        TargetKind = "canvas"
	// TargetDocument is the document-level listener that sees every
	// pointer-up, including ones released outside any tracked element.
	TargetDocument TargetKind = "document"
)

// OnCard reports whether the kind belongs to a card element.
func (k TargetKind) OnCard() bool {
	switch k {
	case TargetDragHandle, TargetTextControl, TargetConnectHandle, TargetCardBody:
		return true
	}
	return false
}

// Target is the element under the pointer.
type Target struct {
	Kind   TargetKind `json:"kind"`
	CardID string     `json:"cardId,omitempty"`
}

// EventType is the kind of pointer input.
type EventType string

const (
	EventPointerDown EventType = "pointerdown"
	EventPointerMove EventType = "pointermove"
	EventPointerUp   EventType = "pointerup"
	EventClick       EventType = "click"
)

// Event is one discrete pointer input in canvas coordinates.
type Event struct {
	Type   EventType `json:"type"`
	Target Target    `json:"target"`
	Point  Point     `json:"point"`
}

// Move records a committed drag.
type Move struct {
	CardID string `json:"cardId"`
	From   Point  `json:"from"`
	To     Point  `json:"to"`
}

// Outcome reports what an event changed in the store or graph.
type Outcome struct {
	Moved        *Move       `json:"moved,omitempty"`
	Connected    *Connection `json:"connected,omitempty"`
	Disconnected *Connection `json:"disconnected,omitempty"`
	Aborted      bool        `json:"aborted,omitempty"`
}

// Changed reports whether the store or graph was mutated.
func (o Outcome) Changed() bool {
	return o.Moved != nil || o.Connected != nil || o.Disconnected != nil
}

type dragGesture struct {
	cardID        string
	startPointer  Point
	startPosition Point
	pointer       Point
}

func (d dragGesture) position() Point {
	return d.startPosition.Add(d.pointer.Sub(d.startPointer))
}

type connectGesture struct {
	fromID  string
	pointer Point
}

// Engine turns pointer events into store and graph mutations.
//
// It is a finite state machine: Idle, Dragging(card, start pointer, start
// position) and Connecting(source card). Every pointer-up returns it to
// Idle, so a gesture cannot stay active after the pointer is released.
type Engine struct {
	cards  *CardStore
	graph  *ConnectionGraph
	layout BoundsProvider

	state   State
	drag    dragGesture
	connect connectGesture
	hovered *Connection
}

// NewEngine returns an idle engine. layout supplies card bounds before any
// live drag offset is applied.
func NewEngine(cards *CardStore, graph *ConnectionGraph, layout BoundsProvider) *Engine {
	return &Engine{cards: cards, graph: graph, layout: layout}
}

// State returns the current gesture state.
func (e *Engine) State() State {
	return e.state
}

// Handle dispatches an event to the matching transition.
func (e *Engine) Handle(ev Event) Outcome {
	switch ev.Type {
	case EventPointerDown:
		return e.PointerDown(ev.Target, ev.Point)
	case EventPointerMove:
		e.PointerMove(ev.Point)
		return Outcome{}
	case EventPointerUp:
		return e.PointerUp(ev.Target, ev.Point)
	case EventClick:
		return e.Click(ev.Target, ev.Point)
	}
	return Outcome{}
}

// PointerDown starts a drag on a drag handle or a connection on a
// connection handle. Presses on text controls and the canvas start nothing.
// A press that arrives while a gesture is still open first resolves that
// gesture at the last known pointer position.
func (e *Engine) PointerDown(t Target, p Point) Outcome {
	var out Outcome
	if e.state != StateIdle {
		out = e.release(Target{Kind: TargetDocument}, e.lastPointer())
	}

	switch t.Kind {
	case TargetConnectHandle:
		if !e.cards.Has(t.CardID) {
			return out
		}
		e.state = StateConnecting
		e.connect = connectGesture{fromID: t.CardID, pointer: p}
		e.hovered = nil
	case TargetDragHandle:
		card, ok := e.cards.Get(t.CardID)
		if !ok {
			return out
		}
		e.state = StateDragging
		e.drag = dragGesture{
			cardID:        card.ID,
			startPointer:  p,
			startPosition: card.Position,
			pointer:       p,
		}
		e.hovered = nil
	}
	return out
}

// PointerMove updates the live drag offset or the rubber band, or, when
// idle, which edge the pointer is targeting. It never writes to the store.
func (e *Engine) PointerMove(p Point) {
	switch e.state {
	case StateDragging:
		e.drag.pointer = p
	case StateConnecting:
		e.connect.pointer = p
	default:
		e.hover(p)
	}
}

// PointerUp ends the current gesture.
func (e *Engine) PointerUp(t Target, p Point) Outcome {
	return e.release(t, p)
}

// Click removes the targeted edge when idle and aborts an open connection
// gesture. Only clicks on the canvas reach edges; cards are drawn above
// the edge overlay.
func (e *Engine) Click(t Target, p Point) Outcome {
	switch e.state {
	case StateConnecting:
		e.reset()
		return Outcome{Aborted: true}
	case StateDragging:
		return Outcome{}
	}
	if t.Kind != TargetCanvas {
		return Outcome{}
	}
	e.hover(p)
	if e.hovered == nil {
		return Outcome{}
	}
	edge := *e.hovered
	e.hovered = nil
	if e.graph.Disconnect(edge.FromID, edge.ToID) == 0 {
		return Outcome{}
	}
	return Outcome{Disconnected: &edge}
}

func (e *Engine) release(t Target, p Point) Outcome {
	switch e.state {
	case StateDragging:
		e.drag.pointer = p
		from := e.drag.startPosition
		to := e.drag.position()
		id := e.drag.cardID
		e.reset()
		if !e.cards.UpdatePosition(id, to) {
			return Outcome{}
		}
		return Outcome{Moved: &Move{CardID: id, From: from, To: to}}

	case StateConnecting:
		fromID := e.connect.fromID
		e.reset()
		if !t.Kind.OnCard() || t.CardID == "" || t.CardID == fromID {
			return Outcome{Aborted: true}
		}
		if !e.graph.Connect(fromID, t.CardID) {
			return Outcome{Aborted: true}
		}
		return Outcome{Connected: &Connection{FromID: fromID, ToID: t.CardID}}
	}
	return Outcome{}
}

func (e *Engine) reset() {
	e.state = StateIdle
	e.drag = dragGesture{}
	e.connect = connectGesture{}
}

func (e *Engine) lastPointer() Point {
	switch e.state {
	case StateDragging:
		return e.drag.pointer
	case StateConnecting:
		return e.connect.pointer
	}
	return Point{}
}

func (e *Engine) hover(p Point) {
	if edge, ok := HitTest(e, e.graph.Edges(), p); ok {
		e.hovered = &edge
		return
	}
	e.hovered = nil
}

// Hovered returns the edge the pointer is currently targeting.
func (e *Engine) Hovered() (Connection, bool) {
	if e.hovered == nil || !e.graph.Has(e.hovered.FromID, e.hovered.ToID) {
		return Connection{}, false
	}
	return *e.hovered, true
}

// Dragging returns the card being dragged and where it is drawn right now.
func (e *Engine) Dragging() (string, Point, bool) {
	if e.state != StateDragging {
		return "", Point{}, false
	}
	return e.drag.cardID, e.drag.position(), true
}

// RubberBand returns the transient line of an open connection gesture,
// from the source card's outgoing anchor to the pointer.
func (e *Engine) RubberBand() (Segment, bool) {
	if e.state != StateConnecting {
		return Segment{}, false
	}
	from, ok := e.Bounds(e.connect.fromID)
	if !ok {
		return Segment{}, false
	}
	return Segment{From: OutgoingAnchor(from), To: e.connect.pointer}, true
}

// Bounds implements BoundsProvider with the live drag offset applied, so
// anchors follow a card while it is being dragged.
func (e *Engine) Bounds(cardID string) (Rect, bool) {
	r, ok := e.layout.Bounds(cardID)
	if !ok {
		return Rect{}, false
	}
	if e.state == StateDragging && e.drag.cardID == cardID {
		pos := e.drag.position()
		r.X, r.Y = pos.X, pos.Y
	}
	return r, true
}
