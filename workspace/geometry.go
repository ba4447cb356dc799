package workspace

import "math"

const (
	// DefaultCardWidth is the rendered width of a card when the client has
	// not reported a measurement.
	DefaultCardWidth = 288.0

	baseCardHeight     = 200.0
	deadlineBannerSize = 32.0
	tagRowSize         = 28.0

	canvasMarginX = 400.0
	canvasMarginY = 300.0
	canvasFloor   = 2000.0

	// EdgeHitWidth is the width of the invisible band around an edge in
	// which the pointer targets that edge.
	EdgeHitWidth = 20.0
)

// BoundsProvider returns the current rendered bounds of a card.
type BoundsProvider interface {
	Bounds(cardID string) (Rect, bool)
}

// Segment is a straight line between two points.
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Midpoint returns the point halfway along the segment.
func (s Segment) Midpoint() Point {
	return Point{X: (s.From.X + s.To.X) / 2, Y: (s.From.Y + s.To.Y) / 2}
}

// OutgoingAnchor is the vertical centre of the right edge of r.
func OutgoingAnchor(r Rect) Point {
	return Point{X: r.X + r.Width, Y: r.Y + r.Height/2}
}

// IncomingAnchor is the vertical centre of the left edge of r.
func IncomingAnchor(r Rect) Point {
	return Point{X: r.X, Y: r.Y + r.Height/2}
}

// EstimateSize approximates the rendered size of a card from its content:
// a deadline banner and a tag row each make the card taller.
func EstimateSize(c Card) Size {
	h := baseCardHeight
	if _, ok := DerivedDeadline(c); ok {
		h += deadlineBannerSize
	}
	if len(DerivedTags(c)) > 0 {
		h += tagRowSize
	}
	return Size{Width: DefaultCardWidth, Height: h}
}

// CanvasExtent sizes the edge overlay so it covers every card position plus
// a fixed margin, and is never smaller than the floor.
func CanvasExtent(positions []Point) Size {
	ext := Size{Width: canvasFloor, Height: canvasFloor}
	for _, p := range positions {
		ext.Width = math.Max(ext.Width, p.X+canvasMarginX)
		ext.Height = math.Max(ext.Height, p.Y+canvasMarginY)
	}
	return ext
}

// DistanceToSegment returns the shortest distance from p to the segment.
func DistanceToSegment(p Point, s Segment) float64 {
	dx := s.To.X - s.From.X
	dy := s.To.Y - s.From.Y
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return math.Hypot(p.X-s.From.X, p.Y-s.From.Y)
	}
	t := ((p.X-s.From.X)*dx + (p.Y-s.From.Y)*dy) / lengthSq
	t = math.Max(0, math.Min(1, t))
	nearest := Point{X: s.From.X + t*dx, Y: s.From.Y + t*dy}
	return math.Hypot(p.X-nearest.X, p.Y-nearest.Y)
}

// EdgeSegment computes the drawn line of an edge from live bounds.
func EdgeSegment(bounds BoundsProvider, c Connection) (Segment, bool) {
	from, ok := bounds.Bounds(c.FromID)
	if !ok {
		return Segment{}, false
	}
	to, ok := bounds.Bounds(c.ToID)
	if !ok {
		return Segment{}, false
	}
	return Segment{From: OutgoingAnchor(from), To: IncomingAnchor(to)}, true
}

// HitTest returns the edge whose hit band contains p. When bands overlap
// the closest edge wins, and among equally close edges the one drawn last.
func HitTest(bounds BoundsProvider, edges []Connection, p Point) (Connection, bool) {
	var (
		best     Connection
		bestDist = math.Inf(1)
		found    bool
	)
	for _, e := range edges {
		seg, ok := EdgeSegment(bounds, e)
		if !ok {
			continue
		}
		d := DistanceToSegment(p, seg)
		if d <= EdgeHitWidth/2 && d <= bestDist {
			best, bestDist, found = e, d, true
		}
	}
	return best, found
}
