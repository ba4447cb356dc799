package workspace

// Connection is a directed edge between two cards.
type Connection struct {
	FromID string `json:"fromId"`
	ToID   string `json:"toId"`
}

// ConnectionGraph holds the directed edges between the cards of a store.
//
// Both endpoints of every edge exist in the store, no edge is a self-loop
// and an ordered pair appears at most once. The reverse pair is a
// different edge.
type ConnectionGraph struct {
	cards *CardStore
	edges []Connection
}

// NewConnectionGraph returns an empty graph bound to cards. The store
// notifies the graph of removals so edges never dangle.
func NewConnectionGraph(cards *CardStore) *ConnectionGraph {
	g := &ConnectionGraph{cards: cards}
	cards.graph = g
	return g
}

// Connect adds the edge from -> to. It reports false and changes nothing
// when from == to, when either card is missing or when the edge exists.
func (g *ConnectionGraph) Connect(fromID, toID string) bool {
	if fromID == toID {
		return false
	}
	if !g.cards.Has(fromID) || !g.cards.Has(toID) {
		return false
	}
	if g.Has(fromID, toID) {
		return false
	}
	g.edges = append(g.edges, Connection{FromID: fromID, ToID: toID})
	return true
}

// Disconnect removes every edge matching the ordered pair and returns how
// many were removed.
func (g *ConnectionGraph) Disconnect(fromID, toID string) int {
	kept := g.edges[:0]
	removed := 0
	for _, e := range g.edges {
		if e.FromID == fromID && e.ToID == toID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept
	return removed
}

// Has reports whether the edge from -> to exists.
func (g *ConnectionGraph) Has(fromID, toID string) bool {
	for _, e := range g.edges {
		if e.FromID == fromID && e.ToID == toID {
			return true
		}
	}
	return false
}

// EdgesOf returns every edge that has id as its source or target.
func (g *ConnectionGraph) EdgesOf(id string) []Connection {
	var out []Connection
	for _, e := range g.edges {
		if e.FromID == id || e.ToID == id {
			out = append(out, e)
		}
	}
	return out
}

// Edges returns a copy of all edges in insertion order.
func (g *ConnectionGraph) Edges() []Connection {
	out := make([]Connection, len(g.edges))
	copy(out, g.edges)
	return out
}

// Len returns the number of edges.
func (g *ConnectionGraph) Len() int {
	return len(g.edges)
}

func (g *ConnectionGraph) detach(id string) {
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.FromID == id || e.ToID == id {
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept
}

func (g *ConnectionGraph) clear() {
	g.edges = nil
}
