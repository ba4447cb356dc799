package workspace

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardStore_CreateAssignsUniqueIDs(t *testing.T) {
	store := NewCardStore()

	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		c := store.Create(CategoryNote, "t", "c", Point{}, false)
		require.NotEmpty(t, c.ID)
		require.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
	assert.Equal(t, 500, store.Len())
}

func TestCardStore_CreateRetriesOnCollision(t *testing.T) {
	store := NewCardStore()
	ids := []string{"a", "a", "b"}
	store.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first := store.Create(CategoryNote, "one", "", Point{}, false)
	second := store.Create(CategoryNote, "two", "", Point{}, false)

	assert.Equal(t, "a", first.ID)
	assert.Equal(t, "b", second.ID)
}

func TestCardStore_UpdateContentKeepsOtherFields(t *testing.T) {
	store := NewCardStore()
	c := store.Create(CategoryTask, "old", "old content", Point{X: 5, Y: 6}, true)

	require.True(t, store.UpdateContent(c.ID, "new", "new content"))

	got, ok := store.Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "new content", got.Content)
	assert.Equal(t, CategoryTask, got.Category)
	assert.Equal(t, Point{X: 5, Y: 6}, got.Position)
	assert.True(t, got.IsGenerated)
}

func TestCardStore_UpdatePositionIsUnbounded(t *testing.T) {
	store := NewCardStore()
	c := store.Create(CategoryNote, "n", "", Point{}, false)

	require.True(t, store.UpdatePosition(c.ID, Point{X: 12000, Y: 9000}))
	got, _ := store.Get(c.ID)
	assert.Equal(t, Point{X: 12000, Y: 9000}, got.Position)
}

func TestCardStore_UnknownIDsAreNoOps(t *testing.T) {
	store := NewCardStore()
	store.Create(CategoryNote, "n", "", Point{}, false)

	assert.False(t, store.UpdatePosition("missing", Point{X: 1}))
	assert.False(t, store.UpdateContent("missing", "a", "b"))
	assert.False(t, store.SetDeadline("missing", nil))
	assert.False(t, store.SetStatus("missing", StatusActive))
	assert.False(t, store.SetAssignee("missing", "alice"))
	assert.False(t, store.Remove("missing"))
	assert.Equal(t, 1, store.Len())
}

func TestCardStore_StatusAndAssignee(t *testing.T) {
	store := NewCardStore()
	c := store.Create(CategoryTask, "t", "", Point{}, true)
	assert.Equal(t, StatusDraft, c.Status)

	require.True(t, store.SetStatus(c.ID, StatusCompleted))
	require.True(t, store.SetAssignee(c.ID, "alice"))
	got, _ := store.Get(c.ID)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, "alice", got.AssignedTo)

	require.True(t, store.SetAssignee(c.ID, ""))
	got, _ = store.Get(c.ID)
	assert.Empty(t, got.AssignedTo)
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus(" Archived ")
	assert.True(t, ok)
	assert.Equal(t, StatusArchived, st)

	_, ok = ParseStatus("done")
	assert.False(t, ok)
}

func TestCardStore_UpdatePositionsSkipsUnknown(t *testing.T) {
	store := NewCardStore()
	a := store.Create(CategoryNote, "a", "", Point{}, false)
	b := store.Create(CategoryNote, "b", "", Point{}, false)

	moved := store.UpdatePositions([]PositionUpdate{
		{ID: b.ID, Position: Point{X: 300, Y: 40}},
		{ID: "missing", Position: Point{X: 1, Y: 1}},
		{ID: a.ID, Position: Point{X: 10, Y: 900}},
	})

	require.Len(t, moved, 2)
	assert.Equal(t, b.ID, moved[0].ID)
	assert.Equal(t, Point{X: 300, Y: 40}, moved[0].Position)
	assert.Equal(t, a.ID, moved[1].ID)
	got, _ := store.Get(a.ID)
	assert.Equal(t, Point{X: 10, Y: 900}, got.Position)
	assert.Equal(t, 2, store.Len())
}

func TestCardStore_ListKeepsCreationOrder(t *testing.T) {
	store := NewCardStore()
	a := store.Create(CategoryNote, "a", "", Point{}, false)
	b := store.Create(CategoryNote, "b", "", Point{}, false)
	c := store.Create(CategoryNote, "c", "", Point{}, false)

	store.Remove(b.ID)

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, c.ID, list[1].ID)
}

func TestCardStore_SetDeadlineCopiesValue(t *testing.T) {
	store := NewCardStore()
	c := store.Create(CategoryTask, "t", "", Point{}, false)

	d := "Friday"
	require.True(t, store.SetDeadline(c.ID, &d))
	d = "changed"

	got, _ := store.Get(c.ID)
	require.NotNil(t, got.Deadline)
	assert.Equal(t, "Friday", *got.Deadline)

	require.True(t, store.SetDeadline(c.ID, nil))
	got, _ = store.Get(c.ID)
	assert.Nil(t, got.Deadline)
}

func TestCardStore_RemoveCascadesToConnections(t *testing.T) {
	store := NewCardStore()
	graph := NewConnectionGraph(store)
	a := store.Create(CategoryNote, "a", "", Point{}, false)
	b := store.Create(CategoryNote, "b", "", Point{}, false)
	c := store.Create(CategoryNote, "c", "", Point{}, false)

	require.True(t, graph.Connect(a.ID, b.ID))
	require.True(t, graph.Connect(b.ID, c.ID))
	require.True(t, graph.Connect(c.ID, a.ID))

	require.True(t, store.Remove(b.ID))

	assert.Equal(t, []Connection{{FromID: c.ID, ToID: a.ID}}, graph.Edges())
	assert.Empty(t, graph.EdgesOf(b.ID))
}

func TestCardStore_RandomCreateRemoveKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	store := NewCardStore()
	graph := NewConnectionGraph(store)

	var live []string
	for i := 0; i < 2000; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) < 2:
			c := store.Create(CategoryNote, "x", "", Point{}, false)
			live = append(live, c.ID)
		case op == 1:
			graph.Connect(live[rng.Intn(len(live))], live[rng.Intn(len(live))])
		default:
			idx := rng.Intn(len(live))
			require.True(t, store.Remove(live[idx]))
			live = append(live[:idx], live[idx+1:]...)
		}
	}

	ids := map[string]bool{}
	for _, c := range store.List() {
		require.False(t, ids[c.ID], "duplicate id")
		ids[c.ID] = true
	}
	assert.Len(t, ids, len(live))

	for _, e := range graph.Edges() {
		assert.True(t, ids[e.FromID], "edge source %s was removed", e.FromID)
		assert.True(t, ids[e.ToID], "edge target %s was removed", e.ToID)
		assert.NotEqual(t, e.FromID, e.ToID)
	}
}
