package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanvasExtent(t *testing.T) {
	got := CanvasExtent([]Point{{X: 0, Y: 0}, {X: 3000, Y: 1800}})
	assert.Equal(t, Size{Width: 3400, Height: 2100}, got)

	assert.Equal(t, Size{Width: 2000, Height: 2000}, CanvasExtent(nil))
	assert.Equal(t, Size{Width: 2000, Height: 2000}, CanvasExtent([]Point{{X: 100, Y: 100}}))
}

func TestAnchors(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 288, Height: 240}
	assert.Equal(t, Point{X: 298, Y: 140}, OutgoingAnchor(r))
	assert.Equal(t, Point{X: 10, Y: 140}, IncomingAnchor(r))
}

func TestDistanceToSegment(t *testing.T) {
	s := Segment{From: Point{X: 0, Y: 0}, To: Point{X: 10, Y: 0}}
	assert.InDelta(t, 3.0, DistanceToSegment(Point{X: 5, Y: 3}, s), 1e-9)
	assert.InDelta(t, 5.0, DistanceToSegment(Point{X: 13, Y: 4}, s), 1e-9)
	assert.InDelta(t, 5.0, DistanceToSegment(Point{X: 3, Y: 4}, Segment{}), 1e-9)
}

func TestEstimateSizeGrowsWithDerivedRows(t *testing.T) {
	plain := EstimateSize(Card{Content: "plain"})
	withDeadline := EstimateSize(Card{Content: "Deadline: Friday."})
	withBoth := EstimateSize(Card{Content: "Deadline: Friday. #CHI"})

	assert.Equal(t, DefaultCardWidth, plain.Width)
	assert.Greater(t, withDeadline.Height, plain.Height)
	assert.Greater(t, withBoth.Height, withDeadline.Height)
}

func TestBoard_RenderCanvas(t *testing.T) {
	b := NewBoard()
	a := b.Cards().Create(CategoryTask, "Draft rebuttal", "Deadline: March 3rd. #rebuttal", Point{X: 0, Y: 0}, true)
	c := b.Cards().Create(CategoryNote, "Note", "", Point{X: 3000, Y: 1800}, false)
	require.True(t, b.Graph().Connect(a.ID, c.ID))
	require.True(t, b.Layout().Measure(a.ID, Size{Width: 300, Height: 260}))
	require.True(t, b.Layout().Measure(c.ID, Size{Width: 300, Height: 200}))

	scene := b.Render(ViewCanvas, "transcript text")

	assert.Equal(t, ViewCanvas, scene.Mode)
	assert.Equal(t, "idle", scene.State)
	assert.Empty(t, scene.Transcript)
	assert.Equal(t, Size{Width: 3400, Height: 2100}, scene.Canvas)

	require.Len(t, scene.Cards, 2)
	assert.Equal(t, "TODO", scene.Cards[0].Label)
	assert.Equal(t, []string{"#rebuttal"}, scene.Cards[0].Tags)
	assert.Equal(t, "March 3rd", scene.Cards[0].DerivedDeadline)

	require.Len(t, scene.Edges, 1)
	assert.Equal(t, Point{X: 300, Y: 130}, scene.Edges[0].From)
	assert.Equal(t, Point{X: 3000, Y: 1900}, scene.Edges[0].To)
	assert.Nil(t, scene.RubberBand)
}

func TestBoard_RenderRemeasuresAnchors(t *testing.T) {
	b := NewBoard()
	a := b.Cards().Create(CategoryNote, "a", "", Point{}, false)
	c := b.Cards().Create(CategoryNote, "c", "", Point{X: 500}, false)
	b.Graph().Connect(a.ID, c.ID)

	b.Layout().Measure(a.ID, Size{Width: 288, Height: 200})
	first := b.Render(ViewCanvas, "").Edges[0].From

	b.Layout().Measure(a.ID, Size{Width: 288, Height: 320})
	second := b.Render(ViewCanvas, "").Edges[0].From

	assert.Equal(t, Point{X: 288, Y: 100}, first)
	assert.Equal(t, Point{X: 288, Y: 160}, second)
}

func TestBoard_RenderTranscriptDoesNotTouchState(t *testing.T) {
	b := NewBoard()
	a := b.Cards().Create(CategoryNote, "a", "", Point{}, false)
	c := b.Cards().Create(CategoryNote, "c", "", Point{X: 500}, false)
	b.Graph().Connect(a.ID, c.ID)

	scene := b.Render(ViewTranscript, "hello")

	assert.Equal(t, "hello", scene.Transcript)
	assert.Empty(t, scene.Cards)
	assert.Equal(t, 2, b.Cards().Len())
	assert.Equal(t, 1, b.Graph().Len())
}

func TestBoard_RenderRubberBandAndDragging(t *testing.T) {
	b := NewBoard()
	a := b.Cards().Create(CategoryNote, "a", "", Point{}, false)
	b.Layout().Measure(a.ID, Size{Width: 100, Height: 100})

	b.Engine().PointerDown(Target{Kind: TargetConnectHandle, CardID: a.ID}, Point{X: 100, Y: 50})
	b.Engine().PointerMove(Point{X: 700, Y: 300})

	scene := b.Render(ViewCanvas, "")
	require.NotNil(t, scene.RubberBand)
	assert.Equal(t, Point{X: 100, Y: 50}, scene.RubberBand.From)
	assert.Equal(t, Point{X: 700, Y: 300}, scene.RubberBand.To)
	assert.Equal(t, "connecting", scene.State)

	b.Engine().PointerUp(Target{Kind: TargetDocument}, Point{})
	b.Engine().PointerDown(Target{Kind: TargetDragHandle, CardID: a.ID}, Point{})
	b.Engine().PointerMove(Point{X: 2500, Y: 0})

	scene = b.Render(ViewCanvas, "")
	assert.True(t, scene.Cards[0].Dragging)
	assert.Equal(t, 2500.0, scene.Cards[0].Bounds.X)
	assert.Equal(t, 2900.0, scene.Canvas.Width, "extent follows the live drag position")
}

func TestBoard_PopulateStacksGeneratedCards(t *testing.T) {
	b := NewBoard()
	old := b.Cards().Create(CategoryNote, "old", "", Point{}, false)
	other := b.Cards().Create(CategoryNote, "other", "", Point{}, false)
	b.Graph().Connect(old.ID, other.ID)

	cards := b.Populate([]Draft{
		{Category: CategorySummary, Title: "TL;DR", Content: "s"},
		{Category: CategoryTask, Title: "t", Content: "c"},
	})

	require.Len(t, cards, 2)
	assert.Equal(t, Point{X: 20, Y: 140}, cards[0].Position)
	assert.Equal(t, Point{X: 20, Y: 420}, cards[1].Position)
	assert.True(t, cards[0].IsGenerated)
	assert.Equal(t, 2, b.Cards().Len())
	assert.Equal(t, 0, b.Graph().Len())
}

func TestParseViewMode(t *testing.T) {
	m, err := ParseViewMode("canvas")
	require.NoError(t, err)
	assert.Equal(t, ViewCanvas, m)

	_, err = ParseViewMode("list")
	assert.Error(t, err)
}
