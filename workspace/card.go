// Package workspace holds the card canvas: the card store, the connection
// graph between cards, the pointer gesture engine and the scene renderer.
//
// Nothing in this package blocks or performs I/O. Callers serialize access
// to a Board; the services layer does so with a per-session mutex.
package workspace

import (
	"strings"
	"time"
)

// Category classifies a card.
type Category string

const (
	CategorySummary     Category = "summary"
	CategoryTask        Category = "task"
	CategoryReflection  Category = "reflection"
	CategoryUnaddressed Category = "unaddressed"
	CategoryNote        Category = "note"
	CategoryRoadblock   Category = "roadblock"
)

var categoryLabels = map[Category]string{
	CategorySummary:     "TL;DR",
	CategoryTask:        "TODO",
	CategoryReflection:  "Reflection",
	CategoryUnaddressed: "Unaddressed",
	CategoryNote:        "Note",
	CategoryRoadblock:   "Roadblock",
}

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{
		CategorySummary,
		CategoryTask,
		CategoryReflection,
		CategoryUnaddressed,
		CategoryNote,
		CategoryRoadblock,
	}
}

// Label is the short human-readable name shown on the card badge.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory accepts either the category value ("task") or its label
// ("TODO"), case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, c.Label()) {
			return c, true
		}
	}
	return "", false
}

// Point is a coordinate in canvas space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Size is a rendered width and height.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Status is where a card is in its lifecycle. New cards start as drafts.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// ParseStatus accepts a status value in any case.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusDraft, StatusActive, StatusCompleted, StatusArchived:
		return st, true
	}
	return "", false
}

// Card is a movable unit of content on the canvas.
type Card struct {
	ID          string    `json:"id"`
	Category    Category  `json:"category"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Position    Point     `json:"position"`
	IsGenerated bool      `json:"isGenerated"`
	Status      Status    `json:"status"`
	AssignedTo  string    `json:"assignedTo,omitempty"`
	Deadline    *string   `json:"deadline,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Draft describes a card that has not been placed in a store yet.
type Draft struct {
	Category Category
	Title    string
	Content  string
}
