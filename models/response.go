package models

import (
	"time"

	"github/itish2003/meetingcanvas/workspace"
)

// SessionSummary describes a session without its cards.
type SessionSummary struct {
	ID              string             `json:"id"`
	MeetingDate     string             `json:"meetingDate,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	View            workspace.ViewMode `json:"view"`
	CardCount       int                `json:"cardCount"`
	ConnectionCount int                `json:"connectionCount"`
	Extracting      bool               `json:"extracting"`
}

// SessionResponse is the full state of one session.
type SessionResponse struct {
	SessionSummary
	Transcript  string                 `json:"transcript"`
	Agenda      string                 `json:"agenda"`
	State       string                 `json:"state"`
	Cards       []workspace.Card       `json:"cards"`
	Connections []workspace.Connection `json:"connections"`
}

type ListSessionsResponse struct {
	Count    int              `json:"count"`
	Sessions []SessionSummary `json:"sessions"`
}

type ExtractResponse struct {
	SessionID string             `json:"sessionId"`
	View      workspace.ViewMode `json:"view"`
	Cards     []workspace.Card   `json:"cards"`
}

type EventResponse struct {
	State   string            `json:"state"`
	Outcome workspace.Outcome `json:"outcome"`
}

type SegmentResponse struct {
	CardID  string `json:"cardId"`
	Segment string `json:"segment"`
	Found   bool   `json:"found"`
}

// BatchPositionsResponse lists the cards that were moved; unknown ids are
// left out.
type BatchPositionsResponse struct {
	Count int              `json:"count"`
	Cards []workspace.Card `json:"cards"`
}

type CardUpdatesResponse struct {
	CardID  string                 `json:"cardId"`
	Count   int                    `json:"count"`
	Updates []workspace.CardUpdate `json:"updates"`
}

type ConnectionResponse struct {
	Connection workspace.Connection `json:"connection"`
	Changed    int                  `json:"changed"`
}

// InboxEntry is a transcript file found in the inbox directory.
type InboxEntry struct {
	Hash       string    `json:"hash"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Text       string    `json:"-"`
	Size       int64     `json:"size"`
	ImportedAt time.Time `json:"importedAt"`
	// Error is set when the file was seen but its text could not be read.
	Error string `json:"error,omitempty"`
}

type InboxResponse struct {
	Dir     string       `json:"dir"`
	Count   int          `json:"count"`
	Entries []InboxEntry `json:"entries"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type ExportResponse struct {
	Path string `json:"path"`
}
