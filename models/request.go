package models

import "github/itish2003/meetingcanvas/workspace"

type CreateSessionRequest struct {
	MeetingDate string `json:"meetingDate"`
	Transcript  string `json:"transcript"`
	Agenda      string `json:"agenda"`
}

// ExtractRequest starts an extraction. Empty transcript and agenda fall back
// to the ones stored on the session.
type ExtractRequest struct {
	Transcript string `json:"transcript"`
	Agenda     string `json:"agenda"`
	Credential string `json:"credential,omitempty"`
}

// Viewport is the visible part of the canvas as reported by the client.
type Viewport struct {
	ScrollLeft   float64 `json:"scrollLeft"`
	ScrollTop    float64 `json:"scrollTop"`
	ClientWidth  float64 `json:"clientWidth" binding:"gte=0"`
	ClientHeight float64 `json:"clientHeight" binding:"gte=0"`
}

// AddCardRequest creates a user card. Position wins over Viewport; with
// neither the card lands at the default spot.
type AddCardRequest struct {
	Category string           `json:"category" binding:"required,category"`
	Position *workspace.Point `json:"position,omitempty"`
	Viewport *Viewport        `json:"viewport,omitempty"`
}

// UpdateCardRequest patches a card. Nil fields are left alone; an empty
// AssignedTo unassigns the card.
type UpdateCardRequest struct {
	Title         *string          `json:"title,omitempty"`
	Content       *string          `json:"content,omitempty"`
	Position      *workspace.Point `json:"position,omitempty"`
	Deadline      *string          `json:"deadline,omitempty"`
	ClearDeadline bool             `json:"clearDeadline,omitempty"`
	Status        *string          `json:"status,omitempty" binding:"omitempty,oneof=draft active completed archived"`
	AssignedTo    *string          `json:"assignedTo,omitempty" binding:"omitempty,max=100"`
}

type PositionMove struct {
	ID       string          `json:"id" binding:"required"`
	Position workspace.Point `json:"position"`
}

// BatchPositionsRequest moves several cards at once, for example after the
// client rearranged the canvas.
type BatchPositionsRequest struct {
	Moves []PositionMove `json:"moves" binding:"required,min=1,dive"`
}

// CardUpdateRequest leaves a note on a card. A ping must name its recipient.
type CardUpdateRequest struct {
	Author     string `json:"author" binding:"required,max=100"`
	Content    string `json:"content" binding:"required"`
	IsPing     bool   `json:"isPing"`
	PingedUser string `json:"pingedUser" binding:"required_if=IsPing true,max=100"`
}

type MeasureCardRequest struct {
	Width  float64 `json:"width" binding:"gt=0"`
	Height float64 `json:"height" binding:"gt=0"`
}

type ConnectionRequest struct {
	FromID string `json:"fromId" binding:"required"`
	ToID   string `json:"toId" binding:"required"`
}

type ViewRequest struct {
	Mode string `json:"mode" binding:"required,oneof=transcript canvas"`
}

type EventRequest struct {
	Type   string           `json:"type" binding:"required,oneof=pointerdown pointermove pointerup click"`
	Target workspace.Target `json:"target"`
	Point  workspace.Point  `json:"point"`
}

type OpenInboxRequest struct {
	MeetingDate string `json:"meetingDate"`
	Agenda      string `json:"agenda"`
}

type ExportRequest struct {
	Filename string `json:"filename" binding:"required"`
}
