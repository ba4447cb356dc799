package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github/itish2003/meetingcanvas/models"
	"github/itish2003/meetingcanvas/workspace"
)

// Session is one open workspace. All reads and writes of its fields go
// through mu; extractSlot admits a single extraction at a time without
// holding mu across the remote call.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu          sync.Mutex
	meetingDate string
	transcript  string
	agenda      string
	view        workspace.ViewMode
	board       *workspace.Board
	extracting  bool
	closed      bool

	extractSlot *semaphore.Weighted
}

func newSession(meetingDate, transcript, agenda string) *Session {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &Session{
		ID:          id.String(),
		CreatedAt:   time.Now().UTC(),
		meetingDate: meetingDate,
		transcript:  transcript,
		agenda:      agenda,
		view:        workspace.ViewTranscript,
		board:       workspace.NewBoard(),
		extractSlot: semaphore.NewWeighted(1),
	}
}

// summary must be called with mu held.
func (s *Session) summary() models.SessionSummary {
	return models.SessionSummary{
		ID:              s.ID,
		MeetingDate:     s.meetingDate,
		CreatedAt:       s.CreatedAt,
		View:            s.view,
		CardCount:       s.board.Cards().Len(),
		ConnectionCount: s.board.Graph().Len(),
		Extracting:      s.extracting,
	}
}

// snapshot must be called with mu held.
func (s *Session) snapshot() models.SessionResponse {
	return models.SessionResponse{
		SessionSummary: s.summary(),
		Transcript:     s.transcript,
		Agenda:         s.agenda,
		State:          s.board.Engine().State().String(),
		Cards:          s.board.Cards().List(),
		Connections:    s.board.Graph().Edges(),
	}
}

// reset tears the session down. Later writes are dropped.
func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.board.Populate(nil)
	s.transcript = ""
	s.agenda = ""
}
