package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github/itish2003/meetingcanvas/models"
	"github/itish2003/meetingcanvas/workspace"
)

const (
	noTasksTitle         = "No TODOs Found"
	noTasksContent       = "No specific action items were identified in the transcript."
	noUnaddressedTitle   = "No Unaddressed Items"
	noUnaddressedContent = "All agenda items appear to have been covered, or no agenda was provided."

	newCardContent = "New item content..."

	// Offsets that put a new card's centre on the viewport centre.
	cardHalfWidth  = 144.0
	cardHalfHeight = 140.0
)

var defaultCardPosition = workspace.Point{X: 50, Y: 50}

// WorkspaceOptions configures a WorkspaceService.
type WorkspaceOptions struct {
	Gateways GatewayFactory
	// DefaultCredential is used when a request carries no credential.
	DefaultCredential string
	ExtractTimeout    time.Duration
	Segments          *SegmentFinder
	Metrics           *Metrics
	Logger            *zap.Logger
	// Breaker guards the extraction upstream. Nil uses DefaultBreakerSettings.
	Breaker *gobreaker.CircuitBreaker
}

// WorkspaceService owns every open session and is the only way handlers
// touch cards, connections and gestures.
type WorkspaceService struct {
	gateways          GatewayFactory
	defaultCredential string
	extractTimeout    time.Duration
	segments          *SegmentFinder
	metrics           *Metrics
	logger            *zap.Logger
	breaker           *gobreaker.CircuitBreaker

	mu       sync.RWMutex
	sessions map[string]*Session
}

// DefaultBreakerSettings trips after five consecutive upstream failures and
// probes again after thirty seconds.
func DefaultBreakerSettings(logger *zap.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "gemini-extract",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// Only upstream failures count against the breaker.
		IsSuccessful: func(err error) bool {
			var upstream *UpstreamError
			return err == nil || !errors.As(err, &upstream)
		},
	}
}

// NewWorkspaceService creates a service with no sessions.
func NewWorkspaceService(opts WorkspaceOptions) *WorkspaceService {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.Segments == nil {
		opts.Segments = NewSegmentFinder(600, 60)
	}
	if opts.ExtractTimeout <= 0 {
		opts.ExtractTimeout = 2 * time.Minute
	}
	logger := opts.Logger.Named("workspace")
	if opts.Breaker == nil {
		opts.Breaker = gobreaker.NewCircuitBreaker(DefaultBreakerSettings(logger))
	}
	return &WorkspaceService{
		gateways:          opts.Gateways,
		defaultCredential: strings.TrimSpace(opts.DefaultCredential),
		extractTimeout:    opts.ExtractTimeout,
		segments:          opts.Segments,
		metrics:           opts.Metrics,
		logger:            logger,
		breaker:           opts.Breaker,
		sessions:          make(map[string]*Session),
	}
}

// CreateSession opens an empty workspace in transcript view.
func (w *WorkspaceService) CreateSession(req models.CreateSessionRequest) models.SessionResponse {
	s := newSession(req.MeetingDate, req.Transcript, req.Agenda)

	w.mu.Lock()
	w.sessions[s.ID] = s
	n := len(w.sessions)
	w.mu.Unlock()

	w.metrics.SessionsActive.Set(float64(n))
	w.logger.Info("session created", zap.String("session_id", s.ID), zap.Int("transcript_len", len(req.Transcript)))

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// OpenInboxEntry creates a session whose transcript is the text of entry.
func (w *WorkspaceService) OpenInboxEntry(entry models.InboxEntry, req models.OpenInboxRequest) (models.SessionResponse, error) {
	if entry.Error != "" {
		return models.SessionResponse{}, &ValidationError{Field: "inbox entry", Reason: "could not be read: " + entry.Error}
	}
	if strings.TrimSpace(entry.Text) == "" {
		return models.SessionResponse{}, &ValidationError{Field: "inbox entry", Reason: "contains no text"}
	}
	return w.CreateSession(models.CreateSessionRequest{
		MeetingDate: req.MeetingDate,
		Transcript:  entry.Text,
		Agenda:      req.Agenda,
	}), nil
}

// SessionCount returns the number of open sessions.
func (w *WorkspaceService) SessionCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.sessions)
}

// ListSessions returns all sessions, oldest first.
func (w *WorkspaceService) ListSessions() models.ListSessionsResponse {
	w.mu.RLock()
	all := make([]*Session, 0, len(w.sessions))
	for _, s := range w.sessions {
		all = append(all, s)
	}
	w.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	out := make([]models.SessionSummary, 0, len(all))
	for _, s := range all {
		s.mu.Lock()
		out = append(out, s.summary())
		s.mu.Unlock()
	}
	return models.ListSessionsResponse{Count: len(out), Sessions: out}
}

// Snapshot returns the full state of a session.
func (w *WorkspaceService) Snapshot(id string) (models.SessionResponse, error) {
	s, err := w.session(id)
	if err != nil {
		return models.SessionResponse{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

// DeleteSession tears a session down. An extraction still running for it
// finishes but its result is dropped.
func (w *WorkspaceService) DeleteSession(id string) error {
	w.mu.Lock()
	s, ok := w.sessions[id]
	if ok {
		delete(w.sessions, id)
	}
	n := len(w.sessions)
	w.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.reset()
	w.metrics.SessionsActive.Set(float64(n))
	w.logger.Info("session deleted", zap.String("session_id", id))
	return nil
}

// Extract sends the transcript to the model and replaces the card set with
// the result. Only one extraction per session may run at a time; the
// session stays usable while it does.
func (w *WorkspaceService) Extract(ctx context.Context, id string, req models.ExtractRequest) (*models.ExtractResponse, error) {
	s, err := w.session(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	transcript := req.Transcript
	if strings.TrimSpace(transcript) == "" {
		transcript = s.transcript
	}
	agenda := req.Agenda
	if strings.TrimSpace(agenda) == "" {
		agenda = s.agenda
	}
	s.mu.Unlock()

	credential := strings.TrimSpace(req.Credential)
	if credential == "" {
		credential = w.defaultCredential
	}
	if credential == "" {
		w.observeExtraction("configuration")
		return nil, &ConfigurationError{Reason: "no Gemini API key was supplied"}
	}
	if strings.TrimSpace(transcript) == "" {
		w.observeExtraction("validation")
		return nil, &ValidationError{Field: "transcript", Reason: "must not be empty"}
	}

	if !s.extractSlot.TryAcquire(1) {
		w.observeExtraction("busy")
		return nil, ErrBusy
	}
	defer s.extractSlot.Release(1)

	s.mu.Lock()
	s.extracting = true
	s.transcript = transcript
	s.agenda = agenda
	s.mu.Unlock()

	logger := w.logger.With(zap.String("session_id", id))
	logger.Info("starting extraction", zap.Int("transcript_len", len(transcript)), zap.Bool("has_agenda", agenda != ""))

	result, err := w.callGateway(ctx, credential, ExtractionRequest{Transcript: transcript, Agenda: agenda})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.extracting = false

	if err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			w.observeExtraction("configuration")
		} else {
			w.observeExtraction("upstream")
		}
		logger.Error("extraction failed", zap.Error(err))
		return nil, err
	}
	if s.closed {
		logger.Info("session closed during extraction, dropping result")
		return nil, ErrSessionNotFound
	}

	cards := s.board.Populate(PlanCards(result))
	s.view = workspace.ViewCanvas
	w.observeExtraction("success")
	logger.Info("extraction finished", zap.Int("cards", len(cards)))

	return &models.ExtractResponse{SessionID: id, View: s.view, Cards: cards}, nil
}

func (w *WorkspaceService) callGateway(ctx context.Context, credential string, req ExtractionRequest) (*ExtractionResult, error) {
	if w.gateways == nil {
		return nil, &ConfigurationError{Reason: "no extraction backend is configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, w.extractTimeout)
	defer cancel()

	gw, err := w.gateways(ctx, credential)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := w.breaker.Execute(func() (interface{}, error) {
		res, err := gw.Extract(ctx, req)
		if err != nil {
			var upstream *UpstreamError
			var cfgErr *ConfigurationError
			if !errors.As(err, &upstream) && !errors.As(err, &cfgErr) {
				err = &UpstreamError{Op: "extract", Err: err}
			}
			return nil, err
		}
		if res == nil {
			return nil, &UpstreamError{Op: "extract", Err: errors.New("empty extraction result")}
		}
		return res, nil
	})
	w.metrics.ExtractionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &UpstreamError{Op: "extract", Err: err}
		}
		return nil, err
	}
	return out.(*ExtractionResult), nil
}

func (w *WorkspaceService) observeExtraction(outcome string) {
	w.metrics.ExtractionsTotal.WithLabelValues(outcome).Inc()
}

// PlanCards turns an extraction result into the cards of a fresh canvas:
// the summary, then tasks, reflections and unaddressed agenda items. Empty
// task and unaddressed lists get a placeholder card each.
func PlanCards(result *ExtractionResult) []workspace.Draft {
	drafts := make([]workspace.Draft, 0, 2+len(result.Tasks)+len(result.Reflections)+len(result.Unaddressed))

	summaryTitle := result.Summary.Title
	if strings.TrimSpace(summaryTitle) == "" {
		summaryTitle = workspace.CategorySummary.Label()
	}
	drafts = append(drafts, workspace.Draft{
		Category: workspace.CategorySummary,
		Title:    summaryTitle,
		Content:  result.Summary.Content,
	})

	if len(result.Tasks) == 0 {
		drafts = append(drafts, workspace.Draft{Category: workspace.CategoryTask, Title: noTasksTitle, Content: noTasksContent})
	}
	for _, t := range result.Tasks {
		drafts = append(drafts, workspace.Draft{Category: workspace.CategoryTask, Title: t.Title, Content: t.Content})
	}

	for _, r := range result.Reflections {
		drafts = append(drafts, workspace.Draft{Category: workspace.CategoryReflection, Title: r.Title, Content: r.Content})
	}

	if len(result.Unaddressed) == 0 {
		drafts = append(drafts, workspace.Draft{Category: workspace.CategoryUnaddressed, Title: noUnaddressedTitle, Content: noUnaddressedContent})
	}
	for _, u := range result.Unaddressed {
		drafts = append(drafts, workspace.Draft{Category: workspace.CategoryUnaddressed, Title: u.Title, Content: u.Content})
	}
	return drafts
}

// AddCard creates a user card of the requested category.
func (w *WorkspaceService) AddCard(id string, req models.AddCardRequest) (workspace.Card, error) {
	category, ok := workspace.ParseCategory(req.Category)
	if !ok {
		return workspace.Card{}, &ValidationError{Field: "category", Reason: fmt.Sprintf("%q is not a known category", req.Category)}
	}

	position := defaultCardPosition
	switch {
	case req.Position != nil:
		position = *req.Position
	case req.Viewport != nil && req.Viewport.ClientWidth > 0 && req.Viewport.ClientHeight > 0:
		position = workspace.Point{
			X: req.Viewport.ScrollLeft + req.Viewport.ClientWidth/2 - cardHalfWidth,
			Y: req.Viewport.ScrollTop + req.Viewport.ClientHeight/2 - cardHalfHeight,
		}
	}

	var card workspace.Card
	err := w.withSession(id, func(s *Session) error {
		card = s.board.Cards().Create(category, "New "+category.Label(), newCardContent, position, false)
		return nil
	})
	return card, err
}

// UpdateCard applies the non-nil fields of req.
func (w *WorkspaceService) UpdateCard(id, cardID string, req models.UpdateCardRequest) (workspace.Card, error) {
	var status workspace.Status
	if req.Status != nil {
		st, ok := workspace.ParseStatus(*req.Status)
		if !ok {
			return workspace.Card{}, &ValidationError{Field: "status", Reason: fmt.Sprintf("%q is not a known status", *req.Status)}
		}
		status = st
	}

	var card workspace.Card
	err := w.withSession(id, func(s *Session) error {
		cards := s.board.Cards()
		current, ok := cards.Get(cardID)
		if !ok {
			return ErrCardNotFound
		}
		if req.Title != nil || req.Content != nil {
			title, content := current.Title, current.Content
			if req.Title != nil {
				title = *req.Title
			}
			if req.Content != nil {
				content = *req.Content
			}
			cards.UpdateContent(cardID, title, content)
		}
		if req.Position != nil {
			cards.UpdatePosition(cardID, *req.Position)
		}
		switch {
		case req.ClearDeadline:
			cards.SetDeadline(cardID, nil)
		case req.Deadline != nil:
			cards.SetDeadline(cardID, req.Deadline)
		}
		if status != "" {
			cards.SetStatus(cardID, status)
		}
		if req.AssignedTo != nil {
			cards.SetAssignee(cardID, strings.TrimSpace(*req.AssignedTo))
		}
		card, _ = cards.Get(cardID)
		return nil
	})
	return card, err
}

// MoveCards applies a batch of position changes under one lock, so the
// client never sees half of a rearrangement. Unknown card ids are skipped.
func (w *WorkspaceService) MoveCards(id string, moves []models.PositionMove) (models.BatchPositionsResponse, error) {
	updates := make([]workspace.PositionUpdate, 0, len(moves))
	for _, m := range moves {
		updates = append(updates, workspace.PositionUpdate{ID: m.ID, Position: m.Position})
	}

	var moved []workspace.Card
	err := w.withSession(id, func(s *Session) error {
		moved = s.board.Cards().UpdatePositions(updates)
		return nil
	})
	if err != nil {
		return models.BatchPositionsResponse{}, err
	}
	return models.BatchPositionsResponse{Count: len(moved), Cards: moved}, nil
}

// AddCardUpdate leaves a note or ping on a card.
func (w *WorkspaceService) AddCardUpdate(id, cardID string, req models.CardUpdateRequest) (workspace.CardUpdate, error) {
	author := strings.TrimSpace(req.Author)
	content := strings.TrimSpace(req.Content)
	if author == "" || content == "" {
		return workspace.CardUpdate{}, &ValidationError{Field: "update", Reason: "needs an author and content"}
	}
	pinged := strings.TrimSpace(req.PingedUser)
	if req.IsPing && pinged == "" {
		return workspace.CardUpdate{}, &ValidationError{Field: "pingedUser", Reason: "is required for a ping"}
	}

	var out workspace.CardUpdate
	err := w.withSession(id, func(s *Session) error {
		u, ok := s.board.Cards().AddUpdate(cardID, workspace.CardUpdate{
			Author:     author,
			Content:    content,
			IsPing:     req.IsPing,
			PingedUser: pinged,
		})
		if !ok {
			return ErrCardNotFound
		}
		out = u
		return nil
	})
	return out, err
}

// CardUpdates returns the notes left on a card, newest first.
func (w *WorkspaceService) CardUpdates(id, cardID string) (models.CardUpdatesResponse, error) {
	var log []workspace.CardUpdate
	err := w.withSession(id, func(s *Session) error {
		updates, ok := s.board.Cards().Updates(cardID)
		if !ok {
			return ErrCardNotFound
		}
		log = updates
		return nil
	})
	if err != nil {
		return models.CardUpdatesResponse{}, err
	}
	return models.CardUpdatesResponse{CardID: cardID, Count: len(log), Updates: log}, nil
}

// DeleteCard removes a card and every connection touching it.
func (w *WorkspaceService) DeleteCard(id, cardID string) error {
	return w.withSession(id, func(s *Session) error {
		if !s.board.RemoveCard(cardID) {
			return ErrCardNotFound
		}
		return nil
	})
}

// MeasureCard records the rendered size of a card, used for its anchors.
func (w *WorkspaceService) MeasureCard(id, cardID string, size workspace.Size) error {
	return w.withSession(id, func(s *Session) error {
		if !s.board.Cards().Has(cardID) {
			return ErrCardNotFound
		}
		if !s.board.Layout().Measure(cardID, size) {
			return &ValidationError{Field: "size", Reason: "must be positive"}
		}
		return nil
	})
}

// Connect adds an edge. Changed is 0 when the edge already exists or would
// be a self-loop.
func (w *WorkspaceService) Connect(id, fromID, toID string) (models.ConnectionResponse, error) {
	resp := models.ConnectionResponse{Connection: workspace.Connection{FromID: fromID, ToID: toID}}
	err := w.withSession(id, func(s *Session) error {
		if !s.board.Cards().Has(fromID) || !s.board.Cards().Has(toID) {
			return ErrCardNotFound
		}
		if s.board.Graph().Connect(fromID, toID) {
			resp.Changed = 1
		}
		return nil
	})
	return resp, err
}

// Disconnect removes every edge from fromID to toID.
func (w *WorkspaceService) Disconnect(id, fromID, toID string) (models.ConnectionResponse, error) {
	resp := models.ConnectionResponse{Connection: workspace.Connection{FromID: fromID, ToID: toID}}
	err := w.withSession(id, func(s *Session) error {
		resp.Changed = s.board.Graph().Disconnect(fromID, toID)
		return nil
	})
	return resp, err
}

// SetView switches between transcript and canvas view.
func (w *WorkspaceService) SetView(id string, mode workspace.ViewMode) (models.SessionSummary, error) {
	var out models.SessionSummary
	err := w.withSession(id, func(s *Session) error {
		s.view = mode
		out = s.summary()
		return nil
	})
	return out, err
}

// HandleEvent feeds one pointer event to the session's interaction engine.
func (w *WorkspaceService) HandleEvent(id string, ev workspace.Event) (models.EventResponse, error) {
	var resp models.EventResponse
	err := w.withSession(id, func(s *Session) error {
		outcome := s.board.Engine().Handle(ev)
		resp = models.EventResponse{State: s.board.Engine().State().String(), Outcome: outcome}
		return nil
	})
	if err == nil {
		w.observeGesture(resp.Outcome)
	}
	return resp, err
}

func (w *WorkspaceService) observeGesture(o workspace.Outcome) {
	switch {
	case o.Moved != nil:
		w.metrics.GesturesTotal.WithLabelValues("moved").Inc()
	case o.Connected != nil:
		w.metrics.GesturesTotal.WithLabelValues("connected").Inc()
	case o.Disconnected != nil:
		w.metrics.GesturesTotal.WithLabelValues("disconnected").Inc()
	case o.Aborted:
		w.metrics.GesturesTotal.WithLabelValues("aborted").Inc()
	}
}

// Scene renders the session in its current view.
func (w *WorkspaceService) Scene(id string) (workspace.Scene, error) {
	var scene workspace.Scene
	err := w.withSession(id, func(s *Session) error {
		scene = s.board.Render(s.view, s.transcript)
		return nil
	})
	return scene, err
}

// Segment finds the transcript passage a card was most likely drawn from.
func (w *WorkspaceService) Segment(id, cardID string) (models.SegmentResponse, error) {
	var (
		card       workspace.Card
		transcript string
	)
	err := w.withSession(id, func(s *Session) error {
		c, ok := s.board.Cards().Get(cardID)
		if !ok {
			return ErrCardNotFound
		}
		card, transcript = c, s.transcript
		return nil
	})
	if err != nil {
		return models.SegmentResponse{}, err
	}

	segment, err := w.segments.Find(transcript, card)
	if err != nil {
		return models.SegmentResponse{}, fmt.Errorf("failed to split transcript: %w", err)
	}
	return models.SegmentResponse{CardID: cardID, Segment: segment, Found: segment != ""}, nil
}

// ImportDocument replaces the session transcript with the text of an
// uploaded document.
func (w *WorkspaceService) ImportDocument(id, name string, data []byte) (models.SessionResponse, error) {
	if _, err := w.session(id); err != nil {
		return models.SessionResponse{}, err
	}
	text, err := ExtractText(name, data)
	if err != nil {
		return models.SessionResponse{}, err
	}
	if text == "" {
		return models.SessionResponse{}, &ValidationError{Field: "file", Reason: "contains no text"}
	}

	var out models.SessionResponse
	err = w.withSession(id, func(s *Session) error {
		s.transcript = text
		out = s.snapshot()
		return nil
	})
	if err == nil {
		w.logger.Info("document imported", zap.String("session_id", id), zap.String("file", name), zap.Int("text_len", len(text)))
	}
	return out, err
}

func (w *WorkspaceService) session(id string) (*Session, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// withSession runs fn with the session locked. A session deleted between
// lookup and lock is reported as not found.
func (w *WorkspaceService) withSession(id string, fn func(s *Session) error) error {
	s, err := w.session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionNotFound
	}
	return fn(s)
}
