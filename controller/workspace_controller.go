package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github/itish2003/meetingcanvas/models"
	"github/itish2003/meetingcanvas/services"
	"github/itish2003/meetingcanvas/workspace"
)

const (
	credentialHeader = "X-Goog-Api-Key"
	maxUploadBytes   = 20 << 20
)

// WorkspaceController handles the session, card, connection and gesture
// endpoints.
type WorkspaceController struct {
	workspace *services.WorkspaceService
	exports   *services.ExportWriter
	logger    *zap.Logger
}

// NewWorkspaceController creates the controller. exports may be nil, which
// disables saving exports to disk.
func NewWorkspaceController(ws *services.WorkspaceService, exports *services.ExportWriter, logger *zap.Logger) *WorkspaceController {
	return &WorkspaceController{
		workspace: ws,
		exports:   exports,
		logger:    logger.Named("controller"),
	}
}

// CreateSession handles POST /sessions.
func (c *WorkspaceController) CreateSession(ctx *gin.Context) {
	var req models.CreateSessionRequest
	if err := bindOptionalJSON(ctx, &req); err != nil {
		respondBindError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, c.workspace.CreateSession(req))
}

// ListSessions handles GET /sessions.
func (c *WorkspaceController) ListSessions(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.workspace.ListSessions())
}

// GetSession handles GET /sessions/:id.
func (c *WorkspaceController) GetSession(ctx *gin.Context) {
	resp, err := c.workspace.Snapshot(ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DeleteSession handles DELETE /sessions/:id.
func (c *WorkspaceController) DeleteSession(ctx *gin.Context) {
	if err := c.workspace.DeleteSession(ctx.Param("id")); err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Extract handles POST /sessions/:id/extract. It blocks until the model
// answers.
func (c *WorkspaceController) Extract(ctx *gin.Context) {
	var req models.ExtractRequest
	if err := bindOptionalJSON(ctx, &req); err != nil {
		respondBindError(ctx, err)
		return
	}
	if req.Credential == "" {
		req.Credential = ctx.GetHeader(credentialHeader)
	}

	resp, err := c.workspace.Extract(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ImportDocument handles POST /sessions/:id/import with a multipart "file".
func (c *WorkspaceController) ImportDocument(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxUploadBytes)
	header, err := ctx.FormFile("file")
	if err != nil {
		respondError(ctx, c.logger, &services.ValidationError{Field: "file", Reason: "is required: " + err.Error()})
		return
	}
	f, err := header.Open()
	if err != nil {
		respondError(ctx, c.logger, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respondError(ctx, c.logger, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	resp, err := c.workspace.ImportDocument(ctx.Param("id"), header.Filename, data)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SetView handles PUT /sessions/:id/view.
func (c *WorkspaceController) SetView(ctx *gin.Context) {
	var req models.ViewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	mode, err := workspace.ParseViewMode(req.Mode)
	if err != nil {
		respondError(ctx, c.logger, &services.ValidationError{Field: "mode", Reason: err.Error()})
		return
	}
	resp, err := c.workspace.SetView(ctx.Param("id"), mode)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Scene handles GET /sessions/:id/scene.
func (c *WorkspaceController) Scene(ctx *gin.Context) {
	scene, err := c.workspace.Scene(ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, scene)
}

// AddCard handles POST /sessions/:id/cards.
func (c *WorkspaceController) AddCard(ctx *gin.Context) {
	var req models.AddCardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	card, err := c.workspace.AddCard(ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, card)
}

// UpdateCard handles PATCH /sessions/:id/cards/:cardId.
func (c *WorkspaceController) UpdateCard(ctx *gin.Context) {
	var req models.UpdateCardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	card, err := c.workspace.UpdateCard(ctx.Param("id"), ctx.Param("cardId"), req)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, card)
}

// MoveCards handles PUT /sessions/:id/positions.
func (c *WorkspaceController) MoveCards(ctx *gin.Context) {
	var req models.BatchPositionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	resp, err := c.workspace.MoveCards(ctx.Param("id"), req.Moves)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// AddCardUpdate handles POST /sessions/:id/cards/:cardId/updates.
func (c *WorkspaceController) AddCardUpdate(ctx *gin.Context) {
	var req models.CardUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	update, err := c.workspace.AddCardUpdate(ctx.Param("id"), ctx.Param("cardId"), req)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, update)
}

// CardUpdates handles GET /sessions/:id/cards/:cardId/updates.
func (c *WorkspaceController) CardUpdates(ctx *gin.Context) {
	resp, err := c.workspace.CardUpdates(ctx.Param("id"), ctx.Param("cardId"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DeleteCard handles DELETE /sessions/:id/cards/:cardId.
func (c *WorkspaceController) DeleteCard(ctx *gin.Context) {
	if err := c.workspace.DeleteCard(ctx.Param("id"), ctx.Param("cardId")); err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// MeasureCard handles PUT /sessions/:id/cards/:cardId/size.
func (c *WorkspaceController) MeasureCard(ctx *gin.Context) {
	var req models.MeasureCardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	size := workspace.Size{Width: req.Width, Height: req.Height}
	if err := c.workspace.MeasureCard(ctx.Param("id"), ctx.Param("cardId"), size); err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Segment handles GET /sessions/:id/cards/:cardId/segment.
func (c *WorkspaceController) Segment(ctx *gin.Context) {
	resp, err := c.workspace.Segment(ctx.Param("id"), ctx.Param("cardId"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Connect handles POST /sessions/:id/connections.
func (c *WorkspaceController) Connect(ctx *gin.Context) {
	var req models.ConnectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	resp, err := c.workspace.Connect(ctx.Param("id"), req.FromID, req.ToID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	status := http.StatusOK
	if resp.Changed > 0 {
		status = http.StatusCreated
	}
	ctx.JSON(status, resp)
}

// Disconnect handles DELETE /sessions/:id/connections.
func (c *WorkspaceController) Disconnect(ctx *gin.Context) {
	var req models.ConnectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	resp, err := c.workspace.Disconnect(ctx.Param("id"), req.FromID, req.ToID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// HandleEvent handles POST /sessions/:id/events.
func (c *WorkspaceController) HandleEvent(ctx *gin.Context) {
	var req models.EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	resp, err := c.workspace.HandleEvent(ctx.Param("id"), workspace.Event{
		Type:   workspace.EventType(req.Type),
		Target: req.Target,
		Point:  req.Point,
	})
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ExportMarkdown handles GET /sessions/:id/export.
func (c *WorkspaceController) ExportMarkdown(ctx *gin.Context) {
	doc, err := c.workspace.ExportMarkdown(ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(doc))
}

// SaveExport handles POST /sessions/:id/export.
func (c *WorkspaceController) SaveExport(ctx *gin.Context) {
	if c.exports == nil {
		ctx.AbortWithStatusJSON(http.StatusNotImplemented, models.ErrorResponse{Error: "Saving exports is not configured", Kind: "unavailable"})
		return
	}
	var req models.ExportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	doc, err := c.workspace.ExportMarkdown(ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	path, err := c.exports.Write(req.Filename, doc)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, models.ExportResponse{Path: path})
}

// bindOptionalJSON binds a JSON body when one was sent.
func bindOptionalJSON(ctx *gin.Context, obj any) error {
	if ctx.Request.ContentLength == 0 && !strings.Contains(ctx.GetHeader("Transfer-Encoding"), "chunked") {
		return nil
	}
	if err := ctx.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
