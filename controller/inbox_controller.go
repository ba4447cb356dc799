package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github/itish2003/meetingcanvas/models"
	"github/itish2003/meetingcanvas/services"
)

// InboxController exposes the transcript inbox.
type InboxController struct {
	inbox     *services.TranscriptInbox
	workspace *services.WorkspaceService
	logger    *zap.Logger
}

// NewInboxController creates the controller. inbox may be nil when no inbox
// directory is configured.
func NewInboxController(inbox *services.TranscriptInbox, ws *services.WorkspaceService, logger *zap.Logger) *InboxController {
	return &InboxController{inbox: inbox, workspace: ws, logger: logger.Named("inbox")}
}

// List handles GET /inbox.
func (c *InboxController) List(ctx *gin.Context) {
	if c.inbox == nil {
		ctx.JSON(http.StatusOK, models.InboxResponse{Entries: []models.InboxEntry{}})
		return
	}
	entries := c.inbox.Entries()
	ctx.JSON(http.StatusOK, models.InboxResponse{Dir: c.inbox.Dir(), Count: len(entries), Entries: entries})
}

// OpenSession handles POST /inbox/:hash/sessions.
func (c *InboxController) OpenSession(ctx *gin.Context) {
	if c.inbox == nil {
		respondError(ctx, c.logger, services.ErrInboxEntryNotFound)
		return
	}
	var req models.OpenInboxRequest
	if err := bindOptionalJSON(ctx, &req); err != nil {
		respondBindError(ctx, err)
		return
	}
	entry, err := c.inbox.Lookup(ctx.Param("hash"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	resp, err := c.workspace.OpenInboxEntry(entry, req)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}
