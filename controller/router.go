package controller

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github/itish2003/meetingcanvas/models"
	"github/itish2003/meetingcanvas/services"
	"github/itish2003/meetingcanvas/workspace"
)

// RouterConfig holds everything the HTTP API is built from.
type RouterConfig struct {
	Workspace *services.WorkspaceService
	// Inbox and Exports are optional.
	Inbox   *services.TranscriptInbox
	Exports *services.ExportWriter
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// ExtractRate limits extraction calls per client per second. Zero
	// disables the limit.
	ExtractRate  rate.Limit
	ExtractBurst int
	Logger       *zap.Logger
}

var (
	registerOnce sync.Once
	registerErr  error
)

// registerValidators adds the "category" binding rule, which accepts a
// category value or its label.
func registerValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("binding engine is not a go-playground validator")
			return
		}
		registerErr = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			_, ok := workspace.ParseCategory(fl.Field().String())
			return ok
		})
	})
	return registerErr
}

// NewRouter wires all handlers under /api/v1.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if err := registerValidators(); err != nil {
		cfg.Logger.Error("failed to register request validators", zap.Error(err))
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(cfg.Logger.Named("http")), CORS())

	ws := NewWorkspaceController(cfg.Workspace, cfg.Exports, cfg.Logger)
	inbox := NewInboxController(cfg.Inbox, cfg.Workspace, cfg.Logger)

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:   "healthy",
			Sessions: cfg.Workspace.SessionCount(),
		})
	}
	router.GET("/health", health)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/health", health)
		if cfg.Metrics != nil {
			apiV1.GET("/metrics", gin.WrapH(cfg.Metrics))
		}

		apiV1.POST("/sessions", ws.CreateSession)
		apiV1.GET("/sessions", ws.ListSessions)
		apiV1.GET("/sessions/:id", ws.GetSession)
		apiV1.DELETE("/sessions/:id", ws.DeleteSession)
		extract := []gin.HandlerFunc{ws.Extract}
		if cfg.ExtractRate > 0 {
			extract = append([]gin.HandlerFunc{RateLimit(cfg.ExtractRate, max(cfg.ExtractBurst, 1))}, extract...)
		}
		apiV1.POST("/sessions/:id/extract", extract...)
		apiV1.POST("/sessions/:id/import", ws.ImportDocument)
		apiV1.PUT("/sessions/:id/view", ws.SetView)
		apiV1.GET("/sessions/:id/scene", ws.Scene)
		apiV1.GET("/sessions/:id/export", ws.ExportMarkdown)
		apiV1.POST("/sessions/:id/export", ws.SaveExport)

		apiV1.POST("/sessions/:id/cards", ws.AddCard)
		apiV1.PUT("/sessions/:id/positions", ws.MoveCards)
		apiV1.PATCH("/sessions/:id/cards/:cardId", ws.UpdateCard)
		apiV1.DELETE("/sessions/:id/cards/:cardId", ws.DeleteCard)
		apiV1.PUT("/sessions/:id/cards/:cardId/size", ws.MeasureCard)
		apiV1.GET("/sessions/:id/cards/:cardId/segment", ws.Segment)
		apiV1.POST("/sessions/:id/cards/:cardId/updates", ws.AddCardUpdate)
		apiV1.GET("/sessions/:id/cards/:cardId/updates", ws.CardUpdates)

		apiV1.POST("/sessions/:id/connections", ws.Connect)
		apiV1.DELETE("/sessions/:id/connections", ws.Disconnect)
		apiV1.POST("/sessions/:id/events", ws.HandleEvent)

		apiV1.GET("/inbox", inbox.List)
		apiV1.POST("/inbox/:hash/sessions", inbox.OpenSession)
	}
	return router
}
