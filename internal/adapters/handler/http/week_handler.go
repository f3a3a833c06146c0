package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/goalchallenge/weekly-goals-engine/internal/adapters/handler/http/middleware"
	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/goalchallenge/weekly-goals-engine/internal/core/services"
	"github.com/goalchallenge/weekly-goals-engine/internal/core/workers"
	"github.com/gin-gonic/gin"
)

// WeekHandler serves week resolution, debounced snapshot saves and the
// one-time sync routines.
type WeekHandler struct {
	svc    *services.WeekService
	events *services.EventService
	saver  *workers.SaveWorker
}

func NewWeekHandler(svc *services.WeekService, events *services.EventService, saver *workers.SaveWorker) *WeekHandler {
	return &WeekHandler{
		svc:    svc,
		events: events,
		saver:  saver,
	}
}

func (h *WeekHandler) RegisterRoutes(router *gin.RouterGroup) {
	weeks := router.Group("/weeks")
	{
		weeks.GET("/:stamp", h.Get)
		weeks.PUT("/:stamp", h.Save)
		weeks.POST("/:stamp/events", h.RecordEvent)
		weeks.GET("/:stamp/events", h.ListEvents)
	}

	sync := router.Group("/sync")
	{
		sync.POST("/migrate", h.Migrate)
		sync.POST("/merge", h.Merge)
	}
}

type saveWeekRequest struct {
	Categories []domain.Category `json:"categories" binding:"required"`
}

type weekResponse struct {
	WeekStamp  string               `json:"weekStamp"`
	WeekLabel  string               `json:"weekLabel"`
	Categories []domain.Category    `json:"categories"`
	Metrics    domain.WeeklyMetrics `json:"metrics"`
	Milestone  domain.Milestone     `json:"milestone"`
}

func (h *WeekHandler) Get(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile context missing"})
		return
	}

	stamp := c.Param("stamp")
	categories, err := h.svc.Resolve(c.Request.Context(), profileID, stamp)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidWeekStamp) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week stamp"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	events := h.events.ListByWeek(c.Request.Context(), profileID, stamp)
	metrics := domain.ComputeMetrics(categories, events)

	c.JSON(http.StatusOK, weekResponse{
		WeekStamp:  stamp,
		WeekLabel:  domain.WeekLabel(stamp),
		Categories: categories,
		Metrics:    metrics,
		Milestone:  domain.MilestoneFor(categories),
	})
}

// Save accepts the full category snapshot and hands it to the debounced
// save worker; 202 signals the write is queued, not yet durable. Past weeks
// are read only.
func (h *WeekHandler) Save(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile context missing"})
		return
	}

	stamp := c.Param("stamp")
	mode, err := domain.ModeFor(stamp, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week stamp"})
		return
	}
	if mode == domain.WeekPast {
		c.JSON(http.StatusForbidden, gin.H{"error": "past weeks are read only"})
		return
	}

	var req saveWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.saver.Schedule(domain.WeekKey{ProfileID: profileID, WeekStamp: stamp}, req.Categories)

	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

type recordEventRequest struct {
	Type string `json:"type" binding:"required"`
}

func (h *WeekHandler) RecordEvent(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile context missing"})
		return
	}

	var req recordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.events.Record(c.Request.Context(), profileID, c.Param("stamp"), req.Type)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidWeekStamp) || errors.Is(err, domain.ErrInvalidEvent) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *WeekHandler) ListEvents(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile context missing"})
		return
	}

	events := h.events.ListByWeek(c.Request.Context(), profileID, c.Param("stamp"))
	if events == nil {
		events = []*domain.WeekEvent{}
	}
	c.JSON(http.StatusOK, events)
}

func (h *WeekHandler) Migrate(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile context missing"})
		return
	}

	if err := h.svc.MigrateLegacyLocal(c.Request.Context(), profileID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "migration failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type mergeRequest struct {
	AnonymousProfileID string `json:"anonymousProfileId" binding:"required"`
}

// Merge folds anonymous-session data into the signed-in profile. Anonymous
// sessions cannot merge into themselves.
func (h *WeekHandler) Merge(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile context missing"})
		return
	}
	if middleware.IsAnonymous(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "merge requires a signed-in session"})
		return
	}

	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.MergeAnonymousIntoAuthenticated(c.Request.Context(), req.AnonymousProfileID, profileID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "merge failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
