package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/goalchallenge/weekly-goals-engine/internal/adapters/handler/http/middleware"
	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/goalchallenge/weekly-goals-engine/internal/core/services"
	"github.com/gin-gonic/gin"
)

const reportBusyMessage = "Could not generate the report right now. The analysis service may be busy, please try again in a moment."

// ReportHandler serves weekly report generation, latest/history reads and the
// markdown download.
type ReportHandler struct {
	reports  *services.ReportService
	weeks    *services.WeekService
	profiles *services.ProfileService
}

func NewReportHandler(reports *services.ReportService, weeks *services.WeekService, profiles *services.ProfileService) *ReportHandler {
	return &ReportHandler{
		reports:  reports,
		weeks:    weeks,
		profiles: profiles,
	}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/weeks/:stamp/report")
	{
		reports.GET("", h.Latest)
		reports.GET("/history", h.History)
		reports.POST("", h.Generate)
		reports.GET("/download", h.Download)
	}
}

func (h *ReportHandler) weekKey(c *gin.Context) (domain.WeekKey, bool) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile context missing"})
		return domain.WeekKey{}, false
	}
	stamp := c.Param("stamp")
	if !domain.IsWeekStamp(stamp) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week stamp"})
		return domain.WeekKey{}, false
	}
	return domain.WeekKey{ProfileID: profileID, WeekStamp: stamp}, true
}

// Latest returns the newest saved report for the week, or a null body when
// none has been generated yet. The absence of a report is not an error.
func (h *ReportHandler) Latest(c *gin.Context) {
	key, ok := h.weekKey(c)
	if !ok {
		return
	}

	report, err := h.reports.LoadLatest(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if report == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) History(c *gin.Context) {
	key, ok := h.weekKey(c)
	if !ok {
		return
	}

	max := 0
	if raw := c.Query("max"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max must be a positive integer"})
			return
		}
		max = parsed
	}

	history, err := h.reports.LoadHistory(c.Request.Context(), key, max)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if history == nil {
		history = []*domain.SavedWeeklyReport{}
	}
	c.JSON(http.StatusOK, history)
}

type generateReportRequest struct {
	Force bool `json:"force"`
}

// Generate builds a fresh report when the week's metrics changed since the
// last one, or when forced. Unchanged metrics return the saved report as-is.
func (h *ReportHandler) Generate(c *gin.Context) {
	key, ok := h.weekKey(c)
	if !ok {
		return
	}

	var req generateReportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx := c.Request.Context()
	categories, err := h.weeks.Resolve(ctx, key.ProfileID, key.WeekStamp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	metrics := h.reports.BuildMetricsSnapshot(ctx, key.ProfileID, key.WeekStamp, categories)

	latest, err := h.reports.LoadLatest(ctx, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if !req.Force && latest != nil && !h.reports.NeedsRegeneration(latest, metrics) {
		c.JSON(http.StatusOK, gin.H{"report": latest, "regenerated": false})
		return
	}

	profile, err := h.profiles.Load(ctx, key.ProfileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	report, err := h.reports.Generate(ctx, key, domain.ReportProfile{Name: profile.Name, Email: profile.Email}, categories, metrics)
	if err != nil {
		if errors.Is(err, domain.ErrReportGeneration) || errors.Is(err, domain.ErrReportEmpty) {
			c.JSON(http.StatusBadGateway, gin.H{"error": reportBusyMessage})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report, "regenerated": true})
}

// Download streams the latest report as a markdown attachment.
func (h *ReportHandler) Download(c *gin.Context) {
	key, ok := h.weekKey(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	report, err := h.reports.LoadLatest(ctx, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report generated for this week"})
		return
	}

	profile, err := h.profiles.Load(ctx, key.ProfileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	fileName := domain.ReportFileName(profile.Name, key.WeekStamp)
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Report))
}
