package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Allono07/live-event-validation-netcore/internal/service"
)

// DashboardHandler serves the reporting queries backing the dashboard.
type DashboardHandler struct {
	reporting    *service.ReportingService
	apps         *service.AppService
	defaultHours int
	logger       *zap.Logger
}

func NewDashboardHandler(reporting *service.ReportingService, apps *service.AppService, defaultHours int, logger *zap.Logger) *DashboardHandler {
	if defaultHours <= 0 {
		defaultHours = 24
	}
	return &DashboardHandler{
		reporting:    reporting,
		apps:         apps,
		defaultHours: defaultHours,
		logger:       logger,
	}
}

func (h *DashboardHandler) hoursParam(c *gin.Context) int {
	hours := h.defaultHours
	if raw := c.Query("hours"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			hours = n
		}
	}
	return hours
}

// GetStats handles GET /api/apps/:app_id/stats?hours=24.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.reporting.Stats(c.Request.Context(), c.Param("app_id"), h.hoursParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetLogs handles GET /api/apps/:app_id/logs with optional event_name,
// status, hours, limit and page filters.
func (h *DashboardHandler) GetLogs(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	page := 1
	if raw := c.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	filter := service.LogFilter{
		EventName: strings.ToLower(strings.TrimSpace(c.Query("event_name"))),
		Status:    strings.TrimSpace(c.Query("status")),
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}
	if raw := c.Query("hours"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			filter.Since = time.Now().UTC().Add(-time.Duration(n) * time.Hour)
		}
	}

	entries, total, err := h.reporting.Logs(c.Request.Context(), c.Param("app_id"), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":  entries,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetCoverage handles GET /api/apps/:app_id/coverage.
func (h *DashboardHandler) GetCoverage(c *gin.Context) {
	coverage, err := h.reporting.Coverage(c.Request.Context(), c.Param("app_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coverage)
}

// GetFullyValidEvents handles GET /api/apps/:app_id/events/fully-valid.
func (h *DashboardHandler) GetFullyValidEvents(c *gin.Context) {
	entries, err := h.reporting.FullyValidEvents(c.Request.Context(), c.Param("app_id"), h.hoursParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"events": entries,
		"count":  len(entries),
	})
}

// PurgeLogs handles POST /api/apps/:app_id/logs/purge?days=30.
func (h *DashboardHandler) PurgeLogs(c *gin.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			days = n
		}
	}

	removed, err := h.reporting.PurgeOldLogs(c.Request.Context(), c.Param("app_id"), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"deleted_count": removed,
		"days":          days,
	})
}

type createAppRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Platform    string `json:"platform"`
	AppID       string `json:"app_id"`
}

// CreateApp handles POST /api/apps.
func (h *DashboardHandler) CreateApp(c *gin.Context) {
	var req createAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid JSON",
			"status": http.StatusBadRequest,
		})
		return
	}

	app, err := h.apps.CreateApp(c.Request.Context(), req.Name, req.Description, req.Platform, req.AppID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// ListApps handles GET /api/apps.
func (h *DashboardHandler) ListApps(c *gin.Context) {
	apps, err := h.apps.ListApps(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"apps":  apps,
		"count": len(apps),
	})
}

// GetApp handles GET /api/apps/:app_id.
func (h *DashboardHandler) GetApp(c *gin.Context) {
	app, err := h.apps.GetApp(c.Request.Context(), c.Param("app_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}
