package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Allono07/live-event-validation-netcore/internal/service"
)

// RuleHandler manages validation rule uploads and listings.
type RuleHandler struct {
	rules  *service.RuleService
	logger *zap.Logger
}

func NewRuleHandler(rules *service.RuleService, logger *zap.Logger) *RuleHandler {
	return &RuleHandler{rules: rules, logger: logger}
}

// UploadRules handles POST /api/apps/:app_id/rules. The rule CSV may come
// as a multipart file under "csv_file" or as the raw request body.
func (h *RuleHandler) UploadRules(c *gin.Context) {
	appID := c.Param("app_id")

	var reader io.Reader
	if file, err := c.FormFile("csv_file"); err == nil {
		if !strings.HasSuffix(strings.ToLower(file.Filename), ".csv") {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "File must be CSV",
				"status": http.StatusBadRequest,
			})
			return
		}
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "Failed to read uploaded file",
				"status": http.StatusBadRequest,
			})
			return
		}
		defer f.Close()
		reader = f
	} else {
		reader = c.Request.Body
	}

	result, err := h.rules.UploadRules(c.Request.Context(), appID, reader)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"rules_count":   result.RulesCount,
		"deleted_count": result.DeletedCount,
		"skipped_rows":  result.SkippedRows,
		"event_names":   result.EventNames,
	})
}

// ListRules handles GET /api/apps/:app_id/rules.
func (h *RuleHandler) ListRules(c *gin.Context) {
	appID := c.Param("app_id")

	fieldRules, err := h.rules.AppRules(c.Request.Context(), appID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rules": fieldRules,
		"count": len(fieldRules),
	})
}
