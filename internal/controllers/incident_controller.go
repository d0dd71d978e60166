package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/seatrace/backend/internal/logger"
	"github.com/seatrace/backend/internal/models"
	"github.com/seatrace/backend/internal/services"
	"gorm.io/gorm"
)

type IncidentController struct {
	db                *gorm.DB
	delayService      *services.DelayService
	resolutionService *services.ResolutionService
	riskService       *services.RiskService
}

func NewIncidentController(db *gorm.DB, delayService *services.DelayService, resolutionService *services.ResolutionService, riskService *services.RiskService) *IncidentController {
	return &IncidentController{
		db:                db,
		delayService:      delayService,
		resolutionService: resolutionService,
		riskService:       riskService,
	}
}

// GetIncidents lists incidents, optionally filtered by status.
func (ic *IncidentController) GetIncidents(c *gin.Context) {
	query := ic.db.Preload("SourceNews").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	query = query.Offset((page - 1) * limit).Limit(limit)

	var incidents []models.Incident
	if err := query.Find(&incidents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load incidents"})
		return
	}

	items := make([]gin.H, 0, len(incidents))
	for i := range incidents {
		items = append(items, gin.H{
			"incident":      incidents[i],
			"severityLabel": ic.riskService.SeverityLabel(incidents[i].Severity),
		})
	}

	c.JSON(http.StatusOK, gin.H{"incidents": items})
}

// GetIncident returns one incident with its source news.
func (ic *IncidentController) GetIncident(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident id"})
		return
	}

	var incident models.Incident
	if err := ic.db.Preload("SourceNews").First(&incident, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Incident not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load incident"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"incident":      incident,
		"severityLabel": ic.riskService.SeverityLabel(incident.Severity),
	})
}

// TriggerReconciliation kicks off one reconciliation batch in the
// background. A run already in flight is reported, not queued.
func (ic *IncidentController) TriggerReconciliation(c *gin.Context) {
	go func() {
		if err := ic.delayService.RunReconciliation(context.Background()); err != nil && !errors.Is(err, services.ErrRunInFlight) {
			logger.Error("Manual reconciliation run failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Reconciliation run started"})
}

// TriggerResolution kicks off one resolution batch in the background.
func (ic *IncidentController) TriggerResolution(c *gin.Context) {
	go func() {
		if err := ic.resolutionService.ResolveIncidents(context.Background()); err != nil && !errors.Is(err, services.ErrRunInFlight) {
			logger.Error("Manual resolution run failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Resolution run started"})
}
