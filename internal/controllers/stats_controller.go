package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seatrace/backend/internal/services"
	"gorm.io/gorm"
)

type StatsController struct {
	db          *gorm.DB
	riskService *services.RiskService
}

func NewStatsController(db *gorm.DB, riskService *services.RiskService) *StatsController {
	return &StatsController{db: db, riskService: riskService}
}

// GetShipmentStatistics returns the dashboard counters for the
// authenticated client's shipments.
func (sc *StatsController) GetShipmentStatistics(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	stats, err := sc.riskService.GetShipmentStatistics(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// GetMapData returns marker groups for the map view of the authenticated
// client's delayed shipments.
func (sc *StatsController) GetMapData(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	data, err := sc.riskService.GetMapData(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build map data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}
