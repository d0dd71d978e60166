package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/seatrace/backend/internal/services"
	"gorm.io/gorm"
)

type DelayController struct {
	db           *gorm.DB
	delayService *services.DelayService
	riskService  *services.RiskService
}

func NewDelayController(db *gorm.DB, delayService *services.DelayService, riskService *services.RiskService) *DelayController {
	return &DelayController{db: db, delayService: delayService, riskService: riskService}
}

// GetShipmentDelay returns the shipment's delay document.
func (dc *DelayController) GetShipmentDelay(c *gin.Context) {
	shipmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shipment id"})
		return
	}

	delay, err := dc.delayService.GetShipmentDelay(uint(shipmentID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load delay record"})
		return
	}
	if delay == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No delay record for shipment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"delay": delay})
}

// GetTotalDelay returns the aggregated delay days for a shipment.
func (dc *DelayController) GetTotalDelay(c *gin.Context) {
	shipmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shipment id"})
		return
	}

	total, err := dc.delayService.TotalDelayDays(uint(shipmentID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate delay"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shipmentId":     shipmentID,
		"totalDelayDays": total,
	})
}

// GetShipmentRisk classifies the shipment's current risk tier.
func (dc *DelayController) GetShipmentRisk(c *gin.Context) {
	shipmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shipment id"})
		return
	}

	risk, err := dc.riskService.ClassifyShipment(uint(shipmentID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to classify shipment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"risk": risk})
}
