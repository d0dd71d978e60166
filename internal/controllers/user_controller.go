package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seatrace/backend/internal/models"
	"gorm.io/gorm"
)

type UserController struct {
	db *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

// GetCurrentUser returns the authenticated user's profile.
func (uc *UserController) GetCurrentUser(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	if err := uc.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetShipments lists the authenticated client's shipments with their
// tracking state.
func (uc *UserController) GetShipments(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var shipments []models.Shipment
	if err := uc.db.Preload("Tracking").Where("client_id = ?", userID).Find(&shipments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load shipments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shipments": shipments})
}
