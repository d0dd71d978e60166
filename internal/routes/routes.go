package routes

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/seatrace/backend/internal/controllers"
	"github.com/seatrace/backend/internal/middleware"
	"github.com/seatrace/backend/internal/services"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes and starts the background
// scheduler.
func SetupRoutes(r *gin.Engine, db *gorm.DB, stopChan <-chan struct{}) *services.Scheduler {
	thresholds := services.ThresholdsFromEnv()

	llmService := services.NewLLMService(
		os.Getenv("OLLAMA_URL"),
		os.Getenv("OLLAMA_MODEL"),
	)

	delayService := services.NewDelayService(db, thresholds)
	resolutionService := services.NewResolutionService(db, llmService, thresholds)
	riskService := services.NewRiskService(db, thresholds)

	scheduler := services.NewScheduler(delayService, resolutionService, stopChan)
	scheduler.Start()

	authController := controllers.NewAuthController(db)
	userController := controllers.NewUserController(db)
	delayController := controllers.NewDelayController(db, delayService, riskService)
	incidentController := controllers.NewIncidentController(db, delayService, resolutionService, riskService)
	statsController := controllers.NewStatsController(db, riskService)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authController.Login)
			auth.POST("/register", authController.Register)
		}

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			users := protected.Group("/users")
			{
				users.GET("/me", userController.GetCurrentUser)
			}

			shipments := protected.Group("/shipments")
			{
				shipments.GET("", userController.GetShipments)
				shipments.GET("/:id/delay", delayController.GetShipmentDelay)
				shipments.GET("/:id/delay-total", delayController.GetTotalDelay)
				shipments.GET("/:id/risk", delayController.GetShipmentRisk)
			}

			incidents := protected.Group("/incidents")
			{
				incidents.GET("", incidentController.GetIncidents)
				incidents.GET("/:id", incidentController.GetIncident)
			}

			stats := protected.Group("/statistics")
			{
				stats.GET("/shipments", statsController.GetShipmentStatistics)
				stats.GET("/map", statsController.GetMapData)
			}

			admin := protected.Group("/admin")
			{
				admin.POST("/reconciliation/run", incidentController.TriggerReconciliation)
				admin.POST("/resolution/run", incidentController.TriggerResolution)
			}
		}
	}

	return scheduler
}
