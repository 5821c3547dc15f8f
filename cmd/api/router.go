package api

import (
	"net/http"

	"prepmail-backend/internal/auth/delivery"
	authUsecase "prepmail-backend/internal/auth/usecase"
	interviewDelivery "prepmail-backend/internal/interview/delivery"
	syncDelivery "prepmail-backend/internal/sync/delivery"
	taskDelivery "prepmail-backend/internal/task/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, taskHandler *taskDelivery.TaskHandler, prepHandler *interviewDelivery.PrepHandler, syncHandler *syncDelivery.SyncHandler) {
	authHandler := delivery.NewAuthHandler(authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/google", authHandler.GoogleSignIn)
			auth.POST("/imap", authHandler.IMAPLogin)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(authUsecase), authHandler.Me)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(delivery.AuthMiddleware(authUsecase))
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", authHandler.UnregisterFCMToken)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(delivery.AuthMiddleware(authUsecase))
		{
			tasks.GET("", taskHandler.GetTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTaskByID)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.PATCH("/:id/status", taskHandler.UpdateTaskStatus)

			// Interview prep rides on the task routes
			if prepHandler != nil {
				tasks.POST("/:id/interview-prep", prepHandler.GeneratePrep)
				tasks.GET("/:id/interview-prep", prepHandler.GetPrep)
				tasks.PATCH("/:id/interview-prep/schedule", prepHandler.SchedulePrep)
			}
		}

		// Sync routes (protected)
		if syncHandler != nil {
			sync := api.Group("/sync")
			sync.Use(delivery.AuthMiddleware(authUsecase))
			{
				sync.POST("/start", syncHandler.StartSync)
				sync.GET("/status", syncHandler.GetStatus)
			}
		}
	}
}
