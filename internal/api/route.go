package api

import (
	"trackforge/internal/api/middleware"
	"trackforge/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		profileGroup := apiGroup.Group("/profiles")
		{
			profileGroup.POST("", group.ProfileHandler.CreateProfile)
			profileGroup.POST("/:username/refresh", group.ProfileHandler.RefreshProfile)
			profileGroup.GET("/:username/reels", group.ProfileHandler.ListReels)
			profileGroup.GET("/tracking/:tracking_id", group.ProfileHandler.GetSession)
			profileGroup.GET("/tracking/:tracking_id/reels/:shortcode/history", group.ProfileHandler.GetReelHistory)
		}

		queueGroup := apiGroup.Group("/queue")
		{
			queueGroup.GET("/status", group.QueueHandler.Status)
			queueGroup.POST("/process", group.QueueHandler.Process)
		}

		cronGroup := apiGroup.Group("/cron")
		{
			cronGroup.POST("/trigger", group.CronHandler.Trigger)
			cronGroup.GET("/schedule", group.CronHandler.Schedule)
		}
	}

	return r
}
