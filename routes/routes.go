package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"field-booking/controllers"
	"field-booking/middleware"
)

// SetupRouter registers the field and reservation routes.
func SetupRouter(
	fc *controllers.FieldController,
	rc *controllers.ReservationController,
	origins []string,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		fields := api.Group("/fields")
		{
			fields.GET("", fc.GetFields)
			fields.GET("/:id", fc.GetField)
			fields.GET("/:id/availability", fc.GetAvailability)
		}

		reservations := api.Group("/reservations")
		{
			reservations.GET("", rc.ListReservations)
			reservations.POST("", rc.CreateReservation)
			reservations.GET("/:id", rc.GetReservation)
			reservations.POST("/:id/pay", rc.PayReservation)
			reservations.POST("/:id/cancel", rc.CancelReservation)
			reservations.POST("/:id/complete", rc.CompleteReservation)
			reservations.POST("/:id/reschedule/proposal", rc.ProposeReschedule)
			reservations.POST("/:id/reschedule", rc.ConfirmReschedule)
			reservations.GET("/:id/reschedules", rc.RescheduleHistory)
		}
	}

	return r
}
