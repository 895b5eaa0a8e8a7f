package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/coach-core/internal/service"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Program  service.ProgramService
	Profile  service.ProfileService
	Calendar service.CalendarService
	Session  service.SessionService
	Action   service.ActionService
	Stats    service.StatsService
	Review   service.ReviewService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, svc Services) {
	programHandler := NewProgramHandler(svc.Program, svc.Profile, svc.Calendar)
	calendarHandler := NewCalendarHandler(svc.Calendar, svc.Program)
	sessionHandler := NewSessionHandler(svc.Session, svc.Action)
	reviewHandler := NewReviewHandler(svc.Review, svc.Stats)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	protected := router.Group("/api/v1")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, ok := currentUser(c)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex()})
		})

		programs := protected.Group("/programs")
		{
			programs.GET("/active", programHandler.GetActiveProgram)
			programs.GET("/history", programHandler.GetProgramHistory)
			programs.POST("", programHandler.SaveProgram)
			programs.POST("/parse", programHandler.ParseProgram)
		}
		protected.GET("/weights-profile", programHandler.GetWeightsProfile)

		calendar := protected.Group("/calendar")
		{
			calendar.GET("/upcoming", calendarHandler.GetUpcoming)
			calendar.POST("/regenerate", calendarHandler.Regenerate)
			calendar.POST("/catch-up", calendarHandler.CatchUp)
		}

		sessions := protected.Group("/sessions")
		{
			sessions.POST("", sessionHandler.StartSession)
			sessions.GET("/:id/instance", sessionHandler.GetInstance)
			sessions.POST("/:id/actions", sessionHandler.ApplyAction)
			sessions.POST("/:id/exercises/:index/commands", sessionHandler.RecordCommand)
			sessions.POST("/:id/events", sessionHandler.LogEvent)
			sessions.GET("/:id/states", sessionHandler.GetStates)
			sessions.POST("/:id/complete", sessionHandler.CompleteSession)
			sessions.GET("/:id/stats", sessionHandler.GetStats)
		}

		protected.GET("/stats/weekly", reviewHandler.GetWeeklyStats)

		reviews := protected.Group("/reviews")
		{
			reviews.POST("/weekly", reviewHandler.RunWeeklyReview)
			reviews.GET("/runs", reviewHandler.ListRuns)
		}
	}
}
