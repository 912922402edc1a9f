package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"mdt-app-server/internal/config"
	"mdt-app-server/internal/handlers"
	"mdt-app-server/internal/mailer"
	"mdt-app-server/internal/middleware"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Initialize handlers
	m := mailer.New(cfg.Mailer)
	authHandler := handlers.NewAuthHandler(db, cfg, m)
	userHandler := handlers.NewUserHandler(db)
	patientHandler := handlers.NewPatientHandler(db)
	meetingHandler := handlers.NewMeetingHandler(db)
	caseHandler := handlers.NewCaseHandler(db)
	actionHandler := handlers.NewActionHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		// Unconfirmed users can manage their own session and password,
		// nothing else.
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/change-password", authHandler.ChangePassword)
		}

		// Everything clinical requires a confirmed account.
		confirmed := private.Group("")
		confirmed.Use(middleware.ConfirmedRequired())
		{
			userRoutes := confirmed.Group("/users")
			{
				// Consultant list feeds the case form dropdowns.
				userRoutes.GET("/consultants", userHandler.GetConsultants)

				adminRoutes := userRoutes.Group("")
				adminRoutes.Use(middleware.AdminRequired())
				{
					adminRoutes.POST("", userHandler.CreateUser)
					adminRoutes.GET("", userHandler.GetUsers)
					adminRoutes.GET("/:id", userHandler.GetUserByID)
					adminRoutes.PUT("/:id", userHandler.UpdateUser)
					adminRoutes.PATCH("/:id/confirm", userHandler.ConfirmUser)
					adminRoutes.DELETE("/:id", userHandler.DeleteUser)
				}
			}

			confirmed.POST("/auth/reset-password", middleware.AdminRequired(), authHandler.ResetPassword)

			patientRoutes := confirmed.Group("/patients")
			{
				patientRoutes.POST("", patientHandler.CreatePatient)
				patientRoutes.GET("", patientHandler.GetPatients)
				patientRoutes.GET("/:id", patientHandler.GetPatientByID)
				patientRoutes.PUT("/:id", patientHandler.UpdatePatient)
			}

			meetingRoutes := confirmed.Group("/meetings")
			{
				meetingRoutes.POST("", meetingHandler.CreateMeeting)
				meetingRoutes.GET("", meetingHandler.GetMeetings)
				meetingRoutes.GET("/candidates", meetingHandler.GetCandidateMeetings)
				meetingRoutes.GET("/:id", meetingHandler.GetMeetingByID)
				meetingRoutes.PUT("/:id", meetingHandler.UpdateMeeting)
				meetingRoutes.POST("/:id/push-cases", meetingHandler.PushCases)
				meetingRoutes.GET("/:id/progress", meetingHandler.GetProgress)
				meetingRoutes.GET("/:id/attendees", meetingHandler.GetAttendees)
				meetingRoutes.PUT("/:id/attendees", meetingHandler.SetAttendees)
			}

			caseRoutes := confirmed.Group("/cases")
			{
				caseRoutes.POST("", caseHandler.CreateCase)
				caseRoutes.GET("", caseHandler.GetCases)
				caseRoutes.GET("/:id", caseHandler.GetCaseByID)
				caseRoutes.PUT("/:id", caseHandler.UpdateCase)
				caseRoutes.DELETE("/:id", caseHandler.DeleteCase)
			}

			actionRoutes := confirmed.Group("/actions")
			{
				actionRoutes.GET("", actionHandler.GetActions)
				actionRoutes.PATCH("/:id/complete", actionHandler.CompleteAction)
				actionRoutes.PUT("/:id", actionHandler.UpdateAction)
				actionRoutes.DELETE("/:id", actionHandler.DeleteAction)
			}
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
