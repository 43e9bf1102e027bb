package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/dental-clinic/internal/audit"
	"github.com/BruksfildServices01/dental-clinic/internal/config"
	"github.com/BruksfildServices01/dental-clinic/internal/handlers"
	"github.com/BruksfildServices01/dental-clinic/internal/middleware"
	"github.com/BruksfildServices01/dental-clinic/internal/models"
	ucAppointment "github.com/BruksfildServices01/dental-clinic/internal/usecase/appointment"
)

// Deps is everything the HTTP layer needs, built once in main.
type Deps struct {
	Config       *config.Config
	Log          *zap.Logger
	Appointments ucAppointment.Deps
	Users        handlers.UserStore
	AuditLogs    audit.Store

	// MetricsHandler defaults to the global prometheus registry.
	MetricsHandler http.Handler
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORSMiddleware(d.Config.CORSOrigins))

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.Users, d.Config)
	meHandler := handlers.NewMeHandler(d.Users)
	appointmentHandler := handlers.NewAppointmentHandler(d.Appointments)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.AuditLogs)

	// ======================================================
	// OPS
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	metricsHandler := d.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(metricsHandler))

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// AUTHENTICATED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(d.Config))
		{
			anyone := middleware.RequireRole(models.RoleAdmin, models.RoleStaff, models.RoleDoctor)
			desk := middleware.RequireRole(models.RoleAdmin, models.RoleStaff)

			secured.GET("/me", meHandler.GetMe)

			secured.GET("/branches/:id/free-slots", anyone, appointmentHandler.FreeSlots)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.GET("/appointments", anyone, appointmentHandler.List)
			secured.GET("/appointments/:id", anyone, appointmentHandler.Get)
			secured.GET("/appointments/:id/ledger", anyone, appointmentHandler.Ledger)

			secured.POST("/appointments", desk, appointmentHandler.Create)
			secured.PATCH("/appointments/:id/accept", anyone, appointmentHandler.Accept)
			secured.PATCH("/appointments/:id/reject", desk, appointmentHandler.Reject)
			secured.PATCH("/appointments/:id/cancel", desk, appointmentHandler.Cancel)

			secured.POST("/appointments/:id/reschedule", desk, appointmentHandler.RequestReschedule)
			secured.PATCH("/appointments/:id/reschedule/approve", desk, appointmentHandler.ApproveReschedule)
			secured.PATCH("/appointments/:id/reschedule/reject", desk, appointmentHandler.RejectReschedule)

			secured.POST("/appointments/:id/complete", anyone, appointmentHandler.Complete)

			secured.GET("/audit-logs", middleware.RequireRole(models.RoleAdmin), auditLogsHandler.List)
		}
	}
}
