package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ugurkiymetli/secret-santa/internal/config"
	"github.com/ugurkiymetli/secret-santa/internal/handler/middleware"
	"github.com/ugurkiymetli/secret-santa/internal/model"
	"github.com/ugurkiymetli/secret-santa/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	gate service.AuthorizationGate,
	authHandler *AuthHandler,
	accountHandler *AccountHandler,
	organizerHandler *OrganizerHandler,
	participantHandler *ParticipantHandler,
	superAdminHandler *SuperAdminHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/claim", authHandler.Claim)
	}

	// Session optional: the gate allows bootstrap creation without one
	api.POST("/accounts", accountHandler.Create)

	// Any signed-in account
	session := api.Group("")
	session.Use(middleware.SessionAuth(gate))
	{
		session.POST("/auth/logout", authHandler.Logout)
		session.GET("/auth/me", authHandler.Me)
	}

	organizer := api.Group("/organizer")
	organizer.Use(middleware.SessionAuth(gate), middleware.RequireRole(model.RoleOrganizer))
	{
		organizer.GET("/participants", organizerHandler.ListParticipants)
		organizer.DELETE("/participants/:id", organizerHandler.DeleteParticipant)

		organizer.GET("/events", organizerHandler.ListEvents)
		organizer.POST("/events", organizerHandler.CreateEvent)
		organizer.GET("/events/:id", organizerHandler.GetEvent)
		organizer.PATCH("/events/:id", organizerHandler.UpdateEvent)
		organizer.DELETE("/events/:id", organizerHandler.DeleteEvent)
		organizer.POST("/events/:id/assign", organizerHandler.Assign)
		organizer.POST("/events/:id/complete", organizerHandler.Complete)
	}

	participant := api.Group("/me")
	participant.Use(middleware.SessionAuth(gate), middleware.RequireRole(model.RoleParticipant))
	{
		participant.GET("/events", participantHandler.ListEvents)
		participant.POST("/events/:id/reveal", participantHandler.Reveal)
	}

	admin := api.Group("/super-admin")
	admin.Use(middleware.SessionAuth(gate), middleware.RequireRole(model.RoleSuperAdmin))
	{
		admin.GET("/organizers", superAdminHandler.ListOrganizers)
		admin.GET("/participants", superAdminHandler.ListParticipants)
		admin.GET("/events", superAdminHandler.ListEvents)
		admin.DELETE("/organizers/:id", superAdminHandler.DeleteOrganizer)
	}

	return r
}
