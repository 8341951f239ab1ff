package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hilalbot/internal/repository"
	"hilalbot/internal/usecases"
)

type Handler struct {
	auth       *usecases.AuthUsecase
	stats      *usecases.StatsUsecase
	bots       *usecases.BotService
	dispatcher *usecases.Dispatcher
	channels   *repository.ChannelRepository
	posts      *repository.PostRepository
	uploadDir  string
}

func NewHandler(
	auth *usecases.AuthUsecase,
	stats *usecases.StatsUsecase,
	bots *usecases.BotService,
	dispatcher *usecases.Dispatcher,
	channels *repository.ChannelRepository,
	posts *repository.PostRepository,
	uploadDir string,
) *Handler {
	return &Handler{
		auth:       auth,
		stats:      stats,
		bots:       bots,
		dispatcher: dispatcher,
		channels:   channels,
		posts:      posts,
		uploadDir:  uploadDir,
	}
}

func SetupRoutes(r *gin.Engine, h *Handler, middleware *Middleware) {
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(MaxUploadBytes + 1<<20)) // uploads plus form overhead
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public Routes
	r.GET("/api/stats/public", h.GetPublicStats)
	r.Static("/uploads", h.uploadDir)

	// Public Auth Routes
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/telegram-login", h.TelegramLogin)
	}

	// Protected Admin Routes
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	api.Use(middleware.RateLimitPerUser(5, 10))
	{
		api.GET("/auth/profile", h.Profile)

		api.GET("/stats/dashboard", h.GetDashboard)
		api.GET("/stats/daily", h.GetDailyStats)
		api.GET("/stats/top-users", h.GetTopUsers)
		api.GET("/stats/recent", h.GetRecentActivity)

		api.GET("/channels", h.ListChannels)
		api.POST("/channels", h.CreateChannel)
		api.PUT("/channels/:id", h.UpdateChannel)
		api.DELETE("/channels/:id", h.DeleteChannel)

		api.GET("/posts", h.ListPosts)
		api.GET("/posts/stats", h.GetPostStats)
		api.POST("/posts", h.CreatePost)
		api.GET("/posts/:id", h.GetPost)
		api.PUT("/posts/:id", h.UpdatePost)
		api.DELETE("/posts/:id", h.DeletePost)
		api.POST("/posts/:id/send", h.SendPost)
		api.POST("/posts/:id/broadcast", h.BroadcastPost)
		api.POST("/posts/:id/schedule", h.SchedulePost)
		api.POST("/posts/upload", h.UploadMedia)
	}
}
