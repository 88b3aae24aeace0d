package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/itgelzam/portal/internal/ws"
)

// SetupRoutes configures all application routes and middleware.
func SetupRoutes(router *gin.Engine, env *Env, corsOrigin string) {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	if corsOrigin == "" {
		corsOrigin = "*" // Default to allow all for local dev
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// --- Rate Limiter Setup ---
	limiter := NewIPRateLimiter(rate.Limit(rateLimitRPS), rateLimitBurst)
	go func() {
		for {
			time.Sleep(10 * time.Minute)
			limiter.mu.Lock()
			for ip, v := range limiter.visitors {
				if v.Allow() {
					// Token available means the visitor went quiet; drop it.
					delete(limiter.visitors, ip)
				}
			}
			limiter.mu.Unlock()
		}
	}()

	api := router.Group("/api")
	{
		// Auth
		api.POST("/auth/register", env.Register)
		api.POST("/auth/login", env.Login)
		api.POST("/auth/reset-password", env.ResetPassword)
		api.POST("/auth/update-password", env.UpdatePassword)
		api.GET("/auth/me", env.AuthRequired(), env.Me)

		// News + article comments
		api.GET("/news", env.ListNews)
		api.GET("/news/:id", env.GetNews)
		api.GET("/news/:id/comments", env.ListNewsComments)
		api.POST("/news/:id/comments", env.AuthRequired(), env.CreateNewsComment)

		// Admin console
		admin := api.Group("", env.AdminAuthMiddleware())
		admin.POST("/news", env.CreateNews)
		admin.PUT("/news/:id", env.UpdateNews)
		admin.DELETE("/news/:id", env.DeleteNews)

		// Testimonies feed
		api.GET("/testimonies", env.ListTestimonies)
		api.POST("/testimonies", env.AuthRequired(), RateLimitMiddleware(limiter), env.CreateTestimony)
		api.DELETE("/testimonies/:id", env.AuthRequired(), env.DeleteTestimony)
		api.POST("/testimonies/:id/like", env.AuthRequired(), env.LikeTestimony)
		api.DELETE("/testimonies/:id/like", env.AuthRequired(), env.UnlikeTestimony)
		api.GET("/testimonies/:id/likes", env.ListTestimonyLikes)
		api.GET("/testimonies/:id/comments", env.ListTestimonyComments)
		api.POST("/testimonies/:id/comments", env.AuthRequired(), env.CreateTestimonyComment)
		api.DELETE("/testimony-comments/:id", env.AuthRequired(), env.DeleteTestimonyComment)
		api.GET("/me/likes", env.AuthRequired(), env.ListMyLikes)

		// Media
		api.POST("/upload", env.AuthRequired(), env.Upload)
	}

	// --- WebSocket Route ---
	if env.Hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			ws.ServeWs(env.Hub, c.Writer, c.Request)
		})
	}

	// Uploaded media is served straight off disk.
	if env.Store != nil {
		router.Static("/media", env.Store.Dir())
	}
}
