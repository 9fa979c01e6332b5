package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/eventdesk/backend-go/internal/api/handlers"
	"github.com/andresuchdata/eventdesk/backend-go/internal/api/middleware"
	"github.com/andresuchdata/eventdesk/backend-go/internal/config"
	"github.com/andresuchdata/eventdesk/backend-go/internal/domain"
	"github.com/andresuchdata/eventdesk/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	DashboardService *service.DashboardService
}

func NewRouter(services *Services, serverCfg config.ServerConfig, authCfg config.AuthConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(serverCfg.AllowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1", middleware.Auth(authCfg.JWTSecret, authCfg.Issuer))

	if services != nil && services.DashboardService != nil {
		h := handlers.NewDashboardHandler(services.DashboardService)

		for _, role := range []domain.Role{domain.RolePlanner, domain.RoleVendor} {
			own := apiGroup.Group("/"+string(role)+"/dashboard", middleware.Scope(role), middleware.RequireRole(role))
			{
				own.GET("", h.GetDashboard)
				own.POST("/items", h.AddItem)
				own.PATCH("/items/:itemId/status", h.SetItemStatus)
				own.POST("/items/:itemId/payments", h.AddPayment)
				own.PATCH("/notifications/:notificationId/read", h.MarkNotificationRead)
				if role == domain.RolePlanner {
					own.POST("/items/:itemId/tasks", h.AddTask)
					own.PATCH("/items/:itemId/tasks/:taskId", h.SetTaskStatus)
				}
			}

			public := apiGroup.Group("/"+string(role)+"s", middleware.Scope(role))
			{
				public.GET("/top", h.TopRated)
				public.POST("/:ownerId/ratings", middleware.RequireRole(domain.RoleClient), h.Rate)
				public.POST("/:ownerId/notifications", h.Notify)
			}
		}
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	cfg := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			cfg.AllowOrigins = nil
			cfg.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			cfg.AllowOrigins = normalizedOrigins
		}
	}
	return cfg
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
