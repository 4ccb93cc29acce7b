package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tap-rating-bot/internal/application/usecases"
	"tap-rating-bot/internal/logger"
)

// Options configures the HTTP front end
type Options struct {
	// Prefix for the users resource, e.g. /api/v1
	Prefix      string
	CORSOrigins []string
}

// NewRouter builds the gin engine with middleware and every route
func NewRouter(users *usecases.UserUseCase, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(RequestID())
	router.Use(Logger())
	router.Use(Recovery())
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))

	router.GET("/health", health)
	router.GET("/ready", ready(users))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group(opts.Prefix)
	NewUserHandler(users).RegisterRoutes(v1)

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", requestIDHeader}
	config.ExposeHeaders = []string{requestIDHeader}

	for _, origin := range origins {
		if origin == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	if len(origins) == 0 {
		config.AllowAllOrigins = true
		return config
	}
	config.AllowOrigins = origins
	return config
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ready reports 503 until the user store answers a ping
func ready(users *usecases.UserUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := users.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("Readiness check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
