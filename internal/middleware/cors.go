package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS middleware to handle cross-origin requests
func CORS() gin.HandlerFunc {
	// Allow requests from both localhost and the Docker frontend container
	return cors.New(cors.Config{
		AllowOrigins: []string{"http://localhost:5173", "http://frontend:5173"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type", "Authorization", "Accept", "Origin", "User-Agent",
			"Cache-Control", "Keep-Alive", "X-Requested-With", "Pragma", "X-API-Version",
		},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	})
}
