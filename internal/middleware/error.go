package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler logs errors attached to the context and, when a handler
// set errors without writing a body, returns a uniform JSON error
// response. Panics are turned into a 500 instead of killing the worker.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Error: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		for _, e := range c.Errors {
			log.Printf("Error: %v", e.Err)
		}

		if !c.Writer.Written() {
			status := c.Writer.Status()
			if status < 400 {
				status = http.StatusInternalServerError
			}
			c.JSON(status, ErrorResponse{Error: c.Errors.Last().Error()})
		}
	}
}
