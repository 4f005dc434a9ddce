package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lanternworks/scopeline/internal/llm"
	"github.com/lanternworks/scopeline/internal/negotiation"
)

// writeError maps domain errors onto the JSON error envelope. Anything
// unrecognized becomes a logged 500 with a generic message so internal
// detail never leaks to clients.
func writeError(c *gin.Context, err error) {
	var verr *negotiation.ValidationError
	var rated *llm.RateLimitedError
	var overloaded *llm.OverloadedError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": verr.Errs,
		})
	case errors.Is(err, negotiation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, negotiation.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, negotiation.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "A change order already exists for this proposal"})
	case errors.As(err, &rated):
		if rated.RetryAfter > 0 {
			c.Header("Retry-After", fmt.Sprintf("%d", rated.RetryAfter))
		}
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "AI service is busy. Please try again shortly."})
	case errors.As(err, &overloaded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI service is temporarily overloaded. Please try again."})
	default:
		log.Printf("api: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
