package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Liveness reports that the API is up. Always 200.
func Liveness(c *gin.Context) {
	c.String(http.StatusOK, "Onebox email aggregator API is running")
}
