package routes

import (
	"net/http"
	"time"

	"github.com/dwnGnL/adminConsole/pkg/pretty"
	"github.com/gin-gonic/gin"
)

// Health pings the database.
func Health(c *gin.Context) {
	sqlDB, err := DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		pretty.LoglnError("health: ping:", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"connected": false, "error": "DB Connection Failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true, "time": time.Now().UTC().Format(time.RFC3339)})
}
