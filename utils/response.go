package utils

import "github.com/gin-gonic/gin"

func JSONSuccess(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"success": true, "data": data})
}
