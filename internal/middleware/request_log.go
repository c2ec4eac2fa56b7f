package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 请求日志中间件 ====================

// RequestLog 记录每个请求的方法、路径、状态码与耗时
func RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start).Round(time.Millisecond)
		status := c.Writer.Status()
		if len(c.Errors) > 0 {
			log.Printf("[HTTP] %s %s -> %d (%v) err=%s",
				c.Request.Method, c.Request.URL.Path, status, latency, c.Errors.String())
			return
		}
		log.Printf("[HTTP] %s %s -> %d (%v)",
			c.Request.Method, c.Request.URL.Path, status, latency)
	}
}
