package controller

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github/itish2003/meetingcanvas/models"
)

const (
	limiterIdleTTL   = 10 * time.Minute
	limiterSweepSize = 1024
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit allows each client IP limit requests per second with the given
// burst and answers 429 beyond that.
func RateLimit(limit rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		clients = make(map[string]*clientLimiter)
	)

	return func(c *gin.Context) {
		now := time.Now()
		ip := c.ClientIP()

		mu.Lock()
		cl, ok := clients[ip]
		if !ok {
			if len(clients) >= limiterSweepSize {
				for key, old := range clients {
					if now.Sub(old.lastSeen) > limiterIdleTTL {
						delete(clients, key)
					}
				}
			}
			cl = &clientLimiter{limiter: rate.NewLimiter(limit, burst)}
			clients[ip] = cl
		}
		cl.lastSeen = now
		allowed := cl.limiter.AllowN(now, 1)
		mu.Unlock()

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error: "Too many extraction requests, try again shortly",
				Kind:  "rate_limited",
			})
			return
		}
		c.Next()
	}
}
