package middleware

import (
	"net/http"
	"sync"
	"time"

	"cantina/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Fixed-window rate limiting per client IP, kept in process memory. Good
// enough for a single-instance deployment; a multi-instance setup would move
// the counters to Redis.

type janela struct {
	count int
	until time.Time
}

type limiter struct {
	mu      sync.Mutex
	janelas map[string]*janela
	limit   int
	window  time.Duration
	msg     string
}

func newLimiter(limit int, window time.Duration, msg string) *limiter {
	l := &limiter{
		janelas: make(map[string]*janela),
		limit:   limit,
		window:  window,
		msg:     msg,
	}
	go l.purgeLoop()
	return l
}

func (l *limiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	j, ok := l.janelas[ip]
	if !ok || now.After(j.until) {
		j = &janela{until: now.Add(l.window)}
		l.janelas[ip] = j
	}
	j.count++
	return j.count <= l.limit, j.until
}

// purgeLoop drops expired windows so IPs that never return do not leak.
func (l *limiter) purgeLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		purged := 0
		for ip, j := range l.janelas {
			if now.After(j.until) {
				delete(l.janelas, ip)
				purged++
			}
		}
		remaining := len(l.janelas)
		l.mu.Unlock()

		if purged > 0 {
			log.Debug().
				Int("purged", purged).
				Int("remaining", remaining).
				Msg("rate limiter: janelas expiradas removidas")
		}
	}
}

func (l *limiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, until := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", until.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter caps login attempts at 20 per minute per IP, slowing down
// credential stuffing against the staff accounts.
func LoginRateLimiter() gin.HandlerFunc {
	return loginLimiter.handler()
}

// RateLimiter is the general API limiter applied to the whole router.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newLimiter(limit, window, "Muitas requisições. Tente novamente em instantes.").handler()
}

var loginLimiter = newLimiter(20, time.Minute, "Muitas tentativas de login. Tente novamente em 1 minuto.")
