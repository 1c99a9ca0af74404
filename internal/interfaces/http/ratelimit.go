package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	limiterCacheSize = 10000
	limiterIdleTTL   = 10 * time.Minute
)

// IPRateLimiter token bucket por IP para las rutas públicas. Cada acceso renueva el TTL
// del limitador; solo expiran las IPs sin tráfico durante limiterIdleTTL.
type IPRateLimiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

// NewIPRateLimiter construye el limitador. rps <= 0 deshabilita el límite.
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return newIPRateLimiter(rps, burst, limiterIdleTTL)
}

func newIPRateLimiter(rps float64, burst int, idleTTL time.Duration) *IPRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &IPRateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](limiterCacheSize, nil, idleTTL),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (rl *IPRateLimiter) limiter(key string) *rate.Limiter {
	l, ok := rl.limiters.Get(key)
	if !ok {
		// Dos peticiones simultáneas de la misma IP pueden crear dos limitadores; gana el último.
		l = rate.NewLimiter(rl.rate, rl.burst)
	}
	// Get no renueva la expiración; Add sí.
	rl.limiters.Add(key, l)
	return l
}

// Allow consume un token de la IP.
func (rl *IPRateLimiter) Allow(ip string) bool {
	if rl.rate <= 0 {
		return true
	}
	return rl.limiter(utils.CopyString(ip)).Allow()
}

// Handler middleware Fiber; responde 429 RATE_LIMITED al agotar los tokens.
func (rl *IPRateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.Allow(c.IP()) {
			retry := 1
			if rl.rate > 0 {
				if s := int(1 / float64(rl.rate)); s > 1 {
					retry = s
				}
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retry))
			return respond(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "demasiadas peticiones, intente más tarde")
		}
		return c.Next()
	}
}
