package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"

	"github.com/jhoicas/almacen-api/internal/application/dto"
)

// NewRateLimiter construye el limitador a partir de un formato ulule ("120-M", "10-S").
// El store puede ser en memoria o Redis (compartido entre réplicas).
func NewRateLimiter(formatted string, store limiter.Store) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	return limiter.New(store, rate), nil
}

// RateLimit limita por usuario autenticado (o por IP si aún no hay usuario).
// Si el store falla se deja pasar la petición y se registra.
func RateLimit(l *limiter.Limiter, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := "ip:" + c.IP()
		if uid := GetUserID(c); uid != "" {
			key = "user:" + uid
		}
		lc, err := l.Get(c.UserContext(), key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limiter no disponible")
			return c.Next()
		}
		c.Set("X-RateLimit-Limit", strconv.FormatInt(lc.Limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(lc.Remaining, 10))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(lc.Reset, 10))
		if lc.Reached {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "demasiadas peticiones, intente más tarde"})
		}
		return c.Next()
	}
}
