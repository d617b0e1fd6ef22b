package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Ping godoc
// @Summary      Ping del módulo de almacén
// @Tags         warehouse
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/warehouse/ping [get]
func Ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "module": "warehouse", "time": time.Now().UTC()})
}
