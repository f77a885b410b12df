package catalog

import (
	"bytes"
	"errors"

	"backend-cityguide/internal/interests"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, interestSvc *interests.Service, authMiddleware fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		pois, err := svc.ListPOIs(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(pois)
	})

	r.Get("/count", func(c *fiber.Ctx) error {
		n, err := svc.CountPOIs(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"count": n})
	})

	r.Post("/import", authMiddleware, func(c *fiber.Ctx) error {
		sum, err := svc.ImportCSV(c.Context(), bytes.NewReader(c.Body()))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(sum)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		poi, err := svc.GetPOI(c.Context(), c.Params("id"))
		if errors.Is(err, ErrPOINotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		if userID, ok := c.Locals("user_id").(string); ok && userID != "" && interestSvc != nil {
			tags, err := interestSvc.List(c.Context(), userID)
			if err == nil {
				poi.Description = interests.Personalize(poi.Description, tags)
			}
		}
		return c.JSON(poi)
	})
}
