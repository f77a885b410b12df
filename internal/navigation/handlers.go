package navigation

import (
	"errors"

	"backend-cityguide/internal/catalog"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/positions", authMiddleware, func(c *fiber.Ctx) error {
		var req PositionReport
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		out, err := svc.ReportPosition(c.Context(), userID(c), req.Lat, req.Lon, req.Live)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(out)
	})

	r.Get("/navigation/session", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := svc.GetSession(c.Context(), userID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(sess)
	})

	r.Post("/navigation/target", authMiddleware, func(c *fiber.Ctx) error {
		var req TargetRequest
		if err := c.BodyParser(&req); err != nil || req.POIID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "poi_id required")
		}
		poi, err := svc.SetTarget(c.Context(), userID(c), req.POIID)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(poi)
	})

	r.Delete("/navigation/target", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.ClearTarget(c.Context(), userID(c)); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/visits", authMiddleware, func(c *fiber.Ctx) error {
		var req TargetRequest
		if err := c.BodyParser(&req); err != nil || req.POIID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "poi_id required")
		}
		newTitle, err := svc.RecordVisit(c.Context(), userID(c), req.POIID)
		if err != nil {
			return mapError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"new_title": newTitle})
	})

	r.Delete("/profile", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.ResetUser(c.Context(), userID(c)); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidCoordinates):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrPOINotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
