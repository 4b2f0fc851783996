package rest

import (
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/health"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Health struct {
	Service health.IHealthUsecase
}

func InitRestHealth(app fiber.Router, service health.IHealthUsecase) Health {
	handler := Health{Service: service}

	group := app.Group("/health")
	group.Get("/status", handler.GetStatus)
	group.Get("/:entity", handler.GetEntityStatus)

	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	records, err := h.Service.GetStatus(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(utils.ResponseData{
			Status:  500,
			Code:    "INTERNAL_SERVER_ERROR",
			Message: err.Error(),
		})
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Health status retrieved",
		Results: records,
	})
}

// GetEntityStatus returns one record when ?id= is given, otherwise every
// record of that entity type.
func (h *Health) GetEntityStatus(c *fiber.Ctx) error {
	entity := health.EntityType(c.Params("entity"))
	if entity != health.EntityBackend && entity != health.EntityBot {
		return c.Status(404).JSON(utils.ResponseData{
			Status:  404,
			Code:    "NOT_FOUND",
			Message: "unknown entity type " + string(entity),
		})
	}

	if id := c.Query("id"); id != "" {
		record, err := h.Service.GetEntityStatus(c.UserContext(), entity, id)
		utils.PanicIfNeeded(err)
		return c.JSON(utils.ResponseData{
			Status:  200,
			Code:    "SUCCESS",
			Message: "Health status retrieved",
			Results: record,
		})
	}

	records, err := h.Service.GetStatus(c.UserContext())
	utils.PanicIfNeeded(err)

	filtered := make([]health.HealthRecord, 0, len(records))
	for _, r := range records {
		if r.EntityType == entity {
			filtered = append(filtered, r)
		}
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Health status retrieved",
		Results: filtered,
	})
}
