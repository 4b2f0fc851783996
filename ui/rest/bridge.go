package rest

import (
	"encoding/json"

	domainBridge "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bridge"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Bridge struct {
	Service domainBridge.IBridge
}

func InitRestBridge(app fiber.Router, service domainBridge.IBridge) Bridge {
	rest := Bridge{Service: service}
	app.Get("/bridge", rest.Commands)
	app.Post("/bridge/:command", rest.Execute)
	return rest
}

func (handler *Bridge) Commands(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Available commands",
		Results: handler.Service.Commands(),
	})
}

func (handler *Bridge) Execute(c *fiber.Ctx) error {
	command := c.Params("command")
	payload := json.RawMessage(append([]byte(nil), c.Body()...))

	result, err := handler.Service.Execute(c.UserContext(), command, payload)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: command + " success",
		Results: result,
	})
}
