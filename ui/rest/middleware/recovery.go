package middleware

import (
	"errors"
	"fmt"

	pkgError "github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/error"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Recovery turns a panic raised through utils.PanicIfNeeded into the
// response envelope. Typed errors keep their own status and code.
func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			res := utils.ResponseData{
				Status:  fiber.StatusInternalServerError,
				Code:    "INTERNAL_SERVER_ERROR",
				Message: fmt.Sprintf("%v", recovered),
			}

			var genericErr pkgError.GenericError
			if err, ok := recovered.(error); ok && errors.As(err, &genericErr) {
				res.Status = genericErr.StatusCode()
				res.Code = genericErr.ErrCode()
				res.Message = genericErr.Error()
				logrus.WithField("request_id", ctx.Locals("requestid")).Debugf("[BRIDGE] %s: %s", res.Code, res.Message)
			} else {
				logrus.Errorf("[BRIDGE] panic recovered in middleware: %v", recovered)
			}

			_ = ctx.Status(res.Status).JSON(res)
		}()

		return ctx.Next()
	}
}
