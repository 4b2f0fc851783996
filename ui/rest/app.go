package rest

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/MasegoMashiane/Second-Sales-Automation-bot/core/config"
	domainBridge "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bridge"
	domainHealth "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/health"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/utils"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/ui/rest/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const TokenHeader = "X-Bridge-Token"

// NewBridgeApp builds the loopback listener the UI host talks to. Every
// route requires the per-run bridge token. ledger may be nil.
func NewBridgeApp(cfg config.Config, service domainBridge.IBridge, ledger domainHealth.IHealthUsecase) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name + " bridge",
		BodyLimit:             64 << 10,
		DisableStartupMessage: true,
		ServerHeader:          "Hidden",
	})

	app.Use(requestid.New())
	if len(cfg.Bridge.AllowedOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(cfg.Bridge.AllowedOrigins, ", "),
			AllowMethods: "GET,POST,OPTIONS",
			AllowHeaders: "Origin, Content-Type, Accept, " + TokenHeader + ", X-Request-ID",
		}))
	}
	app.Use(middleware.Recovery())
	app.Use(helmet.New(helmet.Config{
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "no-referrer",
	}))
	if cfg.Bridge.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.Bridge.RateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(utils.ResponseData{
					Status:  fiber.StatusTooManyRequests,
					Code:    "TOO_MANY_REQUESTS",
					Message: "too many bridge requests",
				})
			},
		}))
	}
	if cfg.App.Debug {
		app.Use(logger.New())
	}

	token := []byte(cfg.Bridge.Token)
	app.Use(keyauth.New(keyauth.Config{
		KeyLookup: "header:" + TokenHeader,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), token) == 1 {
				return true, nil
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(utils.ResponseData{
				Status:  fiber.StatusUnauthorized,
				Code:    "UNAUTHORIZED",
				Message: "missing or invalid bridge token",
			})
		},
	}))

	InitRestBridge(app, service)
	if ledger != nil {
		InitRestHealth(app, ledger)
	}
	return app
}
