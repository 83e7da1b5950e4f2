package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/quickdesk/ticket-engine/internal/observability"
	apperrors "github.com/quickdesk/ticket-engine/pkg/util"
)

// RegisterMiddlewares installs the shared middleware chain: request logging,
// panic-safe error rendering and per-request timeout. The logger sits
// outermost so it observes the status the error renderer actually wrote,
// not the pre-render default.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, requestTimeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if requestTimeout > 0 {
		app.Use(requestTimeoutMiddleware(requestTimeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r),
					zap.String("path", c.Path()))
				err = renderError(c, metrics, apperrors.ToDomainError(fiber.ErrInternalServerError))
			}
		}()

		if err = c.Next(); err != nil {
			return renderError(c, metrics, apperrors.ToDomainError(err))
		}
		return nil
	}
}

func renderError(c *fiber.Ctx, metrics *observability.Metrics, domainErr *apperrors.DomainError) error {
	metrics.RecordError(c.Path(), c.Method(), domainErr.Code)

	body := fiber.Map{
		"error": fiber.Map{
			"code":    domainErr.Code,
			"message": domainErr.Message,
		},
	}
	if len(domainErr.Details) > 0 {
		body["error"].(fiber.Map)["details"] = domainErr.Details
	}
	if domainErr.Retryable() {
		body["error"].(fiber.Map)["retryable"] = true
	}
	return c.Status(domainErr.HTTPStatus).JSON(body)
}
