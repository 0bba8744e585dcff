package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/domain"
	"github.com/gofiber/fiber/v2"
)

// RequestAudit records one audit entry per completed request, mirroring the
// response status and duration. Recording is best-effort and never changes
// the response.
func RequestAudit(auditor domain.AuditRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		accountID := ""
		if acc := CurrentAccount(c); acc != nil {
			accountID = acc.ID
		}

		auditor.Record(c.UserContext(),
			fmt.Sprintf("%s %s", c.Method(), c.Path()),
			fmt.Sprintf("Responded with %d in %dms", status, time.Since(start).Milliseconds()),
			accountID,
		)
		return err
	}
}
