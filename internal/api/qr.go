package api

import (
	"github.com/gofiber/fiber/v2"
	qrcode "github.com/skip2/go-qrcode"
)

// handleInviteQR renders an invite code as a scannable PNG, supplementing
// the spec's invite flow with a presentation the teacher already knew how
// to produce for its WhatsApp pairing codes.
func (s *Server) handleInviteQR(c *fiber.Ctx) error {
	code := c.Params("code")
	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	c.Set("Content-Type", "image/png")
	return c.Send(png)
}
