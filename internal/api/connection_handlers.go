package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (s *Server) handleListConnections(c *fiber.Ctx) error {
	conns, err := s.services.Connection.ListConnections(c.Context(), callerIdentity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "connections": conns})
}

func (s *Server) handleRequestConnection(c *fiber.Ctx) error {
	var req struct {
		TargetCompanyID uuid.UUID `json:"target_company_id"`
		InitialMessage  string    `json:"initial_message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid request"})
	}
	conn, err := s.services.Connection.RequestConnection(c.Context(), callerIdentity(c), req.TargetCompanyID, req.InitialMessage)
	if err != nil {
		return fail(c, err)
	}
	// conn is nil when the request was ghosted: still reported as Ok,
	// with nothing revealing the block to the requester.
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "connection": conn})
}

func connectionIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

func (s *Server) handleAcceptConnection(c *fiber.Ctx) error {
	id, err := connectionIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid connection id"})
	}
	if err := s.services.Connection.AcceptConnection(c.Context(), callerIdentity(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleDeclineConnection(c *fiber.Ctx) error {
	id, err := connectionIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid connection id"})
	}
	if err := s.services.Connection.DeclineConnection(c.Context(), callerIdentity(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleCancelRequest(c *fiber.Ctx) error {
	id, err := connectionIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid connection id"})
	}
	if err := s.services.Connection.CancelRequest(c.Context(), callerIdentity(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleDisconnectCompany(c *fiber.Ctx) error {
	id, err := connectionIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid connection id"})
	}
	if err := s.services.Connection.DisconnectCompany(c.Context(), callerIdentity(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// handleBlockCompany implements spec §4.4 block_company, keyed by the
// target company id rather than a connection id since a Blocked row may
// not yet exist for the pair.
func (s *Server) handleBlockCompany(c *fiber.Ctx) error {
	target, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid company id"})
	}
	if err := s.services.Connection.BlockCompany(c.Context(), callerIdentity(c), target); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleUnblockCompany(c *fiber.Ctx) error {
	id, err := connectionIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid connection id"})
	}
	if err := s.services.Connection.UnblockCompany(c.Context(), callerIdentity(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleListConnectionChat(c *fiber.Ctx) error {
	id, err := connectionIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid connection id"})
	}
	msgs, err := s.services.Connection.ListChat(c.Context(), callerIdentity(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "messages": msgs})
}

func (s *Server) handleSendConnectionChat(c *fiber.Ctx) error {
	id, err := connectionIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid connection id"})
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid request"})
	}
	msg, err := s.services.Connection.SendConnectionChat(c.Context(), callerIdentity(c), id, req.Text)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": msg})
}
