package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (s *Server) handleListNotifications(c *fiber.Ctx) error {
	notes, err := s.services.Notification.ListNotifications(c.Context(), callerIdentity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "notifications": notes})
}

func (s *Server) handleCountUnreadNotifications(c *fiber.Ctx) error {
	count, err := s.services.Notification.CountUnreadNotifications(c.Context(), callerIdentity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "unread_count": count})
}

func (s *Server) handleMarkNotificationRead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid notification id"})
	}
	if err := s.services.Notification.MarkNotificationRead(c.Context(), callerIdentity(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleMarkAllNotificationsRead(c *fiber.Ctx) error {
	companyID, err := uuid.Parse(c.Query("company_id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid company_id"})
	}
	if err := s.services.Notification.MarkAllNotificationsRead(c.Context(), callerIdentity(c), companyID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleClearNotifications(c *fiber.Ctx) error {
	companyID, err := uuid.Parse(c.Query("company_id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid company_id"})
	}
	if err := s.services.Notification.ClearNotifications(c.Context(), callerIdentity(c), companyID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
