package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/naperu/collabmesh/internal/domain"
)

func (s *Server) handleGenerateInviteCode(c *fiber.Ctx) error {
	var req struct {
		MaxUses int `json:"max_uses"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid request"})
	}
	if req.MaxUses == 0 {
		req.MaxUses = 1
	}
	code, err := s.services.Membership.GenerateInviteCode(c.Context(), callerIdentity(c), req.MaxUses)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "invite_code": code})
}

func (s *Server) handleDeleteInviteCode(c *fiber.Ctx) error {
	if err := s.services.Membership.DeleteInviteCode(c.Context(), callerIdentity(c), c.Params("code")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleJoinCompany(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid request"})
	}
	membership, err := s.services.Membership.JoinCompany(c.Context(), callerIdentity(c), req.Code)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "membership": membership})
}

func (s *Server) handleListColleagues(c *fiber.Ctx) error {
	colleagues, err := s.services.Membership.ListColleagues(c.Context(), callerIdentity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "colleagues": colleagues})
}

func (s *Server) handleUpdateUserRole(c *fiber.Ctx) error {
	membershipID, err := uuid.Parse(c.Params("membershipId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid membership id"})
	}
	var req struct {
		Role domain.Role `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid request"})
	}
	if err := s.services.Membership.UpdateUserRole(c.Context(), callerIdentity(c), membershipID, req.Role); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleTransferOwnership(c *fiber.Ctx) error {
	membershipID, err := uuid.Parse(c.Params("membershipId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid membership id"})
	}
	if err := s.services.Membership.TransferOwnership(c.Context(), callerIdentity(c), membershipID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleRemoveColleague(c *fiber.Ctx) error {
	membershipID, err := uuid.Parse(c.Params("membershipId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid membership id"})
	}
	if err := s.services.Membership.RemoveColleague(c.Context(), callerIdentity(c), membershipID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleLeaveCompany(c *fiber.Ctx) error {
	if err := s.services.Membership.LeaveCompany(c.Context(), callerIdentity(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
