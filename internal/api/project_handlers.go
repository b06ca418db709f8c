package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func projectIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

func (s *Server) handleListProjects(c *fiber.Ctx) error {
	members, err := s.services.Project.ListProjects(c.Context(), callerIdentity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "projects": members})
}

func (s *Server) handleCreateProject(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid request"})
	}
	project, err := s.services.Project.CreateProject(c.Context(), callerIdentity(c), req.Name, req.Description)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "project": project})
}

func (s *Server) handleGetProject(c *fiber.Ctx) error {
	id, err := projectIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid project id"})
	}
	project, err := s.services.Project.GetProject(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if project == nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "project not found"})
	}
	return c.JSON(fiber.Map{"success": true, "project": project})
}

func (s *Server) handleListProjectMembers(c *fiber.Ctx) error {
	id, err := projectIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid project id"})
	}
	members, err := s.services.Project.ListProjectMembers(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "members": members})
}

func (s *Server) handleInviteToProject(c *fiber.Ctx) error {
	id, err := projectIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid project id"})
	}
	var req struct {
		TargetCompanyID uuid.UUID `json:"target_company_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid request"})
	}
	member, err := s.services.Project.InviteToProject(c.Context(), callerIdentity(c), id, req.TargetCompanyID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "member": member})
}

func (s *Server) handleAcceptProjectInvite(c *fiber.Ctx) error {
	id, err := projectIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid project id"})
	}
	if err := s.services.Project.AcceptProjectInvite(c.Context(), callerIdentity(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleDeclineProjectInvite(c *fiber.Ctx) error {
	id, err := projectIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid project id"})
	}
	if err := s.services.Project.DeclineProjectInvite(c.Context(), callerIdentity(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleKickFromProject(c *fiber.Ctx) error {
	id, err := projectIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid project id"})
	}
	var req struct {
		TargetCompanyID uuid.UUID `json:"target_company_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid request"})
	}
	if err := s.services.Project.KickFromProject(c.Context(), callerIdentity(c), id, req.TargetCompanyID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleLeaveProject(c *fiber.Ctx) error {
	id, err := projectIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid project id"})
	}
	if err := s.services.Project.LeaveProject(c.Context(), callerIdentity(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleDeleteProject(c *fiber.Ctx) error {
	id, err := projectIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid project id"})
	}
	if err := s.services.Project.DeleteProject(c.Context(), callerIdentity(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleListProjectChat(c *fiber.Ctx) error {
	id, err := projectIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid project id"})
	}
	msgs, err := s.services.Project.ListChat(c.Context(), callerIdentity(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "messages": msgs})
}

func (s *Server) handleSendProjectChat(c *fiber.Ctx) error {
	id, err := projectIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid project id"})
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid request"})
	}
	msg, err := s.services.Project.SendProjectChat(c.Context(), callerIdentity(c), id, req.Text)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": msg})
}
