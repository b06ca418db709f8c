package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/naperu/collabmesh/internal/domain"
)

func (s *Server) handleGetMe(c *fiber.Ctx) error {
	ac, err := s.services.Account.GetAuthContext(c.Context(), callerIdentity(c))
	if err != nil {
		return fail(c, err)
	}
	resp := fiber.Map{
		"success": true,
		"account": ac.Account,
	}
	if ac.HasActiveCompany() {
		resp["active_company_id"] = ac.ActiveCompany
		resp["role"] = ac.Role()
	}
	return c.JSON(resp)
}

func (s *Server) handleUpdateProfile(c *fiber.Ctx) error {
	var req struct {
		Nickname string `json:"nickname"`
		Email    string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid request"})
	}
	if err := s.services.Account.UpdateProfile(c.Context(), callerIdentity(c), req.Nickname, req.Email); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleListMemberships(c *fiber.Ctx) error {
	memberships, err := s.services.Account.ListMemberships(c.Context(), callerIdentity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "memberships": memberships})
}

func (s *Server) handleCreateCompany(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Slug     string `json:"slug"`
		Location string `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid request"})
	}
	company, err := s.services.Account.CreateCompany(c.Context(), callerIdentity(c), req.Name, req.Slug, req.Location)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "company": company})
}

func (s *Server) handleGetCompany(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid company id"})
	}
	company, err := s.services.Account.GetCompany(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if company == nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "company not found"})
	}
	capabilities, err := s.services.Account.GetCapabilities(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "company": company, "capabilities": capabilities})
}

// handleListPublicCompanies serves the public directory listing through a
// cache-aside read when Redis is configured; a miss or disabled cache falls
// straight back to the database.
func (s *Server) handleListPublicCompanies(c *fiber.Ctx) error {
	if s.cache != nil {
		var cached []*domain.Company
		if found, err := s.cache.GetPublicCompanies(c.Context(), &cached); err == nil && found {
			return c.JSON(fiber.Map{"success": true, "companies": cached})
		}
	}

	companies, err := s.services.Account.ListPublicCompanies(c.Context())
	if err != nil {
		return fail(c, err)
	}
	if s.cache != nil {
		if err := s.cache.SetPublicCompanies(c.Context(), companies); err != nil {
			log.Printf("directory cache write failed: %v", err)
		}
	}
	return c.JSON(fiber.Map{"success": true, "companies": companies})
}

func (s *Server) handleUpdateCompanyProfile(c *fiber.Ctx) error {
	var req struct {
		Name      string `json:"name"`
		Slug      string `json:"slug"`
		Location  string `json:"location"`
		Bio       string `json:"bio"`
		IsPublic  bool   `json:"is_public"`
		KvkNumber string `json:"kvk_number"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid request"})
	}
	if err := s.services.Account.UpdateCompanyProfile(c.Context(), callerIdentity(c),
		req.Name, req.Slug, req.Location, req.Bio, req.IsPublic, req.KvkNumber); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleUpdateCapabilities(c *fiber.Ctx) error {
	var req struct {
		CanInstall     bool `json:"can_install"`
		HasCNC         bool `json:"has_cnc"`
		HasLargeFormat bool `json:"has_large_format"`
		HasBucketTruck bool `json:"has_bucket_truck"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid request"})
	}
	if err := s.services.Account.UpdateCapabilities(c.Context(), callerIdentity(c),
		req.CanInstall, req.HasCNC, req.HasLargeFormat, req.HasBucketTruck); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleSwitchActiveCompany(c *fiber.Ctx) error {
	var req struct {
		CompanyID uuid.UUID `json:"company_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid request"})
	}
	if err := s.services.Account.SwitchActiveCompany(c.Context(), callerIdentity(c), req.CompanyID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleDeleteCompany(c *fiber.Ctx) error {
	if err := s.services.Account.DeleteCompany(c.Context(), callerIdentity(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
