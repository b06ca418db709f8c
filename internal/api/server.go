package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/naperu/collabmesh/internal/domain"
	"github.com/naperu/collabmesh/internal/repository"
	"github.com/naperu/collabmesh/internal/service"
	"github.com/naperu/collabmesh/internal/ws"
	"github.com/naperu/collabmesh/pkg/cache"
	"github.com/naperu/collabmesh/pkg/config"
)

type Server struct {
	app      *fiber.App
	cfg      *config.Config
	services *service.Services
	repos    *repository.Repositories
	hub      *ws.Hub
	cache    *cache.Cache
}

func NewServer(cfg *config.Config, services *service.Services, repos *repository.Repositories, hub *ws.Hub, c *cache.Cache) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "CollabMesh",
		BodyLimit:             4 * 1024 * 1024,
		DisableStartupMessage: false,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"success": false, "error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
	}))

	app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
		PermissionPolicy:          "geolocation=(), microphone=(), camera=()",
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        500,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "too many requests, please slow down",
			})
		},
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/ws")
		},
	}))

	corsOrigins := "http://localhost:3000"
	if cfg.IsProduction() && len(cfg.CORSOrigins) > 0 {
		corsOrigins = strings.Join(cfg.CORSOrigins, ",")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,Upgrade,Connection",
		AllowCredentials: true,
	}))

	server := &Server{app: app, cfg: cfg, services: services, repos: repos, hub: hub, cache: c}
	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now()})
	})

	api := s.app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", s.handleLogin)

	api.Get("/companies/public", s.handleListPublicCompanies)

	protected := api.Group("", s.authMiddleware)

	protected.Get("/me", s.handleGetMe)
	protected.Put("/me/profile", s.handleUpdateProfile)
	protected.Get("/me/memberships", s.handleListMemberships)

	companies := protected.Group("/companies")
	companies.Post("/", s.handleCreateCompany)
	companies.Put("/active", s.handleUpdateCompanyProfile)
	companies.Put("/active/capabilities", s.handleUpdateCapabilities)
	companies.Post("/switch", s.handleSwitchActiveCompany)
	companies.Delete("/active", s.handleDeleteCompany)
	companies.Get("/:id", s.handleGetCompany)

	invites := protected.Group("/invites")
	invites.Post("/", s.handleGenerateInviteCode)
	invites.Delete("/:code", s.handleDeleteInviteCode)
	invites.Get("/:code/qr.png", s.handleInviteQR)
	invites.Post("/join", s.handleJoinCompany)

	colleagues := protected.Group("/colleagues")
	colleagues.Get("/", s.handleListColleagues)
	colleagues.Put("/:membershipId/role", s.handleUpdateUserRole)
	colleagues.Post("/:membershipId/transfer-ownership", s.handleTransferOwnership)
	colleagues.Delete("/:membershipId", s.handleRemoveColleague)
	protected.Post("/me/leave-company", s.handleLeaveCompany)

	connections := protected.Group("/connections")
	connections.Get("/", s.handleListConnections)
	connections.Post("/", s.handleRequestConnection)
	connections.Post("/:id/accept", s.handleAcceptConnection)
	connections.Post("/:id/decline", s.handleDeclineConnection)
	connections.Post("/:id/cancel", s.handleCancelRequest)
	connections.Post("/:id/disconnect", s.handleDisconnectCompany)
	connections.Post("/:id/unblock", s.handleUnblockCompany)
	connections.Get("/:id/messages", s.handleListConnectionChat)
	connections.Post("/:id/messages", s.handleSendConnectionChat)
	protected.Post("/companies/:id/block", s.handleBlockCompany)

	projects := protected.Group("/projects")
	projects.Get("/", s.handleListProjects)
	projects.Post("/", s.handleCreateProject)
	projects.Get("/:id", s.handleGetProject)
	projects.Get("/:id/members", s.handleListProjectMembers)
	projects.Post("/:id/invite", s.handleInviteToProject)
	projects.Post("/:id/accept", s.handleAcceptProjectInvite)
	projects.Post("/:id/decline", s.handleDeclineProjectInvite)
	projects.Post("/:id/kick", s.handleKickFromProject)
	projects.Post("/:id/leave", s.handleLeaveProject)
	projects.Delete("/:id", s.handleDeleteProject)
	projects.Get("/:id/messages", s.handleListProjectChat)
	projects.Post("/:id/messages", s.handleSendProjectChat)

	notifications := protected.Group("/notifications")
	notifications.Get("/", s.handleListNotifications)
	notifications.Get("/unread-count", s.handleCountUnreadNotifications)
	notifications.Post("/:id/read", s.handleMarkNotificationRead)
	notifications.Post("/read-all", s.handleMarkAllNotificationsRead)
	notifications.Delete("/read", s.handleClearNotifications)

	s.app.Use("/ws", s.wsUpgrade)
	s.app.Get("/ws", websocket.New(s.handleWebSocket))
}

// authMiddleware resolves the caller's domain.Identity from the bearer
// token and stashes it for handlers, mirroring the teacher's claims-in-
// Locals pattern.
func (s *Server) authMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		authHeader = c.Cookies("auth-token")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "unauthorized"})
	}

	identity, err := s.services.Auth.ValidateToken(token)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "invalid token"})
	}
	c.Locals("identity", identity)
	return c.Next()
}

func (s *Server) wsUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		token := c.Query("token")
		if token == "" {
			return c.Status(401).JSON(fiber.Map{"error": "missing token"})
		}
		identity, err := s.services.Auth.ValidateToken(token)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
		}
		c.Locals("identity", identity)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (s *Server) handleWebSocket(c *websocket.Conn) {
	identity := c.Locals("identity").(domain.Identity)
	ac, err := s.services.Account.GetAuthContext(c.Context(), identity)
	if err != nil || !ac.HasActiveCompany() {
		c.Close()
		return
	}

	client := &ws.Client{
		ID:        identity.String(),
		CompanyID: *ac.ActiveCompany,
		Conn:      c,
		Send:      make(chan []byte, 256),
		Hub:       s.hub,
	}
	s.hub.Register(client)
	go client.WritePump()
	client.ReadPump()
}

func (s *Server) Listen(addr string) error  { return s.app.Listen(addr) }
func (s *Server) Shutdown() error           { return s.app.Shutdown() }

// callerIdentity fetches the authenticated identity stashed by authMiddleware.
func callerIdentity(c *fiber.Ctx) domain.Identity {
	return c.Locals("identity").(domain.Identity)
}

// errStatus maps a domain error's Kind to an HTTP status, falling back to
// 500 for anything that isn't a tagged *domain.Error.
func errStatus(err error) int {
	de, ok := domain.AsDomainError(err)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch de.Kind {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindConflict:
		return fiber.StatusConflict
	case domain.KindPermission:
		return fiber.StatusForbidden
	case domain.KindState:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(errStatus(err)).JSON(fiber.Map{"success": false, "error": err.Error()})
}
