package routes

import (
	"time"

	"ember-portal/internal/adapters/http/handlers"
	"ember-portal/internal/adapters/http/middleware"
	"ember-portal/internal/adapters/persistence/repositories"
	"ember-portal/internal/config"
	"ember-portal/internal/core/authz"
	"ember-portal/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	identityRepo := repositories.NewOAuthIdentityRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	settingRepo := repositories.NewSettingRepository(db)
	forumRepo := repositories.NewForumRepository(db)
	ticketRepo := repositories.NewTicketRepository(db)
	whitelistRepo := repositories.NewWhitelistRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	shiftRepo := repositories.NewShiftRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Initialize services
	auditService := services.NewAuditService(auditRepo)
	notifyService := services.NewNotificationService(cfg)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	oauthService := services.NewOAuthService(identityRepo, userRepo, authService, rdb, cfg)
	userService := services.NewUserService(userRepo, roleRepo, auditService)
	roleService := services.NewRoleService(roleRepo, auditService)
	settingsService := services.NewSettingsService(settingRepo, auditService)
	forumService := services.NewForumService(forumRepo, settingRepo, auditService)
	ticketService := services.NewTicketService(ticketRepo, userRepo, auditService, notifyService)
	whitelistService := services.NewWhitelistService(whitelistRepo, userRepo, auditService, notifyService)
	shiftService := services.NewShiftService(shiftRepo, auditService)
	messageService := services.NewMessageService(messageRepo, userRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	oauthHandler := handlers.NewOAuthHandler(oauthService, authHandler)
	userHandler := handlers.NewUserHandler(userService)
	forumHandler := handlers.NewForumHandler(forumService)
	ticketHandler := handlers.NewTicketHandler(ticketService)
	whitelistHandler := handlers.NewWhitelistHandler(whitelistService)
	messageHandler := handlers.NewMessageHandler(messageService)
	shiftHandler := handlers.NewShiftHandler(shiftService)
	adminHandler := handlers.NewAdminHandler(roleService, auditService, settingsService)

	// Authenticated requests resolve the subject from the database so
	// bans and deactivations take effect on the next request
	auth := middleware.AuthMiddleware(cfg, userService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	setupAuthRoutes(apiV1.Group("/auth"), authHandler, oauthHandler, auth)
	setupUserRoutes(apiV1.Group("/users", auth), userHandler)
	setupForumRoutes(apiV1.Group("/forum", auth), forumHandler)
	setupTicketRoutes(apiV1.Group("/tickets", auth), ticketHandler)
	setupWhitelistRoutes(apiV1.Group("/whitelist", auth), whitelistHandler)
	setupMessageRoutes(apiV1.Group("/messages", auth), messageHandler)
	setupShiftRoutes(apiV1.Group("/shifts", auth, middleware.StaffOnly()), shiftHandler)
	setupAdminRoutes(apiV1.Group("/admin", auth, middleware.AdminOnly()), adminHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, oauthHandler *handlers.OAuthHandler, auth fiber.Handler) {
	router.Use(middleware.NoCacheHeaders())

	// Public routes (rate limited against brute force)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", auth, handler.Me)
	router.Post("/logout-all", auth, handler.LogoutAll)

	// OAuth routes
	// PUBLIC - start the provider redirect and receive the callback
	router.Get("/oauth/:provider", middleware.AuthRateLimiter(), oauthHandler.Begin)
	router.Get("/oauth/:provider/callback", oauthHandler.Callback)

	// PROTECTED - link/unlink providers on an existing account
	router.Post("/oauth/:provider/link", auth, oauthHandler.Link)
	router.Delete("/oauth/:provider/link", auth, oauthHandler.Unlink)
	router.Get("/oauth/linked", auth, oauthHandler.Linked)
}

// setupUserRoutes configures user and profile routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	// Own profile (any authenticated user)
	router.Patch("/me", handler.UpdateProfile)

	// Directory (staff only)
	router.Get("/", middleware.StaffOnly(), handler.List)
	router.Get("/:id", middleware.StaffOnly(), handler.GetByID)

	// Moderation actions
	router.Post("/:id/ban", middleware.RequireRole(authz.RoleModerator), handler.Ban)
	router.Post("/:id/unban", middleware.RequireRole(authz.RoleModerator), handler.Unban)

	// Admin only
	adminRoutes := router.Group("", middleware.AdminOnly())
	adminRoutes.Put("/:id/role", handler.SetRole)
	adminRoutes.Delete("/:id", handler.Delete)
	adminRoutes.Post("/:id/permissions", handler.GrantPermission)
	adminRoutes.Delete("/:id/permissions", handler.RevokePermission)
}

// setupForumRoutes configures forum routes
func setupForumRoutes(router fiber.Router, handler *handlers.ForumHandler) {
	// Reading (any authenticated user; hidden boards filtered by rank)
	router.Get("/categories", middleware.CacheControl(30*time.Second), handler.ListCategories)
	router.Get("/boards/:id/topics", handler.ListTopics)
	router.Get("/topics/:id", handler.GetTopic)
	router.Get("/topics/:id/posts", handler.ListPosts)

	// Posting
	router.Post("/topics", handler.CreateTopic)
	router.Post("/topics/:id/posts", handler.Reply)

	// Moderation (MODERATOR and above)
	modRoutes := router.Group("", middleware.RequireRole(authz.RoleModerator))
	modRoutes.Post("/topics/:id/lock", handler.ToggleLock)
	modRoutes.Post("/topics/:id/pin", handler.TogglePin)
	modRoutes.Put("/topics/:id/title", handler.RenameTopic)
	modRoutes.Delete("/topics/:id", handler.DeleteTopic)
	modRoutes.Delete("/posts/:id", handler.DeletePost)

	// Structure management (Admin only)
	adminRoutes := router.Group("", middleware.AdminOnly())
	adminRoutes.Post("/categories", handler.CreateCategory)
	adminRoutes.Post("/boards", handler.CreateBoard)
	adminRoutes.Put("/boards/:id/name", handler.RenameBoard)
	adminRoutes.Put("/boards/:id/visibility", handler.SetBoardVisibility)
	adminRoutes.Put("/categories/:id/visibility", handler.SetCategoryVisibility)
	adminRoutes.Put("/boards/:id/admin-only", handler.SetBoardAdminOnly)
	adminRoutes.Put("/boards/:id/trash", handler.SetTrashBoard)
}

// setupTicketRoutes configures support ticket routes
func setupTicketRoutes(router fiber.Router, handler *handlers.TicketHandler) {
	router.Post("/", handler.Create)
	router.Get("/", handler.List)

	// Rating obligations (must precede /:id)
	router.Get("/ratings/next", handler.NextRating)
	router.Post("/ratings/:id", handler.SubmitRating)

	router.Get("/:id", handler.Get)
	router.Post("/:id/messages", handler.Reply)
	router.Post("/:id/close", handler.Close)

	// Staff actions
	router.Post("/:id/assign", middleware.StaffOnly(), handler.Assign)
	router.Delete("/:id", middleware.RequireRole(authz.RoleModerator), handler.Delete)
}

// setupWhitelistRoutes configures whitelist application routes
func setupWhitelistRoutes(router fiber.Router, handler *handlers.WhitelistHandler) {
	// Applicant side
	router.Get("/questions", handler.ListQuestions)
	router.Post("/applications", middleware.StrictRateLimiter(), handler.Submit)
	router.Get("/applications/me", handler.GetOwn)

	// Staff side
	staffRoutes := router.Group("", middleware.StaffOnly())
	staffRoutes.Get("/applications", handler.List)
	staffRoutes.Get("/applications/:id", handler.Get)

	// Review decisions (Moderator and above)
	modRoutes := router.Group("", middleware.RequireRole(authz.RoleModerator))
	modRoutes.Post("/applications/:id/review", handler.Review)
	modRoutes.Post("/applications/:id/revoke", handler.Revoke)

	// Question management (Admin only)
	adminRoutes := router.Group("", middleware.AdminOnly())
	adminRoutes.Get("/questions/all", handler.ListAllQuestions)
	adminRoutes.Post("/questions", handler.CreateQuestion)
	adminRoutes.Put("/questions/:id", handler.UpdateQuestion)
}

// setupMessageRoutes configures direct message routes
func setupMessageRoutes(router fiber.Router, handler *handlers.MessageHandler) {
	router.Post("/", handler.Send)
	router.Get("/", handler.Inbox)
	router.Get("/unread-count", handler.UnreadCount)
	router.Get("/with/:id", handler.Conversation)
	router.Post("/:id/read", handler.MarkRead)
	router.Delete("/:id", handler.Delete)
}

// setupShiftRoutes configures staff time clock routes (staff only)
func setupShiftRoutes(router fiber.Router, handler *handlers.ShiftHandler) {
	router.Post("/open", handler.Open)
	router.Post("/close", handler.Close)
	router.Get("/summary", handler.Summary)
	router.Get("/me", handler.ListOwn)

	// Admin oversight
	router.Get("/", middleware.AdminOnly(), handler.ListAll)
	router.Delete("/", middleware.OwnerOnly(), handler.ResetAll)
}

// setupAdminRoutes configures the admin console routes (Admin only)
func setupAdminRoutes(router fiber.Router, handler *handlers.AdminHandler) {
	router.Get("/roles", handler.ListRoles)
	router.Put("/roles/:name/permissions", middleware.OwnerOnly(), handler.ReplacePermissions)
	router.Get("/audit", handler.ListAudit)
	router.Get("/settings/:key", handler.GetSetting)
	router.Put("/settings/:key", handler.SetSetting)
}
