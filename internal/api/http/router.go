package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/http/handlers"
	"github.com/spec-kit/commerce-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Products       *handlers.ProductsHandler
	Settings       *handlers.SettingsHandler
	Payments       *handlers.PaymentsHandler
	Transactions   *handlers.TransactionsHandler
	Uploads        *handlers.UploadsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/forgot-password", cfg.Auth.ForgotPassword)
	authGroup.Post("/reset-password", cfg.Auth.ResetPassword)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authProtected.Get("/me", cfg.Auth.Me)
	authProtected.Put("/profile", cfg.Auth.UpdateProfile)
	authProtected.Put("/change-password", cfg.Auth.ChangePassword)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("", auth.RequireAction(auth.ActionListUsers), cfg.Users.List)
	users.Put("/:id/role", auth.RequireAction(auth.ActionAssignRole), cfg.Users.AssignRole)
	users.Put("/:id/reset-password", auth.RequireAction(auth.ActionResetUserPassword), cfg.Users.ResetPassword)

	products := app.Group("/products")
	products.Get("", cfg.Products.List)
	products.Get("/search", cfg.Products.Search)
	products.Get("/all", cfg.AuthMiddleware.Handle, auth.RequireAction(auth.ActionManageCatalog), cfg.Products.ListAll)
	products.Get("/:id", cfg.Products.Get)
	products.Post("", cfg.AuthMiddleware.Handle, auth.RequireAction(auth.ActionManageCatalog), cfg.Products.Create)
	products.Put("/:id", cfg.AuthMiddleware.Handle, auth.RequireAction(auth.ActionManageCatalog), cfg.Products.Update)
	products.Delete("/:id", cfg.AuthMiddleware.Handle, auth.RequireAction(auth.ActionManageCatalog), cfg.Products.Delete)

	settings := app.Group("/settings")
	settings.Get("", cfg.Settings.GetAll)
	settings.Get("/:key", cfg.Settings.Get)
	settings.Put("/:key", cfg.AuthMiddleware.Handle, auth.RequireAction(auth.ActionManageSettings), cfg.Settings.Update)
	settings.Post("/reset/:key", cfg.AuthMiddleware.Handle, auth.RequireAction(auth.ActionManageSettings), cfg.Settings.Reset)

	payments := app.Group("/payments")
	payments.Post("/create", cfg.Payments.Create)
	payments.Post("/webhook", cfg.Payments.Webhook)
	payments.Post("/create-test-order", cfg.AuthMiddleware.Handle, cfg.Payments.CreateTestOrder)
	payments.Get("/status/:paymentId", cfg.Payments.Status)

	transactions := app.Group("/transactions", cfg.AuthMiddleware.Handle)
	transactions.Get("/my-orders", cfg.Transactions.MyOrders)
	transactions.Get("/my-orders/:id", cfg.Transactions.MyOrder)

	staffTxns := transactions.Group("", auth.RequireAction(auth.ActionManageTransactions))
	staffTxns.Get("", cfg.Transactions.List)
	staffTxns.Get("/stats", cfg.Transactions.Stats)
	staffTxns.Get("/:id", cfg.Transactions.Get)
	staffTxns.Put("/:id/status", cfg.Transactions.UpdateStatus)
	staffTxns.Put("/:id/shipping", cfg.Transactions.UpdateShipping)
	staffTxns.Put("/:id/notes", cfg.Transactions.UpdateNotes)

	uploads := app.Group("/uploads", cfg.AuthMiddleware.Handle, auth.RequireAction(auth.ActionUploadImages))
	uploads.Post("", cfg.Uploads.Upload)
	uploads.Delete("/:filename", cfg.Uploads.Delete)
}
