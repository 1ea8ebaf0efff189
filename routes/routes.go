package routes

import (
	"restaurant-pos-api/handlers"
	"restaurant-pos-api/middleware"
	"restaurant-pos-api/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options tunes the router's global middleware
type Options struct {
	CORSOrigin      string
	LoginRatePerMin int
}

var (
	staff       = models.StaffRoles
	menuEditors = []models.UserRole{models.RoleAdmin, models.RoleStaff, models.RoleWaiter, models.RoleCashier}
	managers    = []models.UserRole{models.RoleAdmin, models.RoleStaff}
)

// NewRouter builds the engine with logging, recovery, metrics and CORS in
// front of every route, plus /metrics for prometheus
func NewRouter(h *handlers.Handler, opts Options) *gin.Engine {
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(h.Log),
		middleware.Logger(h.Log),
		middleware.Metrics(),
		middleware.CORS(opts.CORSOrigin),
	)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	SetupRoutes(r, h, opts)
	return r
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, opts Options) {
	auth := middleware.AuthRequired(h.Tokens, h.Accounts)
	login := middleware.NewIPRateLimiter(opts.LoginRatePerMin).Middleware()
	role := middleware.RoleRequired

	r.GET("/health", handlers.Health)

	api := r.Group("/api")
	{
		// Auth
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", login, h.Login)
		api.GET("/auth/me", auth, h.GetMe)
		api.PUT("/auth/me", auth, h.UpdateMe)

		// Categories
		api.GET("/categories", h.ListCategories)
		api.POST("/categories", auth, role(models.RoleAdmin), h.CreateCategory)
		api.PUT("/categories/:id", auth, role(models.RoleAdmin), h.UpdateCategory)
		api.DELETE("/categories/:id", auth, role(models.RoleAdmin), h.DeleteCategory)

		// Menu items
		api.GET("/menu-items", h.ListMenuItems)
		api.POST("/menu-items", auth, role(managers...), h.CreateMenuItem)
		api.PUT("/menu-items/:id", auth, role(menuEditors...), h.UpdateMenuItem)
		api.DELETE("/menu-items/:id", auth, role(menuEditors...), h.DeleteMenuItem)

		// Orders
		api.POST("/orders", auth, h.CreateOrder)
		api.GET("/orders", auth, h.ListOrders)
		api.GET("/orders/stream", auth, role(staff...), h.StreamOrders)
		api.GET("/orders/:id", auth, h.GetOrder)
		api.GET("/orders/:id/history", auth, role(staff...), h.OrderHistory)
		api.PUT("/orders/:id", auth, role(staff...), h.UpdateOrder)
		api.DELETE("/orders/:id", auth, role(staff...), h.DeleteOrder)

		// Reporting (analytics is public)
		api.GET("/stats", auth, role(managers...), h.GetStats)
		api.GET("/analytics", h.GetAnalytics)

		api.GET("/order-flow", h.GetOrderFlow)
	}

	users := r.Group("/api/users")
	users.Use(auth, role(models.RoleAdmin))
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}
