package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"restaurant/controllers"
	"restaurant/middleware"
	"restaurant/models"
)

type Controllers struct {
	Auth      *controllers.AuthController
	Users     *controllers.UserController
	Menu      *controllers.MenuController
	Tables    *controllers.TableController
	Orders    *controllers.OrderController
	Payments  *controllers.PaymentController
	Staff     *controllers.StaffController
	Inventory *controllers.InventoryController
	Dashboard *controllers.DashboardController
	Settings  *controllers.SettingsController
}

type Dependencies struct {
	Tokens middleware.TokenValidator
	Audit  middleware.AuditRecorder
	Logger zerolog.Logger
}

func InitializeRoutes(router *gin.Engine, deps Dependencies, h Controllers) {
	api := router.Group("/api")

	authenticated := []gin.HandlerFunc{
		middleware.AuthMiddleware(deps.Tokens),
		middleware.AuditMiddleware(deps.Audit, deps.Logger),
	}
	admin := middleware.RequireRole(models.RoleAdmin)
	managers := middleware.RequireRole(models.RoleAdmin, models.RoleManager)
	cashiers := middleware.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleCashier)
	floor := middleware.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleWaiter, models.RoleCashier)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.GET("/me", middleware.AuthMiddleware(deps.Tokens), h.Auth.Me)
	}

	users := api.Group("/users", authenticated...)
	users.Use(admin)
	{
		users.GET("", h.Users.List)
		users.POST("", h.Users.Create)
		users.GET("/:id", h.Users.Get)
		users.PUT("/:id", h.Users.Update)
		users.DELETE("/:id", h.Users.Delete)
	}

	menu := api.Group("/menu", authenticated...)
	{
		menu.GET("", h.Menu.List)
		menu.GET("/categories", h.Menu.ListCategories)
		menu.GET("/:id", h.Menu.Get)

		menu.POST("", managers, h.Menu.Create)
		menu.PUT("/:id", managers, h.Menu.Update)
		menu.DELETE("/:id", managers, h.Menu.Delete)
		menu.PATCH("/:id/stock", managers, h.Menu.UpdateStock)
		menu.PATCH("/:id/availability", managers, h.Menu.UpdateAvailability)

		menu.POST("/categories", managers, h.Menu.CreateCategory)
		menu.PUT("/categories/:id", managers, h.Menu.UpdateCategory)
		menu.DELETE("/categories/:id", managers, h.Menu.DeleteCategory)
	}

	table := api.Group("/table", authenticated...)
	{
		table.GET("", h.Tables.List)
		table.GET("/:tableId", h.Tables.Get)
		table.POST("", managers, h.Tables.Create)
		table.PUT("/:tableId", managers, h.Tables.Update)
		table.DELETE("/:tableId", managers, h.Tables.Delete)
		table.PATCH("/:tableId/status", floor, h.Tables.UpdateStatus)
	}

	order := api.Group("/order", authenticated...)
	{
		order.GET("", h.Orders.List)
		order.GET("/table/:tableId", h.Orders.ListByTable)
		order.GET("/:id", h.Orders.Get)
		order.POST("", floor, h.Orders.Create)
		order.PATCH("/:id/status", h.Orders.UpdateStatus)
		order.POST("/:id/items", floor, h.Orders.AddItems)
		order.PUT("/:id", floor, h.Orders.Update)
		order.DELETE("/:id", managers, h.Orders.Delete)
	}

	payments := api.Group("/payments", authenticated...)
	payments.Use(cashiers)
	{
		payments.POST("/cash", h.Payments.Cash)
		payments.POST("/qr", h.Payments.QR)
		payments.GET("", h.Payments.List)
		payments.GET("/order/:orderId", h.Payments.ByOrder)
	}

	staff := api.Group("/staff", authenticated...)
	{
		staff.POST("/attendance/check-in", h.Staff.CheckIn)
		staff.POST("/attendance/check-out", h.Staff.CheckOut)
		staff.GET("/attendance", managers, h.Staff.ListAttendance)

		staff.GET("", managers, h.Staff.List)
		staff.POST("", managers, h.Staff.Create)
		staff.GET("/:id", managers, h.Staff.Get)
		staff.PUT("/:id", managers, h.Staff.Update)
		staff.DELETE("/:id", managers, h.Staff.Delete)
		staff.GET("/:id/attendance", managers, h.Staff.StaffAttendance)
	}

	inventory := api.Group("/inventory", authenticated...)
	{
		inventory.GET("", h.Inventory.List)
		inventory.GET("/:id", h.Inventory.Get)
		inventory.POST("", managers, h.Inventory.Create)
		inventory.PUT("/:id", managers, h.Inventory.Update)
		inventory.DELETE("/:id", managers, h.Inventory.Delete)
		inventory.PATCH("/:id/restock", managers, h.Inventory.Restock)
	}

	restaurant := api.Group("/restaurant", authenticated...)
	{
		restaurant.GET("", h.Settings.GetRestaurant)
		restaurant.PUT("", admin, h.Settings.UpdateRestaurant)
	}

	dashboard := api.Group("/dashboard", authenticated...)
	dashboard.Use(managers)
	{
		dashboard.GET("/stats", h.Dashboard.Stats)
		dashboard.GET("/sales", h.Dashboard.Sales)
		dashboard.GET("/top-items", h.Dashboard.TopItems)
	}

	api.GET("/audit-logs", append(authenticated, admin, h.Settings.AuditLogs)...)
}
