package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order-app/controllers"
	"github.com/yeremiapane/table-order-app/middlewares"
	"github.com/yeremiapane/table-order-app/realtime"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, registry *realtime.Registry, bus *realtime.Bus) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	authCtrl := controllers.NewAuthController(db)
	tableCtrl := controllers.NewTableController(db)
	sessionCtrl := controllers.NewSessionController(db, bus)
	orderCtrl := controllers.NewOrderController(db, bus)
	callCtrl := controllers.NewWaiterCallController(db, bus)
	categoryCtrl := controllers.NewCategoryController(db, bus)
	productCtrl := controllers.NewProductController(db, bus)
	settingCtrl := controllers.NewSettingController(db, bus)
	devCtrl := controllers.NewDevController(db, registry, bus)
	auditCtrl := controllers.NewAuditController(db)
	reportCtrl := controllers.NewReportController(db)
	realtimeCtrl := controllers.NewRealtimeController(db, registry, bus)

	// Endpoint publik dibatasi ketat: login meja dipakai tablet yang
	// berdiri di area publik.
	auth := r.Group("/auth")
	auth.Use(middlewares.NewStrictRateLimiter())
	{
		auth.POST("/register", authCtrl.Register)
		auth.POST("/login", authCtrl.Login)
		auth.POST("/table-login", authCtrl.TableLogin)
		auth.POST("/dev-login", authCtrl.DevLogin)
	}

	// Handshake websocket: token lewat query string.
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(), realtimeCtrl.HandleWS)

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/auth/profile", authCtrl.GetProfile)
		api.POST("/auth/verify-staff",
			middlewares.RequireStaffRole(middlewares.RoleGeneral, middlewares.RoleOrders),
			authCtrl.VerifyStaff)

		// Katalog bisa dibaca semua klien terautentikasi (tablet
		// menampilkan menu), tapi hanya owner yang mengubahnya.
		api.GET("/categories", categoryCtrl.GetAllCategories)
		api.GET("/products", productCtrl.GetAllProducts)
		catalog := api.Group("")
		catalog.Use(middlewares.RequireOwner())
		{
			catalog.POST("/categories", categoryCtrl.CreateCategory)
			catalog.PATCH("/categories/:category_id", categoryCtrl.UpdateCategory)
			catalog.DELETE("/categories/:category_id", categoryCtrl.DeleteCategory)
			catalog.POST("/products", productCtrl.CreateProduct)
			catalog.PATCH("/products/:product_id", productCtrl.UpdateProduct)
			catalog.DELETE("/products/:product_id", productCtrl.DeleteProduct)
		}

		api.GET("/settings", settingCtrl.GetSettings)
		api.PUT("/settings", middlewares.RequireOwner(), settingCtrl.SaveSettings)

		// Aksi tablet.
		table := api.Group("")
		table.Use(middlewares.RequireTable())
		{
			table.POST("/sessions", sessionCtrl.StartSession)
			table.POST("/orders", orderCtrl.PlaceOrder)
			table.POST("/waiter-calls", callCtrl.CallWaiter)
		}
		// Tablet dan staff sama-sama butuh rincian rekening.
		api.GET("/sessions/:session_id/account", sessionCtrl.GetAccount)
		api.GET("/sessions/:session_id/lines", sessionCtrl.GetSessionLines)
		api.GET("/sessions/:session_id", sessionCtrl.GetSessionInfo)

		// Dashboard staff.
		staff := api.Group("")
		staff.Use(middlewares.RequireStaffRole(middlewares.RoleGeneral, middlewares.RoleOrders))
		{
			staff.GET("/sessions", sessionCtrl.GetActiveSessions)
			staff.GET("/orders/pending-count", orderCtrl.GetPendingCount)
			staff.PATCH("/orders/:line_id/deliver", orderCtrl.MarkDelivered)
			staff.PATCH("/orders/:line_id/cancel", orderCtrl.CancelLine)
			staff.GET("/waiter-calls", callCtrl.ListPendingCalls)
			staff.GET("/waiter-calls/pending-count", callCtrl.GetPendingCount)
			staff.PATCH("/waiter-calls/:call_id/attend", callCtrl.AttendCall)
			staff.DELETE("/waiter-calls/attended", callCtrl.ClearAttended)
		}

		// Penutupan sesi dan administrasi meja hanya untuk gerencia penuh.
		general := api.Group("")
		general.Use(middlewares.RequireStaffRole(middlewares.RoleGeneral))
		{
			general.POST("/sessions/:session_id/close", sessionCtrl.CloseSession)
			general.GET("/tables", tableCtrl.GetAllTables)
			general.GET("/tables/status", tableCtrl.GetTableStatus)
			general.GET("/tables/:table_id/sessions", tableCtrl.GetTableSessions)
			general.POST("/tables", tableCtrl.CreateTable)
			general.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
			general.GET("/reports/dashboard", reportCtrl.GetDashboardStats)
			general.GET("/reports/revenue", reportCtrl.GetRevenueReport)
			general.GET("/reports/top-products", reportCtrl.GetTopProducts)
		}

		// Panel dev.
		dev := api.Group("/dev")
		dev.Use(middlewares.RequireOwner())
		{
			dev.GET("/users", devCtrl.ListUsers)
			dev.PATCH("/users/:user_id/password", devCtrl.ChangePassword)
			dev.GET("/connections", devCtrl.GetRegistrySnapshot)
			dev.DELETE("/connections/:seq", devCtrl.DisconnectClient)
			dev.POST("/sessions/:session_id/force-close", devCtrl.ForceCloseSession)
			dev.GET("/audit-logs", auditCtrl.ListLogs)
		}
	}

	return r
}
