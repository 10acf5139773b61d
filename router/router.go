package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lonfo/webpos/controllers"
	"github.com/lonfo/webpos/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(db)
	itemCtrl := controllers.NewItemController(db)
	billCtrl := controllers.NewBillController(db)
	reportCtrl := controllers.NewReportController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limited login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())

	api.GET("/profile", userCtrl.GetProfile)
	api.POST("/logout", userCtrl.Logout)
	api.POST("/change-password", userCtrl.ChangePassword)

	// CATALOG (read-only; the catalog itself is managed out of band)
	api.GET("/categories", itemCtrl.GetAllCategories)
	api.GET("/items", itemCtrl.GetOrderItems)
	api.POST("/items/refresh", itemCtrl.RefreshItems)

	// BILLS
	api.POST("/bills", billCtrl.CreateBill)
	api.POST("/bills/undo", billCtrl.UndoBill)
	api.GET("/bills/search", billCtrl.SearchBills)
	api.GET("/bills/:bill_id", billCtrl.GetBillByID)
	api.GET("/bills/:bill_id/pdf", billCtrl.GetBillPDF)

	// REPORTS (admin)
	reports := api.Group("/reports")
	reports.Use(middlewares.RequireRole("admin"))
	{
		reports.GET("", reportCtrl.GetSalesReport)
	}

	return r
}
