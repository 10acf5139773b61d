package Controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lonfo/webpos/controllers"
	"github.com/lonfo/webpos/middlewares"
	"github.com/lonfo/webpos/models"
	"github.com/lonfo/webpos/services"
	"github.com/lonfo/webpos/utils"
)

func setupTestDBForReports(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.Item{},
		&models.Bill{},
		&models.BillItem{},
		&models.BillItemExtra{},
	))

	kitchen := models.Category{Name: "Kitchen", Priority: 10, Enabled: true, Printable: true}
	require.NoError(t, db.Create(&kitchen).Error)
	pasta := models.Item{Name: "Pasta al ragu", CategoryID: &kitchen.ID, Quantity: intp(25), Price: 8.50, Enabled: true}
	require.NoError(t, db.Create(&pasta).Error)

	svc := services.NewBillService(db)
	for _, server := range []string{"Lonfo", "Simo"} {
		result, err := svc.Commit(services.BillRequest{
			CustomerName: "Walk-in",
			Items:        []services.BillItemRequest{{Name: "Pasta al ragu", Qty: 2}},
		}, server)
		require.NoError(t, err)
		require.Empty(t, result.Errors)
	}
	return db
}

func setupReportRouter(db *gorm.DB, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", uint(1))
		c.Set("role", role)
	})
	reportCtrl := controllers.NewReportController(db)
	reports := router.Group("/reports")
	reports.Use(middlewares.RequireRole("admin"))
	reports.GET("", reportCtrl.GetSalesReport)
	return router
}

func getReport(t *testing.T, router *gin.Engine, query string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("GET", "/reports"+query, nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetSalesReportEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReports(t)
	router := setupReportRouter(db, "admin")

	w := getReport(t, router, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["bill_count"])
	assert.Equal(t, 34.00, data["total_earned"])

	categories := data["categories"].([]interface{})
	require.Len(t, categories, 1)
	kitchen := categories[0].(map[string]interface{})
	assert.Equal(t, "Kitchen", kitchen["name"])
	assert.Equal(t, float64(4), kitchen["items_sold"])
}

func TestGetSalesReportServerFilter(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReports(t)
	router := setupReportRouter(db, "admin")

	w := getReport(t, router, "?server=Lonfo")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["bill_count"])
	assert.Equal(t, 17.00, data["total_earned"])
}

func TestGetSalesReportBadDate(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReports(t)
	router := setupReportRouter(db, "admin")

	w := getReport(t, router, "?date_start=yesterday")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSalesReportForbiddenForServers(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForReports(t)
	router := setupReportRouter(db, "server")

	w := getReport(t, router, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
