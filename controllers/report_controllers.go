package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lonfo/webpos/services"
	"github.com/lonfo/webpos/utils"
)

type ReportController struct {
	DB      *gorm.DB
	reports *services.ReportService
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{
		DB:      db,
		reports: services.NewReportService(db),
	}
}

// GetSalesReport -> items sold and revenue per item/category over the
// requested window. Query params: date_start, date_end (YYYY-MM-DD or
// "YYYY-MM-DD HH:MM"), server (repeatable), category (repeatable).
func (rc *ReportController) GetSalesReport(c *gin.Context) {
	var filter services.ReportFilter

	if v := c.Query("date_start"); v != "" {
		t, err := parseReportTime(v)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		filter.DateStart = &t
	}
	if v := c.Query("date_end"); v != "" {
		t, err := parseReportTime(v)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		filter.DateEnd = &t
	}
	filter.Servers = c.QueryArray("server")
	filter.Categories = c.QueryArray("category")

	report, err := rc.reports.SalesFor(filter)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Sales report", report)
}

func parseReportTime(value string) (time.Time, error) {
	layouts := []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02", time.RFC3339}
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
