package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lonfo/webpos/models"
	"github.com/lonfo/webpos/services"
	"github.com/lonfo/webpos/utils"
)

var billIDPattern = regexp.MustCompile(`^#([0-9]+)$`)

type BillController struct {
	DB      *gorm.DB
	bills   *services.BillService
	tickets *services.TicketService
}

func NewBillController(db *gorm.DB) *BillController {
	return &BillController{
		DB:      db,
		bills:   services.NewBillService(db),
		tickets: services.NewTicketService(db),
	}
}

// CreateBill -> commit a proposed order. Responds with the commit result
// payload: either the committed bill summary (with the ticket URL) or the
// per-item shortfall map with a zero total.
func (bc *BillController) CreateBill(c *gin.Context) {
	var req services.BillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("wrong request JSON formatting: %w", err))
		return
	}

	server, err := bc.actingUser(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	result, err := bc.bills.Commit(req, server)
	if err != nil {
		if errors.Is(err, services.ErrUnknownItem) {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("wrong request JSON formatting: %w", err))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if len(result.Errors) == 0 {
		result.PDFURL = fmt.Sprintf("/api/bills/%d/pdf", result.BillID)
	}
	c.JSON(http.StatusOK, result)
}

// UndoBill -> reverse a committed bill, restoring its stock. Reversing
// twice is a no-op with a message.
func (bc *BillController) UndoBill(c *gin.Context) {
	var input struct {
		BillID string `json:"billid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	server, err := bc.actingUser(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	msg, err := bc.bills.Undo(input.BillID, server)
	if err != nil {
		if errors.Is(err, services.ErrBillNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// GetBillByID -> one bill with its lines and extras
func (bc *BillController) GetBillByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("bill_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid bill id"))
		return
	}

	var bill models.Bill
	if err := bc.DB.
		Preload("BillItems.Item").
		Preload("BillItems.Category").
		Preload("BillItems.Extras.Item").
		First(&bill, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Bill detail", bill)
}

// SearchBills -> find active bills by customer name, server username or
// "#<id>".
func (bc *BillController) SearchBills(c *gin.Context) {
	search := c.Query("q")

	q := bc.DB.Where("deleted_by = ?", "")
	if m := billIDPattern.FindStringSubmatch(search); m != nil {
		id, _ := strconv.Atoi(m[1])
		q = q.Where("id = ?", id)
	} else if search != "" {
		like := "%" + search + "%"
		q = q.Where("server LIKE ? OR customer_name LIKE ?", like, like)
	}

	var bills []models.Bill
	if err := q.Order("date desc").Find(&bills).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Search results", bills)
}

// GetBillPDF -> the printable kitchen ticket for a bill
func (bc *BillController) GetBillPDF(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("bill_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid bill id"))
		return
	}

	pdf, err := bc.tickets.RenderTicket(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=bill-%d.pdf", id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// actingUser resolves the username behind the request token; it becomes
// the server identity recorded on the bill.
func (bc *BillController) actingUser(c *gin.Context) (string, error) {
	userID, ok := currentUserID(c)
	if !ok {
		return "", errors.New("user id not found in context")
	}
	var user models.User
	if err := bc.DB.First(&user, userID).Error; err != nil {
		return "", errors.New("unknown user")
	}
	return user.Name, nil
}
