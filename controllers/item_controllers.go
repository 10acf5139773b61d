package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lonfo/webpos/models"
	"github.com/lonfo/webpos/utils"
)

type ItemController struct {
	DB *gorm.DB
}

func NewItemController(db *gorm.DB) *ItemController {
	return &ItemController{DB: db}
}

// GetAllCategories -> enabled categories in display order
func (ic *ItemController) GetAllCategories(c *gin.Context) {
	var categories []models.Category
	if err := ic.DB.Where("enabled = ?", true).
		Order("priority, name").
		Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}

// GetOrderItems -> the order page payload: enabled non-extra items in
// display order, each carrying the extra items of its category.
func (ic *ItemController) GetOrderItems(c *gin.Context) {
	var items []models.Item
	if err := ic.DB.Preload("Category").
		Where("enabled = ? AND extra = ?", true, false).
		Order("category_id, priority, name").
		Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var extras []models.Item
	if err := ic.DB.Where("enabled = ? AND extra = ?", true, true).
		Order("priority, name").
		Find(&extras).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	extrasByCategory := make(map[uint][]models.Item)
	for _, extra := range extras {
		if extra.CategoryID != nil {
			extrasByCategory[*extra.CategoryID] = append(extrasByCategory[*extra.CategoryID], extra)
		}
	}

	type orderItem struct {
		models.Item
		AvailableExtras []models.Item `json:"available_extras,omitempty"`
	}
	page := make([]orderItem, 0, len(items))
	for _, item := range items {
		entry := orderItem{Item: item}
		if item.CategoryID != nil {
			entry.AvailableExtras = extrasByCategory[*item.CategoryID]
		}
		page = append(page, entry)
	}

	utils.RespondJSON(c, http.StatusOK, "Order page items", page)
}

// RefreshItems -> polled by the order page to refresh button quantities
// and prices. There is no push channel; this is the refresh mechanism.
func (ic *ItemController) RefreshItems(c *gin.Context) {
	var items []models.Item
	if err := ic.DB.Where("enabled = ?", true).Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type buttonState struct {
		Quantity *int    `json:"quantity"`
		Price    float64 `json:"price"`
	}
	buttons := make(map[string]buttonState, len(items))
	for _, item := range items {
		buttons[item.Name] = buttonState{Quantity: item.Quantity, Price: item.Price}
	}

	c.JSON(http.StatusOK, buttons)
}
