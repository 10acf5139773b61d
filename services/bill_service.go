package services

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lonfo/webpos/models"
	"github.com/lonfo/webpos/utils"
)

// ErrUnknownItem is returned when a request references an item name that
// does not exist in the catalog. This is a request-format defect, not a
// stock shortfall, and never produces an entry in the errors map.
var ErrUnknownItem = errors.New("unknown item in request")

// ErrBillNotFound is returned by Undo for an id with no matching bill.
var ErrBillNotFound = errors.New("bill not found")

type BillService struct {
	DB *gorm.DB
}

func NewBillService(db *gorm.DB) *BillService {
	return &BillService{DB: db}
}

// ExtraRequest is one add-on line under an order line.
type ExtraRequest struct {
	Qty int `json:"qty" binding:"required,gt=0"`
}

// BillItemRequest is one order line, naming the item by its unique name.
type BillItemRequest struct {
	Name   string                  `json:"name" binding:"required"`
	Qty    int                     `json:"qty" binding:"required,gt=0"`
	Notes  string                  `json:"notes"`
	Extras map[string]ExtraRequest `json:"extras" binding:"omitempty,dive"`
}

// BillRequest is a proposed order as posted by the order page.
type BillRequest struct {
	CustomerName string            `json:"customer_name" binding:"required"`
	Items        []BillItemRequest `json:"items" binding:"required,min=1,dive"`
}

// BillResult is the commit outcome. On refusal Errors maps each
// over-requested item name to its current stock level and every other
// field is zero; on success Errors is empty.
type BillResult struct {
	Errors     map[string]int `json:"errors"`
	CustomerID *string        `json:"customer_id"`
	Date       *time.Time     `json:"date"`
	Total      float64        `json:"total"`
	BillID     uint           `json:"billid,omitempty"`
	PDFURL     string         `json:"pdf_url,omitempty"`
}

// Commit validates the requested quantities against live stock, and either
// persists the whole bill (decrementing every tracked item it touches) or
// refuses the whole order reporting per-item shortfalls. Runs as a single
// transaction; every referenced item row is write-locked, in name order,
// before any line is evaluated.
func (s *BillService) Commit(req BillRequest, server string) (BillResult, error) {
	var result BillResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		r, err := commitBill(tx, req, server)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return BillResult{}, err
	}
	if len(result.Errors) > 0 {
		utils.InfoLogger.Printf("Bill refused for %q: %d item(s) short", req.CustomerName, len(result.Errors))
	} else {
		utils.InfoLogger.Printf("Bill #%d committed by %s, total %s", result.BillID, server, utils.FormatCurrency(result.Total))
	}
	return result, nil
}

// Undo reverses a previously committed bill: restores the stock consumed
// by its lines and extras and marks the bill as deleted by the acting
// user. Reversing an already-reversed bill is a no-op with a message.
func (s *BillService) Undo(billID string, server string) (string, error) {
	id, err := strconv.Atoi(billID)
	if err != nil {
		return "", fmt.Errorf("invalid bill id %q", billID)
	}

	var msg string
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var bill models.Bill
		if err := tx.Preload("BillItems.Extras").First(&bill, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBillNotFound
			}
			return err
		}
		if !bill.IsCommitted() {
			msg = "Bill has already been deleted!"
			return nil
		}

		// Lock the same item rows the committer locked, in the same
		// order, so a concurrent commit never reads mid-reversal stock.
		ids := make(map[uint]bool)
		for _, bi := range bill.BillItems {
			ids[bi.ItemID] = true
			for _, ex := range bi.Extras {
				ids[ex.ItemID] = true
			}
		}
		idList := make([]uint, 0, len(ids))
		for itemID := range ids {
			idList = append(idList, itemID)
		}
		var rows []models.Item
		if err := withRowLock(tx).
			Where("id IN ?", idList).
			Order("name").
			Find(&rows).Error; err != nil {
			return err
		}
		items := make(map[uint]*models.Item, len(rows))
		for i := range rows {
			items[rows[i].ID] = &rows[i]
		}

		for _, bi := range bill.BillItems {
			restock(items[bi.ItemID], bi.Quantity)
			for _, ex := range bi.Extras {
				restock(items[ex.ItemID], ex.Quantity)
			}
		}
		for _, item := range items {
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Bill{}).Where("id = ?", bill.ID).
			Update("deleted_by", server).Error; err != nil {
			return err
		}
		msg = fmt.Sprintf("Bill #%d deleted!", bill.ID)
		return nil
	})
	if err != nil {
		return "", err
	}
	utils.InfoLogger.Printf("Undo bill %s by %s: %s", billID, server, msg)
	return msg, nil
}

// commitBill evaluates and persists one order inside the given
// transaction. The tx handle is passed explicitly so every store access
// shares the same scope and locks.
func commitBill(tx *gorm.DB, req BillRequest, server string) (BillResult, error) {
	items, err := lockItemsByName(tx, collectNames(req))
	if err != nil {
		return BillResult{}, err
	}

	shortfalls := make(map[string]int)
	bill := models.Bill{CustomerName: req.CustomerName, Server: server}
	var billItems []*models.BillItem
	type pendingExtra struct {
		parent *models.BillItem
		extra  models.BillItemExtra
	}
	var pendingExtras []pendingExtra

	for _, line := range req.Items {
		item := items[line.Name]
		billItem := &models.BillItem{
			ItemID:     item.ID,
			CategoryID: item.CategoryID,
			Quantity:   line.Qty,
			ItemPrice:  item.Price,
			Note:       line.Notes,
		}
		if consume(item, line.Qty) {
			bill.Total += billItem.TotalCost()
			billItems = append(billItems, billItem)
		} else {
			shortfalls[item.Name] = *item.Quantity
		}

		// Extras compete for the same pooled stock as every other line
		// in this order; one rejection never short-circuits the rest.
		for _, name := range sortedExtraNames(line.Extras) {
			extraItem := items[name]
			extra := models.BillItemExtra{
				ItemID:    extraItem.ID,
				Quantity:  line.Extras[name].Qty,
				ItemPrice: extraItem.Price,
			}
			if consume(extraItem, extra.Quantity) {
				bill.Total += extra.TotalCost()
				pendingExtras = append(pendingExtras, pendingExtra{parent: billItem, extra: extra})
			} else {
				shortfalls[extraItem.Name] = *extraItem.Quantity
			}
		}
	}

	if len(shortfalls) > 0 {
		// Whole order refused: the tentative in-memory decrements above
		// are discarded, nothing has been written.
		return BillResult{Errors: shortfalls, Total: 0}, nil
	}

	for _, item := range items {
		if err := tx.Save(item).Error; err != nil {
			return BillResult{}, err
		}
	}
	if bill.Total < 0 {
		bill.Total = 0
	}
	code := pickupCode()
	bill.CustomerID = &code
	if err := tx.Create(&bill).Error; err != nil {
		return BillResult{}, err
	}
	for _, billItem := range billItems {
		billItem.BillID = bill.ID
		if err := tx.Create(billItem).Error; err != nil {
			return BillResult{}, err
		}
	}
	for _, pending := range pendingExtras {
		pending.extra.BillItemID = pending.parent.ID
		if err := tx.Create(&pending.extra).Error; err != nil {
			return BillResult{}, err
		}
	}

	return BillResult{
		Errors:     map[string]int{},
		CustomerID: bill.CustomerID,
		Date:       &bill.Date,
		Total:      bill.Total,
		BillID:     bill.ID,
	}, nil
}

// lockItemsByName fetches the named item rows with an exclusive row lock,
// acquired in name order so concurrent commits over overlapping item sets
// cannot deadlock. A name with no catalog row is ErrUnknownItem.
func lockItemsByName(tx *gorm.DB, names []string) (map[string]*models.Item, error) {
	var rows []models.Item
	if err := withRowLock(tx).
		Where("name IN ?", names).
		Order("name").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make(map[string]*models.Item, len(rows))
	for i := range rows {
		items[rows[i].Name] = &rows[i]
	}
	for _, name := range names {
		if _, ok := items[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownItem, name)
		}
	}
	return items, nil
}

// withRowLock adds SELECT ... FOR UPDATE where the dialect supports it.
// SQLite has no row locks; its single-writer transaction covers the same
// ground there.
func withRowLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// collectNames returns the distinct item names referenced anywhere in the
// request, sorted.
func collectNames(req BillRequest) []string {
	seen := make(map[string]bool)
	for _, line := range req.Items {
		seen[line.Name] = true
		for name := range line.Extras {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedExtraNames(extras map[string]ExtraRequest) []string {
	names := make([]string, 0, len(extras))
	for name := range extras {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// consume tentatively takes qty units off the item's in-memory stock.
// Untracked items always accept without mutation.
func consume(item *models.Item, qty int) bool {
	if item.Quantity == nil {
		return true
	}
	remaining := *item.Quantity - qty
	if remaining < 0 {
		return false
	}
	*item.Quantity = remaining
	return true
}

func restock(item *models.Item, qty int) {
	if item == nil || item.Quantity == nil {
		return
	}
	*item.Quantity += qty
}

// pickupCode generates the short code handed to the customer to collect
// the order.
func pickupCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
