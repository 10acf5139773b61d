package services

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"

	"github.com/lonfo/webpos/models"
	"github.com/lonfo/webpos/utils"
)

type TicketService struct {
	DB *gorm.DB
}

func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{DB: db}
}

// RenderTicket renders the kitchen ticket for a committed bill as a PDF.
// The header summarizes every line; the body repeats them grouped by
// captured category in priority order, skipping non-printable categories
// (e.g. beverages handled at the counter).
func (ts *TicketService) RenderTicket(billID uint) ([]byte, error) {
	var bill models.Bill
	if err := ts.DB.
		Preload("BillItems.Item").
		Preload("BillItems.Category").
		Preload("BillItems.Extras.Item").
		First(&bill, billID).Error; err != nil {
		return nil, err
	}

	ordered := ticketGroups(bill)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, fmt.Sprintf("Bill #%d - %s", bill.ID, bill.CustomerName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	customer := ""
	if bill.CustomerID != nil {
		customer = *bill.CustomerID
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Pickup %s | Server %s | %s", customer, bill.Server, bill.Date.Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Header: every line of the order, for the counter copy.
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Order summary", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, g := range ordered {
		for _, line := range g.lines {
			pdf.CellFormat(12, 6, fmt.Sprintf("%dx", line.Quantity), "", 0, "L", false, 0, "")
			pdf.CellFormat(120, 6, line.Item.Name, "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, utils.FormatCurrency(line.TotalCost()), "", 1, "R", false, 0, "")
			for _, extra := range line.Extras {
				pdf.CellFormat(12, 5, "", "", 0, "L", false, 0, "")
				pdf.CellFormat(120, 5, fmt.Sprintf("+ %dx %s", extra.Quantity, extra.Item.Name), "", 0, "L", false, 0, "")
				pdf.CellFormat(0, 5, utils.FormatCurrency(extra.TotalCost()), "", 1, "R", false, 0, "")
			}
		}
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(132, 7, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, utils.FormatCurrency(bill.Total), "T", 1, "R", false, 0, "")
	pdf.Ln(6)

	// Body: printable categories only, one block per station.
	for _, g := range ordered {
		if !g.printable {
			continue
		}
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, g.name, "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, line := range g.lines {
			pdf.CellFormat(12, 7, fmt.Sprintf("%dx", line.Quantity), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 7, line.Item.Name, "", 1, "L", false, 0, "")
			if line.Note != "" {
				pdf.SetFont("Helvetica", "I", 9)
				pdf.CellFormat(12, 5, "", "", 0, "L", false, 0, "")
				pdf.CellFormat(0, 5, line.Note, "", 1, "L", false, 0, "")
				pdf.SetFont("Helvetica", "", 11)
			}
			for _, extra := range line.Extras {
				pdf.CellFormat(12, 5, "", "", 0, "L", false, 0, "")
				pdf.CellFormat(0, 5, fmt.Sprintf("+ %dx %s", extra.Quantity, extra.Item.Name), "", 1, "L", false, 0, "")
			}
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type ticketGroup struct {
	name      string
	priority  uint
	printable bool
	lines     []models.BillItem
}

// ticketGroups buckets the bill's lines by captured category, in category
// priority order. Lines whose category was deleted keep printing under a
// fallback bucket.
func ticketGroups(bill models.Bill) []*ticketGroup {
	groups := make(map[string]*ticketGroup)
	for _, line := range bill.BillItems {
		name, priority, printable := "(uncategorized)", uint(0), true
		if line.Category != nil {
			name, priority, printable = line.Category.Name, line.Category.Priority, line.Category.Printable
		}
		g, ok := groups[name]
		if !ok {
			g = &ticketGroup{name: name, priority: priority, printable: printable}
			groups[name] = g
		}
		g.lines = append(g.lines, line)
	}
	ordered := make([]*ticketGroup, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].priority != ordered[j].priority {
			return ordered[i].priority < ordered[j].priority
		}
		return ordered[i].name < ordered[j].name
	})
	return ordered
}
