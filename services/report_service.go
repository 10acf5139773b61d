package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/lonfo/webpos/models"
)

type ReportService struct {
	DB *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db}
}

// ReportFilter narrows the sales report window. Zero values leave the
// corresponding constraint open.
type ReportFilter struct {
	DateStart  *time.Time
	DateEnd    *time.Time
	Servers    []string
	Categories []string
}

// ItemSales is the aggregate for one catalog item within a category.
type ItemSales struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// CategorySales is the aggregate for one category.
type CategorySales struct {
	Name      string      `json:"name"`
	ItemsSold int         `json:"items_sold"`
	Revenue   float64     `json:"revenue"`
	Items     []ItemSales `json:"items"`
}

// SalesReport sums quantities and revenue over all non-reversed bills in
// the filter window.
type SalesReport struct {
	Categories  []CategorySales `json:"categories"`
	BillCount   int             `json:"bill_count"`
	TotalEarned float64         `json:"total_earned"`
	TotalCash   float64         `json:"total_cash"`
}

// SalesFor scans non-reversed bills matching the filter and aggregates
// sold quantities and revenue per item and per captured category. Extras
// count at their own quantity, under the parent line's category.
// Read-only: never touches the order core.
func (s *ReportService) SalesFor(filter ReportFilter) (*SalesReport, error) {
	q := s.DB.Model(&models.Bill{}).Where("deleted_by = ?", "")
	if filter.DateStart != nil {
		q = q.Where("date >= ?", *filter.DateStart)
	}
	if filter.DateEnd != nil {
		q = q.Where("date <= ?", *filter.DateEnd)
	}
	if len(filter.Servers) > 0 {
		q = q.Where("server IN ?", filter.Servers)
	}

	var bills []models.Bill
	if err := q.
		Preload("BillItems.Item").
		Preload("BillItems.Category").
		Preload("BillItems.Extras.Item").
		Find(&bills).Error; err != nil {
		return nil, err
	}

	report := &SalesReport{BillCount: len(bills)}
	type catAgg struct {
		name      string
		priority  uint
		itemsSold int
		revenue   float64
		items     map[string]*ItemSales
	}
	cats := make(map[string]*catAgg)
	agg := func(categoryName string, priority uint, itemName string, qty int, revenue float64) {
		cat, ok := cats[categoryName]
		if !ok {
			cat = &catAgg{name: categoryName, priority: priority, items: make(map[string]*ItemSales)}
			cats[categoryName] = cat
		}
		cat.itemsSold += qty
		cat.revenue += revenue
		entry, ok := cat.items[itemName]
		if !ok {
			entry = &ItemSales{Name: itemName}
			cat.items[itemName] = entry
		}
		entry.Quantity += qty
		entry.Revenue += revenue
	}

	for _, bill := range bills {
		report.TotalCash += bill.Total
		for _, line := range bill.BillItems {
			catName, catPriority := "(uncategorized)", uint(0)
			if line.Category != nil {
				catName, catPriority = line.Category.Name, line.Category.Priority
			}
			agg(catName, catPriority, line.Item.Name, line.Quantity, line.TotalCost())
			report.TotalEarned += line.TotalCost()
			for _, extra := range line.Extras {
				agg(catName, catPriority, extra.Item.Name, extra.Quantity, extra.TotalCost())
				report.TotalEarned += extra.TotalCost()
			}
		}
	}

	wanted := make(map[string]bool, len(filter.Categories))
	for _, name := range filter.Categories {
		wanted[name] = true
	}
	ordered := make([]*catAgg, 0, len(cats))
	for _, cat := range cats {
		if len(wanted) > 0 && !wanted[cat.name] {
			continue
		}
		ordered = append(ordered, cat)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].priority != ordered[j].priority {
			return ordered[i].priority < ordered[j].priority
		}
		return ordered[i].name < ordered[j].name
	})
	for _, cat := range ordered {
		entry := CategorySales{Name: cat.name, ItemsSold: cat.itemsSold, Revenue: cat.revenue}
		for _, item := range cat.items {
			entry.Items = append(entry.Items, *item)
		}
		sort.Slice(entry.Items, func(i, j int) bool { return entry.Items[i].Name < entry.Items[j].Name })
		report.Categories = append(report.Categories, entry)
	}
	return report, nil
}
