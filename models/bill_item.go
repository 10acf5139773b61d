package models

// BillItem is a single order line inside a bill. Category and ItemPrice
// are captured at the time of sale, so later catalog edits never change
// historical bills. The referenced Item is never cascade-deleted with it.
type BillItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	BillID     uint            `gorm:"not null;index" json:"bill_id"`
	Bill       Bill            `gorm:"foreignKey:BillID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ItemID     uint            `gorm:"not null" json:"item_id"`
	Item       Item            `gorm:"foreignKey:ItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"item"`
	CategoryID *uint           `json:"category_id,omitempty"`
	Category   *Category       `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"category,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	ItemPrice  float64         `gorm:"type:decimal(12,2);not null" json:"item_price"`
	Note       string          `gorm:"type:varchar(200);not null;default:''" json:"note"`
	Extras     []BillItemExtra `gorm:"foreignKey:BillItemID" json:"extras,omitempty"`
}

// TotalCost is the line cost at the captured price.
func (bi *BillItem) TotalCost() float64 {
	return float64(bi.Quantity) * bi.ItemPrice
}
