package models

// BillItemExtra is an add-on sold in the context of one specific order
// line, with its own captured price and stock accounting.
type BillItemExtra struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	BillItemID uint     `gorm:"not null;index" json:"bill_item_id"`
	BillItem   BillItem `gorm:"foreignKey:BillItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ItemID     uint     `gorm:"not null" json:"item_id"`
	Item       Item     `gorm:"foreignKey:ItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"item"`
	Quantity   int      `gorm:"not null" json:"quantity"`
	ItemPrice  float64  `gorm:"type:decimal(12,2);not null" json:"item_price"`
}

// TotalCost is the extra cost at the captured price.
func (e *BillItemExtra) TotalCost() float64 {
	return float64(e.Quantity) * e.ItemPrice
}
