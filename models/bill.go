package models

import "time"

// Bill stores a whole order made by one customer. Bills are never hard
// deleted: a reversal sets DeletedBy to the username that undid it and
// restores the consumed stock.
type Bill struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CustomerID   *string    `gorm:"type:varchar(20)" json:"customer_id,omitempty"`
	CustomerName string     `gorm:"type:varchar(40);not null" json:"customer_name"`
	Date         time.Time  `gorm:"not null;autoCreateTime" json:"date"`
	Total        float64    `gorm:"type:decimal(12,2);not null" json:"total"`
	Server       string     `gorm:"type:varchar(40);not null" json:"server"`
	DeletedBy    string     `gorm:"type:varchar(40);not null;default:''" json:"deleted_by"`
	BillItems    []BillItem `gorm:"foreignKey:BillID" json:"bill_items,omitempty"`
}

// IsCommitted reports whether the bill is still active (not reversed).
func (b *Bill) IsCommitted() bool {
	return b.DeletedBy == ""
}
