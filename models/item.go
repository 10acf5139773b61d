package models

import "time"

// Item is a sellable product. Quantity is nil for items with untracked
// stock (always available); when non-nil it is never negative.
type Item struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(30);unique;not null" json:"name"`
	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"category,omitempty"`
	Quantity   *int      `json:"quantity,omitempty"`
	Priority   uint      `gorm:"not null;default:10" json:"priority"`
	Enabled    bool      `gorm:"not null" json:"enabled"`
	Extra      bool      `gorm:"not null;default:false" json:"extra"`
	Price      float64   `gorm:"type:decimal(6,2);not null" json:"price"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// IsAvailable reports whether the item can still be sold.
func (i *Item) IsAvailable() bool {
	return i.Quantity == nil || *i.Quantity > 0
}
