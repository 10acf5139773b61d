package models

import "time"

// Category groups items by area (kitchen, beverages, ...). Priority drives
// display order; Printable decides whether the category shows up on the
// kitchen ticket body.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(30);unique;not null" json:"name"`
	Priority  uint      `gorm:"not null;default:10" json:"priority"`
	Enabled   bool      `gorm:"not null" json:"enabled"`
	Printable bool      `gorm:"not null" json:"printable"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
