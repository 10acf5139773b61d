package database

import (
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/lonfo/webpos/models"
	"github.com/lonfo/webpos/utils"
)

// Seed creates the admin user and a starter catalog on an empty database.
// Safe to run on every boot.
func Seed(db *gorm.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	return seedCatalog(db)
}

func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:     "admin",
		Email:    getenvDefault("ADMIN_EMAIL", "admin@localhost"),
		Password: string(hashed),
		Role:     "admin",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	utils.InfoLogger.Println("Admin user seeded")
	return nil
}

func seedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := []models.Category{
		{Name: "Beverages", Priority: 10, Enabled: true, Printable: false},
		{Name: "Kitchen", Priority: 20, Enabled: true, Printable: true},
		{Name: "Toppings", Priority: 30, Enabled: true, Printable: true},
	}
	for i := range categories {
		if err := db.Create(&categories[i]).Error; err != nil {
			return err
		}
	}

	intp := func(n int) *int { return &n }
	items := []models.Item{
		{Name: "Coca Cola", CategoryID: &categories[0].ID, Quantity: intp(48), Price: 3.50, Priority: 10, Enabled: true},
		{Name: "Still Water", CategoryID: &categories[0].ID, Quantity: nil, Price: 1.00, Priority: 20, Enabled: true},
		{Name: "Margherita", CategoryID: &categories[1].ID, Quantity: intp(30), Price: 5.00, Priority: 10, Enabled: true},
		{Name: "Pasta al ragu", CategoryID: &categories[1].ID, Quantity: intp(25), Price: 8.50, Priority: 20, Enabled: true},
		{Name: "Hot Peppers", CategoryID: &categories[2].ID, Quantity: nil, Price: 0.50, Priority: 10, Enabled: true, Extra: true},
		{Name: "Anchovies", CategoryID: &categories[2].ID, Quantity: intp(40), Price: 1.50, Priority: 20, Enabled: true, Extra: true},
	}
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			return err
		}
	}

	utils.InfoLogger.Println("Starter catalog seeded")
	return nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
