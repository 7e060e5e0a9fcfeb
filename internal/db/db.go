package db

import (
	"github.com/Hasninemamud/AuctionCraft/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func Open(dsn string) (*gorm.DB, error) {
	database, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := database.AutoMigrate(
		&models.User{},
		&models.OTPCode{},
		&models.RefreshToken{},
		&models.Category{},
		&models.Product{},
		&models.Bid{},
		&models.Notification{},
	); err != nil {
		return nil, err
	}

	return database, nil
}
