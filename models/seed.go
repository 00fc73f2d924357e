package models

import (
	"time"

	"gorm.io/gorm"
)

// SeedAdmin inserts the initial operator account if the users table is
// empty. No-op when any user already exists or when credentials are unset.
func SeedAdmin(db *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	var count int64
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	admin := User{
		Username:  username,
		FullName:  "Quản trị hệ thống",
		Role:      "admin",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	return db.Create(&admin).Error
}
