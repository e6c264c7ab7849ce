package user

import "gorm.io/gorm"

// Migrate creates or updates the users table.
func Migrate(d *gorm.DB) error {
	return d.AutoMigrate(&User{})
}
