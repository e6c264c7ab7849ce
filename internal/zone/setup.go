package zone

import "gorm.io/gorm"

// Migrate creates or updates the polygons and zones tables.
func Migrate(d *gorm.DB) error {
	return d.AutoMigrate(&Polygon{}, &Zone{})
}
