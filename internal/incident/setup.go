package incident

import "gorm.io/gorm"

// Migrate creates or updates the incidents table. The zone tables must
// already exist.
func Migrate(d *gorm.DB) error {
	return d.AutoMigrate(&Incident{})
}
