package models

import "gorm.io/gorm"

// AutoMigrate creates or updates every table the service reads or writes.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Market{},
		&Product{},
		&Variant{},
		&CartLine{},
	)
}
