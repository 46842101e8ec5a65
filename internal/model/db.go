package model

import "gorm.io/gorm"

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&PageContent{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&SectionContent{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&PageBackup{}); err != nil {
		return err
	}

	return nil
}
