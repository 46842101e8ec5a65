package model

import "gorm.io/gorm"

// MaxPageBackups caps the version history per page. The oldest backup is
// evicted once the cap is exceeded.
const MaxPageBackups = 10

// PageBackup is a snapshot of a page document taken before each update.
// Versions are strictly increasing per (slug, client_id).
type PageBackup struct {
	gorm.Model
	Slug        string `gorm:"index:idx_backup_page;not null"`
	ClientID    string `gorm:"index:idx_backup_page"`
	Version     int64  `gorm:"not null"`
	Data        string `gorm:""`
	UpdatedBy   string
	Comment     string
	Compression string
}

func (PageBackup) TableName() string {
	return "page_backups"
}
