package model

import "gorm.io/gorm"

// SectionContent is the section-granular storage model. One row per
// (page_id, section_id); inactive rows are excluded from resolution.
type SectionContent struct {
	gorm.Model
	PageID     string `gorm:"uniqueIndex:idx_section_page;not null"`
	SectionID  string `gorm:"uniqueIndex:idx_section_page;not null"`
	Content    string `gorm:"not null"`
	OrderIndex int    `gorm:"not null;default:0"`
	IsActive   bool   `gorm:"not null;default:true"`
}

func (SectionContent) TableName() string {
	return "section_contents"
}
