package service

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/pirouette/content/internal/model"
	"github.com/pirouette/content/internal/store"
)

// Section is the external shape of a section content record.
type Section struct {
	PageID     string                 `json:"pageId"`
	SectionID  string                 `json:"sectionId"`
	Content    map[string]interface{} `json:"content"`
	OrderIndex int                    `json:"orderIndex"`
}

// NewSectionService creates a new SectionService.
func NewSectionService(store store.Store) *SectionService {
	return &SectionService{store: store}
}

// SectionService manages section-granular content records.
type SectionService struct {
	store store.Store
}

// ListSections returns the active sections of a page in display order.
func (s *SectionService) ListSections(ctx context.Context, pageID string) ([]Section, error) {
	records, err := s.store.ListSections(ctx, pageID)
	if err != nil {
		return nil, err
	}

	sections := make([]Section, 0, len(records))
	for _, record := range records {
		content := make(map[string]interface{})
		if record.Content != "" {
			if err := json.Unmarshal([]byte(record.Content), &content); err != nil {
				return nil, ErrDataCorrupted
			}
		}

		sections = append(sections, Section{
			PageID:     record.PageID,
			SectionID:  record.SectionID,
			Content:    content,
			OrderIndex: record.OrderIndex,
		})
	}

	return sections, nil
}

// SaveSection upserts the record for (pageID, sectionID), reactivating
// it if a previous deactivation left it inactive.
func (s *SectionService) SaveSection(ctx context.Context, section Section) error {
	if section.PageID == "" || section.SectionID == "" {
		return ErrSectionNotFound
	}

	content, err := json.Marshal(section.Content)
	if err != nil {
		return err
	}

	return s.store.SaveSection(ctx, &model.SectionContent{
		PageID:     section.PageID,
		SectionID:  section.SectionID,
		Content:    string(content),
		OrderIndex: section.OrderIndex,
		IsActive:   true,
	})
}

// DeactivateSection excludes a section from resolution without
// discarding its content.
func (s *SectionService) DeactivateSection(ctx context.Context, pageID, sectionID string) error {
	_, err := s.store.GetSection(ctx, pageID, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSectionNotFound
		}
		return err
	}

	return s.store.DeactivateSection(ctx, pageID, sectionID)
}
