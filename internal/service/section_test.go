package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pirouette/content/internal/store"
	"github.com/pirouette/content/internal/tester"
)

func TestSectionService_SaveAndList(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	sections := NewSectionService(store.NewGormStore(tester.TestDB()))
	pageID := uuid.New().String()

	err := sections.SaveSection(context.TODO(), Section{
		PageID:     pageID,
		SectionID:  "hero",
		Content:    map[string]interface{}{"headline": "Welcome"},
		OrderIndex: 1,
	})
	assert.NoError(t, err)

	err = sections.SaveSection(context.TODO(), Section{
		PageID:     pageID,
		SectionID:  "testimonials",
		Content:    map[string]interface{}{"quotes": []interface{}{}},
		OrderIndex: 0,
	})
	assert.NoError(t, err)

	listed, err := sections.ListSections(context.TODO(), pageID)
	assert.NoError(t, err)
	assert.Len(t, listed, 2)

	// display order, not insertion order
	assert.Equal(t, "testimonials", listed[0].SectionID)
	assert.Equal(t, "hero", listed[1].SectionID)
	assert.Equal(t, "Welcome", listed[1].Content["headline"])
}

func TestSectionService_SaveSection_Upsert(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	sections := NewSectionService(store.NewGormStore(tester.TestDB()))
	pageID := uuid.New().String()

	err := sections.SaveSection(context.TODO(), Section{
		PageID:    pageID,
		SectionID: "hero",
		Content:   map[string]interface{}{"headline": "First"},
	})
	assert.NoError(t, err)

	err = sections.SaveSection(context.TODO(), Section{
		PageID:    pageID,
		SectionID: "hero",
		Content:   map[string]interface{}{"headline": "Second"},
	})
	assert.NoError(t, err)

	listed, err := sections.ListSections(context.TODO(), pageID)
	assert.NoError(t, err)
	assert.Len(t, listed, 1)
	assert.Equal(t, "Second", listed[0].Content["headline"])
}

func TestSectionService_DeactivateSection(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	sections := NewSectionService(store.NewGormStore(tester.TestDB()))
	pageID := uuid.New().String()

	err := sections.SaveSection(context.TODO(), Section{
		PageID:    pageID,
		SectionID: "hero",
		Content:   map[string]interface{}{"headline": "Welcome"},
	})
	assert.NoError(t, err)

	err = sections.DeactivateSection(context.TODO(), pageID, "hero")
	assert.NoError(t, err)

	listed, err := sections.ListSections(context.TODO(), pageID)
	assert.NoError(t, err)
	assert.Empty(t, listed)

	// saving again reactivates the record
	err = sections.SaveSection(context.TODO(), Section{
		PageID:    pageID,
		SectionID: "hero",
		Content:   map[string]interface{}{"headline": "Back"},
	})
	assert.NoError(t, err)

	listed, err = sections.ListSections(context.TODO(), pageID)
	assert.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestSectionService_DeactivateSection_Missing(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	sections := NewSectionService(store.NewGormStore(tester.TestDB()))

	err := sections.DeactivateSection(context.TODO(), uuid.New().String(), "hero")
	assert.ErrorIs(t, err, ErrSectionNotFound)
}
