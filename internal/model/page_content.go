package model

import (
	"encoding/json"

	"gorm.io/gorm"
)

// PageContent is the canonical content document for a page or shared region.
// At most one row exists per (slug, client_id). Rows with an empty ClientID
// are legacy unscoped documents: readable as a fallback, never written.
type PageContent struct {
	gorm.Model
	Slug        string `gorm:"uniqueIndex:idx_page_slug_client;not null"`
	ClientID    string `gorm:"uniqueIndex:idx_page_slug_client"`
	Version     int64
	Data        string `gorm:"not null"` // page-specific JSON payload
	Compression string // codec used to encode Data
}

// Compressed payloads are not valid UTF-8, so Data crosses the cache and
// queue wire as base64.
func (p *PageContent) MarshalJSON() ([]byte, error) {
	type alias PageContent
	return json.Marshal(&struct {
		*alias
		Data []byte
	}{alias: (*alias)(p), Data: []byte(p.Data)})
}

func (p *PageContent) UnmarshalJSON(data []byte) error {
	type alias PageContent
	aux := struct {
		*alias
		Data []byte
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Data = string(aux.Data)

	return nil
}

func (p *PageContent) MarshalBinary() ([]byte, error) {
	return json.Marshal(p)
}
