package service

import "errors"

var (
	// ErrPageNotFound is returned when no document exists for a page.
	ErrPageNotFound = errors.New("page not found")
	// ErrVersionNotFound is returned when a page has no backup at the requested version.
	ErrVersionNotFound = errors.New("page version not found")
	// ErrSectionNotFound is returned when no section exists for (page, section).
	ErrSectionNotFound = errors.New("section not found")
	// ErrRouteMissing is returned when a file-content request omits the route.
	ErrRouteMissing = errors.New("route is required")
	// ErrSlugMissing is returned when a page request omits the slug.
	ErrSlugMissing = errors.New("slug is required")
	// ErrDataCorrupted is returned when a stored payload cannot be decoded.
	ErrDataCorrupted = errors.New("page data is corrupted")
)
