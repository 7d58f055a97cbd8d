// Package models holds the domain types shared by the service, storage and transport layers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// AnonymousOwner is the owner recorded for links created without an authenticated user.
const AnonymousOwner = "anonymous"

// Sort fields accepted by URLFilter.SortBy.
const (
	SortByCreatedAt = "createdAt"
	SortByClicks    = "clicks"
	SortByURL       = "url"
	SortByShortCode = "shortCode"
)

// Sort orders accepted by URLFilter.SortOrder.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// URL represents a shortened URL and its associated metadata.
type URL struct {
	// ID is the unique identifier assigned by the store.
	ID uuid.UUID
	// ShortCode is the token that resolves to OriginalURL. Unique across all records.
	ShortCode string
	// OriginalURL is the original, full-length URL that the short code points to.
	OriginalURL string
	// OwnerID identifies the user that created the record.
	OwnerID string
	// Clicks counts successful redirects.
	Clicks int64
	// Title is an optional human-readable label.
	Title *string
	// Description is an optional free-form note.
	Description *string
	// IsActive reports whether redirects are allowed.
	IsActive bool
	// ExpiresAt is the optional moment after which redirects are refused.
	ExpiresAt *time.Time
	// CreatedAt is the timestamp indicating when the record was created.
	CreatedAt time.Time
	// UpdatedAt is the timestamp indicating when the record was last mutated.
	UpdatedAt time.Time
}

// Expired reports whether the URL has an expiry at or before now.
func (u *URL) Expired(now time.Time) bool {
	return u.ExpiresAt != nil && !u.ExpiresAt.After(now)
}

// Redirectable reports whether visitors may be redirected to the original URL.
func (u *URL) Redirectable(now time.Time) bool {
	return u.IsActive && !u.Expired(now)
}

// NewURL is the input of a create operation.
type NewURL struct {
	OriginalURL     string
	OwnerID         string
	CustomShortCode string
	Title           *string
	Description     *string
	ExpiresAt       *time.Time
}

// URLUpdate carries the mutable fields of a URL. Nil fields are left untouched.
type URLUpdate struct {
	Title       *string
	Description *string
	IsActive    *bool
	ExpiresAt   *time.Time
}

// Empty reports whether the update changes nothing.
func (u URLUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.IsActive == nil && u.ExpiresAt == nil
}

// URLFilter controls listing of an owner's URLs.
type URLFilter struct {
	Page      int
	Limit     int
	Query     string
	SortBy    string
	SortOrder string
}

// Offset returns the number of records to skip for the filter's page.
func (f URLFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// Pagination describes the position of a page within the full result set.
type Pagination struct {
	Page  int
	Total int64
	Pages int
	Limit int
}

// URLPage is a single page of URLs plus pagination metadata.
type URLPage struct {
	Data       []*URL
	Pagination Pagination
}
