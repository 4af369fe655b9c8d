package model

import "time"

// Person identifies a user as recorded on items and issues.
type Person struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

// Item is a reported lost object.
type Item struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Color       string    `json:"color" db:"color"`
	Brand       string    `json:"brand,omitempty" db:"brand"`
	UniqueID    string    `json:"unique_id,omitempty" db:"unique_id"`
	LostAt      time.Time `json:"lost_at" db:"lost_at"`
	Location    string    `json:"location" db:"location"`
	Image       string    `json:"image,omitempty" db:"image"`
	Status      string    `json:"status" db:"status"`
	ReportedBy  Person    `json:"reported_by" db:"reporter"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// NewItem holds the fields a reporter supplies.
type NewItem struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Brand       string    `json:"brand"`
	UniqueID    string    `json:"unique_id"`
	LostAt      time.Time `json:"lost_at"`
	Location    string    `json:"location"`
	Image       string    `json:"image"`
	ReportedBy  Person    `json:"-"`
}

// Validate checks that every required descriptive field is present.
func (n NewItem) Validate() error {
	switch {
	case isBlank(n.Name):
		return &ValidationError{Field: "name", Reason: "required"}
	case isBlank(n.Description):
		return &ValidationError{Field: "description", Reason: "required"}
	case isBlank(n.Color):
		return &ValidationError{Field: "color", Reason: "required"}
	case isBlank(n.Location):
		return &ValidationError{Field: "location", Reason: "required"}
	case n.LostAt.IsZero():
		return &ValidationError{Field: "lost_at", Reason: "required"}
	}
	return nil
}

// ItemTombstone records a deleted item so issues referencing it stay auditable.
type ItemTombstone struct {
	ItemID    string    `json:"item_id" db:"item_id"`
	Name      string    `json:"name" db:"name"`
	DeletedAt time.Time `json:"deleted_at" db:"deleted_at"`
	DeletedBy string    `json:"deleted_by" db:"deleted_by"`
}

// Item statuses, in order of progress.
const (
	ItemStatusLost    = "lost"
	ItemStatusFound   = "found"
	ItemStatusMatched = "matched"
	ItemStatusClaimed = "claimed"
)

// ItemStatuses lists every item status in order of progress.
var ItemStatuses = []string{ItemStatusLost, ItemStatusFound, ItemStatusMatched, ItemStatusClaimed}

// ValidItemStatus reports whether s is a known item status.
func ValidItemStatus(s string) bool {
	_, ok := itemStatusRank[s]
	return ok
}

var itemStatusRank = map[string]int{
	ItemStatusLost:    1,
	ItemStatusFound:   2,
	ItemStatusMatched: 3,
	ItemStatusClaimed: 4,
}

// ItemStatusAtLeast checks if status has progressed to at least minimum.
// Unknown statuses never satisfy the check.
func ItemStatusAtLeast(status, minimum string) bool {
	s, ok := itemStatusRank[status]
	if !ok {
		return false
	}
	m, ok := itemStatusRank[minimum]
	if !ok {
		return false
	}
	return s >= m
}
