// Package search filters the item catalog for the public search surface.
package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// DateLayout is the accepted format of the date criterion.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Criteria selects items. Every set field must match.
type Criteria struct {
	// Date matches items lost on that calendar day.
	Date *Date
	// Description matches the item description or name.
	Description string
	Color       string
	Brand       string
	// NameHint matches the item name (the kind of object).
	NameHint string

	// Text matches any of name, description, color or brand.
	Text string
	// Status matches the item status exactly.
	Status string

	// Location is the time zone dates are compared in. Nil means UTC.
	Location *time.Location
}

// Empty reports whether no criterion is set.
func (c Criteria) Empty() bool {
	return c.Date == nil && c.Description == "" && c.Color == "" && c.Brand == "" &&
		c.NameHint == "" && c.Text == "" && c.Status == ""
}

// Matches reports whether item satisfies every set criterion.
func Matches(item model.Item, c Criteria) bool {
	if c.Date != nil {
		loc := c.Location
		if loc == nil {
			loc = time.UTC
		}
		if DateOf(item.LostAt, loc) != *c.Date {
			return false
		}
	}
	if c.Description != "" && !contains(item.Description, c.Description) && !contains(item.Name, c.Description) {
		return false
	}
	if c.Color != "" && !contains(item.Color, c.Color) {
		return false
	}
	if c.Brand != "" && !contains(item.Brand, c.Brand) {
		return false
	}
	if c.NameHint != "" && !contains(item.Name, c.NameHint) {
		return false
	}
	if c.Text != "" && !contains(item.Name, c.Text) && !contains(item.Description, c.Text) &&
		!contains(item.Color, c.Text) && !contains(item.Brand, c.Text) {
		return false
	}
	if c.Status != "" && item.Status != c.Status {
		return false
	}
	return true
}

// Filter returns the items matching c, preserving order.
func Filter(items []model.Item, c Criteria) []model.Item {
	if c.Empty() {
		return items
	}
	var out []model.Item
	for _, item := range items {
		if Matches(item, c) {
			out = append(out, item)
		}
	}
	return out
}

func contains(field, term string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(term))
}

// Service runs searches against the item store. It never mutates items.
type Service struct {
	DB *sqlx.DB
	// Location is used for date criteria that do not carry their own.
	Location *time.Location
}

// Search returns the items matching c in insertion order.
func (s *Service) Search(ctx context.Context, c Criteria) ([]model.Item, error) {
	if c.Location == nil {
		c.Location = s.Location
	}
	// Status is pushed down to the store; the rest is matched in memory.
	items, err := store.ListItems(ctx, s.DB, c.Status)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	return Filter(items, c), nil
}

// ParseCriteria builds criteria from query parameters: date (YYYY-MM-DD),
// description, color, brand, name, q and status.
func ParseCriteria(v url.Values, loc *time.Location) (Criteria, error) {
	c := Criteria{
		Description: strings.TrimSpace(v.Get("description")),
		Color:       strings.TrimSpace(v.Get("color")),
		Brand:       strings.TrimSpace(v.Get("brand")),
		NameHint:    strings.TrimSpace(v.Get("name")),
		Text:        strings.TrimSpace(v.Get("q")),
		Status:      strings.TrimSpace(v.Get("status")),
		Location:    loc,
	}

	if raw := strings.TrimSpace(v.Get("date")); raw != "" {
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			return Criteria{}, &model.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
		}
		d := DateOf(t, time.UTC)
		c.Date = &d
	}

	if c.Status != "" && !model.ValidItemStatus(c.Status) {
		return Criteria{}, &model.ValidationError{Field: "status", Reason: "unknown item status"}
	}

	return c, nil
}
