package search

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

var catalog = []model.Item{
	{
		ID: "1", Name: "Blue Nike Backpack", Description: "Medium-sized backpack with laptop compartment",
		Color: "Blue", Brand: "Nike", Status: model.ItemStatusLost,
		LostAt: time.Date(2023, 4, 15, 14, 30, 0, 0, time.UTC),
	},
	{
		ID: "2", Name: "Apple AirPods Pro", Description: "White wireless earphones with charging case",
		Color: "White", Brand: "Apple", Status: model.ItemStatusLost,
		LostAt: time.Date(2023, 4, 14, 9, 15, 0, 0, time.UTC),
	},
	{
		ID: "3", Name: "Ray-Ban Sunglasses", Description: "Black wayfarer sunglasses with case",
		Color: "Black", Brand: "Ray-Ban", Status: model.ItemStatusFound,
		LostAt: time.Date(2023, 4, 16, 16, 45, 0, 0, time.UTC),
	},
	{
		ID: "4", Name: "Water bottle", Description: "Navy BLUE steel bottle",
		Color: "Navy blue", Brand: "", Status: model.ItemStatusLost,
		LostAt: time.Date(2023, 4, 15, 23, 59, 0, 0, time.UTC),
	},
}

func ids(items []model.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func date(y int, m time.Month, d int) *Date {
	return &Date{Year: y, Month: m, Day: d}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"empty returns everything", Criteria{}, []string{"1", "2", "3", "4"}},
		{"color case-insensitive", Criteria{Color: "blue"}, []string{"1", "4"}},
		{"color upper", Criteria{Color: "BLUE"}, []string{"1", "4"}},
		{"brand substring", Criteria{Brand: "ray"}, []string{"3"}},
		{"description matches description", Criteria{Description: "earphones"}, []string{"2"}},
		{"description matches name", Criteria{Description: "airpods"}, []string{"2"}},
		{"name hint", Criteria{NameHint: "sunglasses"}, []string{"3"}},
		{"name hint ignores description", Criteria{NameHint: "laptop"}, nil},
		{"date by calendar day", Criteria{Date: date(2023, 4, 15)}, []string{"1", "4"}},
		{"date and color AND-ed", Criteria{Date: date(2023, 4, 15), Brand: "nike"}, []string{"1"}},
		{"no match", Criteria{Color: "purple"}, nil},
		{"text across fields", Criteria{Text: "apple"}, []string{"2"}},
		{"text matches color", Criteria{Text: "black"}, []string{"3"}},
		{"status", Criteria{Status: model.ItemStatusFound}, []string{"3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(catalog, tt.criteria))
			if !equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateUsesLocation(t *testing.T) {
	// 23:59 UTC on the 15th is already the 16th in Ljubljana (UTC+2 in April).
	loc := time.FixedZone("CEST", 2*60*60)

	got := ids(Filter(catalog, Criteria{Date: date(2023, 4, 16), Location: loc}))
	if !equal(got, []string{"3", "4"}) {
		t.Errorf("got %v, want [3 4]", got)
	}
}

func TestParseCriteria(t *testing.T) {
	v := url.Values{}
	v.Set("date", "2023-04-15")
	v.Set("color", " Blue ")
	v.Set("name", "backpack")
	v.Set("q", "nike")

	c, err := ParseCriteria(v, time.UTC)
	if err != nil {
		t.Fatalf("ParseCriteria: %v", err)
	}
	if c.Date == nil || c.Date.String() != "2023-04-15" {
		t.Errorf("unexpected date %v", c.Date)
	}
	if c.Color != "Blue" || c.NameHint != "backpack" || c.Text != "nike" {
		t.Errorf("unexpected criteria %+v", c)
	}

	empty, err := ParseCriteria(url.Values{}, time.UTC)
	if err != nil {
		t.Fatalf("ParseCriteria: %v", err)
	}
	if !empty.Empty() {
		t.Errorf("expected empty criteria, got %+v", empty)
	}
}

func TestParseCriteriaInvalid(t *testing.T) {
	for _, q := range []string{"date=15.04.2023", "status=stolen"} {
		v, _ := url.ParseQuery(q)
		if _, err := ParseCriteria(v, time.UTC); !model.IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", q, err)
		}
	}
}

func TestServiceSearch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for _, item := range catalog {
		_, err := store.CreateItem(ctx, database, model.NewItem{
			Name: item.Name, Description: item.Description, Color: item.Color, Brand: item.Brand,
			LostAt: item.LostAt, Location: "Somewhere",
			ReportedBy: model.Person{ID: "u-1", Name: "John Doe", Email: "user@example.com"},
		})
		if err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
	}

	svc := &Service{DB: database, Location: time.UTC}

	all, err := svc.Search(ctx, Criteria{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(all) != len(catalog) {
		t.Fatalf("expected %d items, got %d", len(catalog), len(all))
	}
	for i := range catalog {
		if all[i].Name != catalog[i].Name {
			t.Errorf("position %d: expected %q, got %q", i, catalog[i].Name, all[i].Name)
		}
	}

	blue, err := svc.Search(ctx, Criteria{Color: "blue"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(blue) != 2 || blue[0].Name != "Blue Nike Backpack" || blue[1].Name != "Water bottle" {
		t.Errorf("unexpected blue results %v", blue)
	}

	// Every stored item is still lost, so a found filter returns nothing.
	found, _ := svc.Search(ctx, Criteria{Status: model.ItemStatusFound})
	if len(found) != 0 {
		t.Errorf("expected no found items, got %d", len(found))
	}
}
