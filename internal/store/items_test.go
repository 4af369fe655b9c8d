package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

var reporter = model.Person{ID: "u-1", Name: "John Doe", Email: "user@example.com"}

func newItem(name, color, brand string) model.NewItem {
	return model.NewItem{
		Name:        name,
		Description: name + " description",
		Color:       color,
		Brand:       brand,
		LostAt:      time.Date(2023, 4, 15, 14, 30, 0, 0, time.UTC),
		Location:    "Central Park",
		ReportedBy:  reporter,
	}
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	in := newItem("Blue Nike Backpack", "Blue", "Nike")
	in.UniqueID = "NKB-2023-1234"
	in.Image = "blake3:abc"

	item, err := CreateItem(ctx, database, in)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.ID == "" {
		t.Fatal("expected item id to be assigned")
	}
	if item.Status != model.ItemStatusLost {
		t.Errorf("expected status 'lost', got %q", item.Status)
	}
	if item.ReportedBy != reporter {
		t.Errorf("expected reporter %+v, got %+v", reporter, item.ReportedBy)
	}
	if !item.LostAt.Equal(in.LostAt) {
		t.Errorf("expected lost_at %v, got %v", in.LostAt, item.LostAt)
	}
	if item.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	got, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got == nil {
		t.Fatal("expected item, got nil")
	}
	if got.ID != item.ID || got.Name != item.Name || got.UniqueID != "NKB-2023-1234" ||
		got.Image != "blake3:abc" || got.Brand != "Nike" || got.Location != item.Location ||
		!got.CreatedAt.Equal(item.CreatedAt) || got.ReportedBy != item.ReportedBy {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, item)
	}
}

func TestGetItemMissing(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := GetItem(context.Background(), database, "nope")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing item")
	}
}

func TestItemIDsUnique(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for range 20 {
		item, err := CreateItem(ctx, database, newItem("Umbrella", "Black", ""))
		if err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
		if seen[item.ID] {
			t.Fatalf("duplicate id %q", item.ID)
		}
		seen[item.ID] = true
	}
}

func TestListItemsInsertionOrder(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	names := []string{"Zebra Plush", "Apple AirPods Pro", "Ray-Ban Sunglasses"}
	for _, n := range names {
		if _, err := CreateItem(ctx, database, newItem(n, "White", "")); err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
	}

	items, err := ListItems(ctx, database, "")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != len(names) {
		t.Fatalf("expected %d items, got %d", len(names), len(items))
	}
	for i, n := range names {
		if items[i].Name != n {
			t.Errorf("position %d: expected %q, got %q", i, n, items[i].Name)
		}
	}
}

func TestListItemsByStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, newItem("Wallet", "Brown", ""))
	item2, _ := CreateItem(ctx, database, newItem("Keys", "Silver", ""))
	UpdateItemStatus(ctx, database, item2.ID, model.ItemStatusFound)

	all, _ := ListItems(ctx, database, "")
	if len(all) != 2 {
		t.Errorf("expected 2 items, got %d", len(all))
	}

	found, _ := ListItems(ctx, database, model.ItemStatusFound)
	if len(found) != 1 || found[0].ID != item2.ID {
		t.Errorf("expected only Keys to be found, got %v", found)
	}
}

func TestUpdateItemStatusUnconditional(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, newItem("Phone", "Black", "Apple"))

	// The store does not police transitions: claimed straight from lost is accepted.
	updated, err := UpdateItemStatus(ctx, database, item.ID, model.ItemStatusClaimed)
	if err != nil {
		t.Fatalf("UpdateItemStatus: %v", err)
	}
	if updated.Status != model.ItemStatusClaimed {
		t.Errorf("expected status 'claimed', got %q", updated.Status)
	}

	missing, err := UpdateItemStatus(ctx, database, "nope", model.ItemStatusFound)
	if err != nil {
		t.Fatalf("UpdateItemStatus: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing item")
	}
}

func TestDeleteItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, newItem("Delete Me", "Red", ""))

	existed, err := DeleteItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if !existed {
		t.Error("expected delete to report an existing row")
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got != nil {
		t.Error("expected item to be gone after hard delete")
	}

	existed, err = DeleteItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if existed {
		t.Error("expected second delete to report no row")
	}
}

func TestItemTombstone(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	deletedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	err := CreateItemTombstone(ctx, database, model.ItemTombstone{
		ItemID: "item-1", Name: "Scarf", DeletedAt: deletedAt, DeletedBy: "admin-1",
	})
	if err != nil {
		t.Fatalf("CreateItemTombstone: %v", err)
	}

	ts, err := GetItemTombstone(ctx, database, "item-1")
	if err != nil {
		t.Fatalf("GetItemTombstone: %v", err)
	}
	if ts == nil || ts.Name != "Scarf" || ts.DeletedBy != "admin-1" || !ts.DeletedAt.Equal(deletedAt) {
		t.Errorf("unexpected tombstone %+v", ts)
	}

	missing, _ := GetItemTombstone(ctx, database, "item-2")
	if missing != nil {
		t.Error("expected nil tombstone for unknown item")
	}
}

func TestCountItemsByStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, newItem("A", "Red", ""))
	b, _ := CreateItem(ctx, database, newItem("B", "Red", ""))
	UpdateItemStatus(ctx, database, b.ID, model.ItemStatusMatched)

	counts, err := CountItemsByStatus(ctx, database)
	if err != nil {
		t.Fatalf("CountItemsByStatus: %v", err)
	}
	if counts[model.ItemStatusLost] != 1 || counts[model.ItemStatusMatched] != 1 || counts[model.ItemStatusClaimed] != 0 {
		t.Errorf("unexpected counts %v", counts)
	}
	if _, ok := counts[model.ItemStatusFound]; !ok {
		t.Error("expected zero entry for found")
	}
}
