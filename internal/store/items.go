package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/najdeno/internal/model"
)

const itemColumns = `id, name, description, color, brand, unique_id, lost_at, location, image, status,
	reporter_id AS "reporter.id", reporter_name AS "reporter.name", reporter_email AS "reporter.email",
	created_at`

// CreateItem stores a new item in status lost with a fresh id.
func CreateItem(ctx context.Context, q sqlx.ExtContext, in model.NewItem) (*model.Item, error) {
	id := uuid.NewString()
	_, err := q.ExecContext(ctx,
		`INSERT INTO items (id, name, description, color, brand, unique_id, lost_at, location, image,
		                    status, reporter_id, reporter_name, reporter_email, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Name, in.Description, in.Color, in.Brand, in.UniqueID, in.LostAt.UTC(), in.Location, in.Image,
		model.ItemStatusLost, in.ReportedBy.ID, in.ReportedBy.Name, in.ReportedBy.Email, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, q, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, q sqlx.QueryerContext, id string) (*model.Item, error) {
	item := &model.Item{}
	err := sqlx.GetContext(ctx, q, item, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items in insertion order, optionally filtered by status.
func ListItems(ctx context.Context, q sqlx.QueryerContext, status string) ([]model.Item, error) {
	var items []model.Item
	var err error

	if status != "" {
		err = sqlx.SelectContext(ctx, q, &items,
			`SELECT `+itemColumns+` FROM items WHERE status = ? ORDER BY seq`, status)
	} else {
		err = sqlx.SelectContext(ctx, q, &items,
			`SELECT `+itemColumns+` FROM items ORDER BY seq`)
	}
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// UpdateItemStatus overwrites an item's status without checking the
// transition. It returns nil if the item does not exist.
func UpdateItemStatus(ctx context.Context, q sqlx.ExtContext, id, status string) (*model.Item, error) {
	result, err := q.ExecContext(ctx, `UPDATE items SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("updating item status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating item status: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	return GetItem(ctx, q, id)
}

// DeleteItem hard-deletes an item and reports whether it existed.
func DeleteItem(ctx context.Context, q sqlx.ExecerContext, id string) (bool, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	return n > 0, nil
}

// CountItemsByStatus returns the number of items in each status.
func CountItemsByStatus(ctx context.Context, q sqlx.QueryerContext) (map[string]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	err := sqlx.SelectContext(ctx, q, &rows, `SELECT status, COUNT(*) AS count FROM items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}

	counts := make(map[string]int, len(model.ItemStatuses))
	for _, s := range model.ItemStatuses {
		counts[s] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// CreateItemTombstone records that an item was deleted.
func CreateItemTombstone(ctx context.Context, q sqlx.ExecerContext, t model.ItemTombstone) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO item_tombstones (item_id, name, deleted_at, deleted_by) VALUES (?, ?, ?, ?)`,
		t.ItemID, t.Name, t.DeletedAt.UTC(), t.DeletedBy,
	)
	if err != nil {
		return fmt.Errorf("creating item tombstone: %w", err)
	}
	return nil
}

// GetItemTombstone returns the tombstone of a deleted item, or nil.
func GetItemTombstone(ctx context.Context, q sqlx.QueryerContext, itemID string) (*model.ItemTombstone, error) {
	t := &model.ItemTombstone{}
	err := sqlx.GetContext(ctx, q, t,
		`SELECT item_id, name, deleted_at, deleted_by FROM item_tombstones WHERE item_id = ?`, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item tombstone: %w", err)
	}
	return t, nil
}
