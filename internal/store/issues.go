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

const issueColumns = `id, item_id,
	claimant_id AS "claimant.id", claimant_name AS "claimant.name", claimant_email AS "claimant.email",
	description, proof, status, created_at, decided_at, decided_by`

// CreateIssue stores a new pending issue with a fresh id.
func CreateIssue(ctx context.Context, q sqlx.ExtContext, in model.NewIssue) (*model.Issue, error) {
	id := uuid.NewString()
	_, err := q.ExecContext(ctx,
		`INSERT INTO issues (id, item_id, claimant_id, claimant_name, claimant_email,
		                     description, proof, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.ItemID, in.Claimant.ID, in.Claimant.Name, in.Claimant.Email,
		in.Description, in.Proof, model.IssueStatusPending, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating issue: %w", err)
	}

	return GetIssue(ctx, q, id)
}

// GetIssue returns an issue by ID, or nil if it does not exist.
func GetIssue(ctx context.Context, q sqlx.QueryerContext, id string) (*model.Issue, error) {
	issue := &model.Issue{}
	err := sqlx.GetContext(ctx, q, issue, `SELECT `+issueColumns+` FROM issues WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting issue: %w", err)
	}
	return issue, nil
}

// ListIssues returns issues in insertion order, optionally filtered by status.
func ListIssues(ctx context.Context, q sqlx.QueryerContext, status string) ([]model.Issue, error) {
	var issues []model.Issue
	var err error

	if status != "" {
		err = sqlx.SelectContext(ctx, q, &issues,
			`SELECT `+issueColumns+` FROM issues WHERE status = ? ORDER BY seq`, status)
	} else {
		err = sqlx.SelectContext(ctx, q, &issues,
			`SELECT `+issueColumns+` FROM issues ORDER BY seq`)
	}
	if err != nil {
		return nil, fmt.Errorf("listing issues: %w", err)
	}
	return issues, nil
}

// ListIssuesByItem returns the issues raised against an item in insertion order.
func ListIssuesByItem(ctx context.Context, q sqlx.QueryerContext, itemID string) ([]model.Issue, error) {
	var issues []model.Issue
	err := sqlx.SelectContext(ctx, q, &issues,
		`SELECT `+issueColumns+` FROM issues WHERE item_id = ? ORDER BY seq`, itemID)
	if err != nil {
		return nil, fmt.Errorf("listing issues by item: %w", err)
	}
	return issues, nil
}

// PendingIssueForItem returns the pending issue for an item, or nil.
func PendingIssueForItem(ctx context.Context, q sqlx.QueryerContext, itemID string) (*model.Issue, error) {
	issue := &model.Issue{}
	err := sqlx.GetContext(ctx, q, issue,
		`SELECT `+issueColumns+` FROM issues WHERE item_id = ? AND status = ? ORDER BY seq LIMIT 1`,
		itemID, model.IssueStatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting pending issue: %w", err)
	}
	return issue, nil
}

// UpdateIssueStatus overwrites an issue's status without checking the
// transition, recording who made the change. It returns nil if the issue
// does not exist.
func UpdateIssueStatus(ctx context.Context, q sqlx.ExtContext, id, status, decidedBy string) (*model.Issue, error) {
	var decidedAt *time.Time
	if status != model.IssueStatusPending {
		now := time.Now().UTC()
		decidedAt = &now
	}

	result, err := q.ExecContext(ctx,
		`UPDATE issues SET status = ?, decided_at = ?, decided_by = ? WHERE id = ?`,
		status, decidedAt, decidedBy, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating issue status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating issue status: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	return GetIssue(ctx, q, id)
}

// CountIssuesByStatus returns the number of issues in each status.
func CountIssuesByStatus(ctx context.Context, q sqlx.QueryerContext) (map[string]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	err := sqlx.SelectContext(ctx, q, &rows, `SELECT status, COUNT(*) AS count FROM issues GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting issues: %w", err)
	}

	counts := make(map[string]int, len(model.IssueStatuses))
	for _, s := range model.IssueStatuses {
		counts[s] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
