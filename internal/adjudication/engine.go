// Package adjudication applies claim decisions to items and issues.
//
// It is the only place item and issue statuses change after creation. The
// stores overwrite statuses unconditionally; every legality check lives here.
//
// Item lifecycle:
//
//	lost    -> found    MarkFound (admin)
//	found   -> matched  an issue against the item is approved
//	matched -> claimed  ConfirmMatch (admin)
//
// Issues start pending and are decided exactly once.
package adjudication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/najdeno/internal/events"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// Engine coordinates the item and issue stores.
type Engine struct {
	DB     *sqlx.DB
	Events events.Emitter
}

// New returns an engine over db that reports to em. A nil emitter discards events.
func New(db *sqlx.DB, em events.Emitter) *Engine {
	if em == nil {
		em = events.Discard
	}
	return &Engine{DB: db, Events: em}
}

// ReportItem records a new lost item reported by actor.
func (e *Engine) ReportItem(ctx context.Context, actor model.Actor, in model.NewItem) (*model.Item, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	in.ReportedBy = actor.Person
	if err := in.Validate(); err != nil {
		return nil, err
	}

	item, err := store.CreateItem(ctx, e.DB, in)
	if err != nil {
		return nil, err
	}

	e.emit(ctx, events.ItemCreated, item.ID, "", actor)
	return item, nil
}

// GetItem returns an item or ErrNotFound.
func (e *Engine) GetItem(ctx context.Context, id string) (*model.Item, error) {
	item, err := store.GetItem(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", id, model.ErrNotFound)
	}
	return item, nil
}

// MarkFound moves a lost item to found.
func (e *Engine) MarkFound(ctx context.Context, actor model.Actor, itemID string) (*model.Item, error) {
	item, err := e.advanceItem(ctx, actor, itemID, model.ItemStatusLost, model.ItemStatusFound)
	if err != nil {
		return nil, err
	}
	e.emit(ctx, events.ItemFound, item.ID, "", actor)
	return item, nil
}

// ConfirmMatch records the handover of a matched item, making it claimed.
func (e *Engine) ConfirmMatch(ctx context.Context, actor model.Actor, itemID string) (*model.Item, error) {
	item, err := e.advanceItem(ctx, actor, itemID, model.ItemStatusMatched, model.ItemStatusClaimed)
	if err != nil {
		return nil, err
	}
	e.emit(ctx, events.MatchConfirmed, item.ID, "", actor)
	return item, nil
}

// advanceItem moves an item from exactly one status to the next.
func (e *Engine) advanceItem(ctx context.Context, actor model.Actor, itemID, from, to string) (*model.Item, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var updated *model.Item
	err := e.inTx(ctx, func(tx *sqlx.Tx) error {
		item, err := store.GetItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("item %s: %w", itemID, model.ErrNotFound)
		}
		if item.Status != from {
			return fmt.Errorf("item %s is %s, not %s: %w", itemID, item.Status, from, model.ErrInvalidTransition)
		}

		updated, err = store.UpdateItemStatus(ctx, tx, itemID, to)
		if err != nil {
			return err
		}
		if updated == nil {
			return fmt.Errorf("item %s: %w", itemID, model.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteItem hard-deletes an item. A tombstone keeps the item's name for
// issues that reference it, and a pending issue on the item is rejected in
// the same transaction.
func (e *Engine) DeleteItem(ctx context.Context, actor model.Actor, itemID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	var rejected *model.Issue
	err := e.inTx(ctx, func(tx *sqlx.Tx) error {
		item, err := store.GetItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("item %s: %w", itemID, model.ErrNotFound)
		}

		err = store.CreateItemTombstone(ctx, tx, model.ItemTombstone{
			ItemID:    item.ID,
			Name:      item.Name,
			DeletedAt: time.Now(),
			DeletedBy: actor.ID,
		})
		if err != nil {
			return err
		}

		pending, err := store.PendingIssueForItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if pending != nil {
			rejected, err = store.UpdateIssueStatus(ctx, tx, pending.ID, model.IssueStatusRejected, actor.ID)
			if err != nil {
				return err
			}
		}

		existed, err := store.DeleteItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if !existed {
			return fmt.Errorf("item %s: %w", itemID, model.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if rejected != nil {
		e.emit(ctx, events.IssueRejected, itemID, rejected.ID, actor)
	}
	e.emit(ctx, events.ItemDeleted, itemID, "", actor)
	return nil
}

// RaiseIssue opens an ownership claim on an item. Only one claim per item
// may be pending at a time, and claimed items accept no new claims.
func (e *Engine) RaiseIssue(ctx context.Context, actor model.Actor, in model.NewIssue) (*model.Issue, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	in.Claimant = actor.Person
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var issue *model.Issue
	err := e.inTx(ctx, func(tx *sqlx.Tx) error {
		item, err := store.GetItem(ctx, tx, in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("item %s: %w", in.ItemID, model.ErrNotFound)
		}
		if item.Status == model.ItemStatusClaimed {
			return fmt.Errorf("item %s is already claimed: %w", in.ItemID, model.ErrInvalidTransition)
		}

		pending, err := store.PendingIssueForItem(ctx, tx, in.ItemID)
		if err != nil {
			return err
		}
		if pending != nil {
			return fmt.Errorf("item %s already has pending issue %s: %w", in.ItemID, pending.ID, model.ErrInvalidTransition)
		}

		issue, err = store.CreateIssue(ctx, tx, in)
		if isUniqueViolation(err) {
			return fmt.Errorf("item %s already has a pending issue: %w", in.ItemID, model.ErrInvalidTransition)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, events.IssueCreated, issue.ItemID, issue.ID, actor)
	return issue, nil
}

// Approve decides a pending issue in the claimant's favour.
func (e *Engine) Approve(ctx context.Context, actor model.Actor, issueID string) (*model.Issue, error) {
	return e.DecideIssue(ctx, actor, issueID, model.IssueStatusApproved)
}

// Reject decides a pending issue against the claimant.
func (e *Engine) Reject(ctx context.Context, actor model.Actor, issueID string) (*model.Issue, error) {
	return e.DecideIssue(ctx, actor, issueID, model.IssueStatusRejected)
}

// DecideIssue approves or rejects a pending issue. Approval also raises the
// referenced item to matched unless it is already matched or claimed; both
// writes commit together or not at all.
func (e *Engine) DecideIssue(ctx context.Context, actor model.Actor, issueID, decision string) (*model.Issue, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if decision != model.IssueStatusApproved && decision != model.IssueStatusRejected {
		return nil, &model.ValidationError{Field: "decision", Reason: "must be approved or rejected"}
	}

	var decided *model.Issue
	err := e.inTx(ctx, func(tx *sqlx.Tx) error {
		issue, err := store.GetIssue(ctx, tx, issueID)
		if err != nil {
			return err
		}
		if issue == nil {
			return fmt.Errorf("issue %s: %w", issueID, model.ErrNotFound)
		}
		if issue.Status != model.IssueStatusPending {
			return fmt.Errorf("issue %s is already %s: %w", issueID, issue.Status, model.ErrInvalidTransition)
		}

		decided, err = store.UpdateIssueStatus(ctx, tx, issueID, decision, actor.ID)
		if err != nil {
			return err
		}
		if decided == nil {
			return fmt.Errorf("issue %s: %w", issueID, model.ErrNotFound)
		}

		if decision != model.IssueStatusApproved {
			return nil
		}

		item, err := store.GetItem(ctx, tx, issue.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("item %s of issue %s: %w", issue.ItemID, issueID, model.ErrNotFound)
		}
		if item.Status == model.ItemStatusClaimed {
			return fmt.Errorf("item %s is already claimed: %w", item.ID, model.ErrInvalidTransition)
		}
		if model.ItemStatusAtLeast(item.Status, model.ItemStatusMatched) {
			return nil
		}
		if _, err := store.UpdateItemStatus(ctx, tx, item.ID, model.ItemStatusMatched); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	name := events.IssueRejected
	if decision == model.IssueStatusApproved {
		name = events.IssueApproved
	}
	e.emit(ctx, name, decided.ItemID, decided.ID, actor)
	return decided, nil
}

// GetIssue returns an issue visible to actor: administrators see every
// issue, claimants see their own.
func (e *Engine) GetIssue(ctx context.Context, actor model.Actor, id string) (*model.Issue, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	issue, err := store.GetIssue(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, fmt.Errorf("issue %s: %w", id, model.ErrNotFound)
	}
	if !actor.IsAdmin() && issue.Claimant.ID != actor.ID {
		return nil, model.ErrForbidden
	}
	return issue, nil
}

// ListIssues returns issues in insertion order, optionally filtered by status.
func (e *Engine) ListIssues(ctx context.Context, actor model.Actor, status string) ([]model.Issue, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if status != "" && !model.ValidIssueStatus(status) {
		return nil, &model.ValidationError{Field: "status", Reason: "unknown issue status"}
	}
	return store.ListIssues(ctx, e.DB, status)
}

// IssuesForItem returns every issue raised against an item, including
// items that have since been deleted.
func (e *Engine) IssuesForItem(ctx context.Context, actor model.Actor, itemID string) ([]model.Issue, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return store.ListIssuesByItem(ctx, e.DB, itemID)
}

// MatchedItems returns the items awaiting handover confirmation.
func (e *Engine) MatchedItems(ctx context.Context, actor model.Actor) ([]model.Item, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return store.ListItems(ctx, e.DB, model.ItemStatusMatched)
}

// MatchAudit returns the most recent approved issue for an item, i.e. the
// claim that caused the match.
func (e *Engine) MatchAudit(ctx context.Context, actor model.Actor, itemID string) (*model.Issue, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	issues, err := store.ListIssuesByItem(ctx, e.DB, itemID)
	if err != nil {
		return nil, err
	}
	for i := len(issues) - 1; i >= 0; i-- {
		if issues[i].Status == model.IssueStatusApproved {
			return &issues[i], nil
		}
	}
	return nil, fmt.Errorf("approved issue for item %s: %w", itemID, model.ErrNotFound)
}

// Dashboard summarizes the catalog for administrators.
type Dashboard struct {
	Items  map[string]int `json:"items"`
	Issues map[string]int `json:"issues"`
}

// Dashboard counts items and issues per status.
func (e *Engine) Dashboard(ctx context.Context, actor model.Actor) (*Dashboard, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	items, err := store.CountItemsByStatus(ctx, e.DB)
	if err != nil {
		return nil, err
	}
	issues, err := store.CountIssuesByStatus(ctx, e.DB)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Items: items, Issues: issues}, nil
}

func (e *Engine) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := e.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (e *Engine) emit(ctx context.Context, name, itemID, issueID string, actor model.Actor) {
	em := e.Events
	if em == nil {
		em = events.Discard
	}
	em.Emit(ctx, events.Event{
		Name:    name,
		ItemID:  itemID,
		IssueID: issueID,
		ActorID: actor.ID,
		At:      time.Now().UTC(),
	})
}

func requireUser(actor model.Actor) error {
	if actor.ID == "" {
		return fmt.Errorf("anonymous caller: %w", model.ErrForbidden)
	}
	return nil
}

func requireAdmin(actor model.Actor) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("user %s is not an administrator: %w", actor.ID, model.ErrForbidden)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
