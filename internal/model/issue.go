package model

import "time"

// Issue is an ownership claim raised against an item.
type Issue struct {
	ID          string     `json:"id" db:"id"`
	ItemID      string     `json:"item_id" db:"item_id"`
	Claimant    Person     `json:"claimant" db:"claimant"`
	Description string     `json:"description" db:"description"`
	Proof       string     `json:"proof,omitempty" db:"proof"`
	Status      string     `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty" db:"decided_at"`
	DecidedBy   string     `json:"decided_by,omitempty" db:"decided_by"`
}

// NewIssue holds the fields a claimant supplies.
type NewIssue struct {
	ItemID      string `json:"item_id"`
	Claimant    Person `json:"-"`
	Description string `json:"description"`
	Proof       string `json:"proof"`
}

// Validate checks the claim description is present.
func (n NewIssue) Validate() error {
	if isBlank(n.ItemID) {
		return &ValidationError{Field: "item_id", Reason: "required"}
	}
	if isBlank(n.Description) {
		return &ValidationError{Field: "description", Reason: "required"}
	}
	return nil
}

// Issue statuses. Approved and rejected are terminal.
const (
	IssueStatusPending  = "pending"
	IssueStatusApproved = "approved"
	IssueStatusRejected = "rejected"
)

// IssueStatuses lists every issue status.
var IssueStatuses = []string{IssueStatusPending, IssueStatusApproved, IssueStatusRejected}

// ValidIssueStatus reports whether s is a known issue status.
func ValidIssueStatus(s string) bool {
	return s == IssueStatusPending || s == IssueStatusApproved || s == IssueStatusRejected
}
