package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Attachment is stored media addressed by its content reference.
type Attachment struct {
	Ref        string `db:"ref"`
	MIME       string `db:"mime"`
	Data       []byte `db:"data"`
	Size       int64  `db:"size"`
	UploadedBy string `db:"uploaded_by"`
}

// PutAttachment stores attachment data under its reference. Storing the same
// content twice keeps the first upload.
func PutAttachment(ctx context.Context, q sqlx.ExecerContext, a Attachment) error {
	_, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO attachments (ref, mime, data, size, uploaded_by) VALUES (?, ?, ?, ?, ?)`,
		a.Ref, a.MIME, a.Data, len(a.Data), a.UploadedBy,
	)
	if err != nil {
		return fmt.Errorf("storing attachment: %w", err)
	}
	return nil
}

// GetAttachment returns an attachment by reference, or nil.
func GetAttachment(ctx context.Context, q sqlx.QueryerContext, ref string) (*Attachment, error) {
	a := &Attachment{}
	err := sqlx.GetContext(ctx, q, a,
		`SELECT ref, mime, data, size, uploaded_by FROM attachments WHERE ref = ?`, ref)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting attachment: %w", err)
	}
	return a, nil
}
