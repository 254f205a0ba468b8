package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryRecorder appends audit-trail records. The state machine and the
// conversion engine write through this interface; the default implementation
// writes to document_history in the caller's transaction.
type HistoryRecorder interface {
	Append(ctx context.Context, tx pgx.Tx, documentID int, entry HistoryEntry) error
}

// HistoryEntry is the payload for one audit record. OldStatus/NewStatus are
// empty for non-transition actions such as "created" and "updated".
type HistoryEntry struct {
	Action    string
	Actor     string
	Details   string
	OldStatus DocumentStatus
	NewStatus DocumentStatus
}

type historyRecorder struct{}

// NewHistoryRecorder returns the document_history-backed recorder.
func NewHistoryRecorder() HistoryRecorder {
	return historyRecorder{}
}

func (historyRecorder) Append(ctx context.Context, tx pgx.Tx, documentID int, entry HistoryEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO document_history (document_id, action, actor, details, old_status, new_status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		documentID, entry.Action, entry.Actor, entry.Details,
		string(entry.OldStatus), string(entry.NewStatus),
	)
	if err != nil {
		return fmt.Errorf("append history for document %d: %w", documentID, err)
	}
	return nil
}

// fetchHistory returns a document's audit trail, newest first.
func fetchHistory(ctx context.Context, pool *pgxpool.Pool, documentID int) ([]DocumentHistory, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, document_id, action, actor, occurred_at, details, old_status, new_status
		FROM document_history
		WHERE document_id = $1
		ORDER BY occurred_at DESC, id DESC`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch history for document %d: %w", documentID, err)
	}
	defer rows.Close()

	var history []DocumentHistory
	for rows.Next() {
		var h DocumentHistory
		var oldStatus, newStatus string
		if err := rows.Scan(&h.ID, &h.DocumentID, &h.Action, &h.Actor, &h.OccurredAt,
			&h.Details, &oldStatus, &newStatus); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		h.OldStatus = DocumentStatus(oldStatus)
		h.NewStatus = DocumentStatus(newStatus)
		history = append(history, h)
	}
	return history, rows.Err()
}
