package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PrivilegedStatuses returns the statuses only an elevated actor may set via
// ChangeStatus. The policy check itself belongs to the caller; the core
// exposes the set and enforces it where the actor is already in hand.
func PrivilegedStatuses() []DocumentStatus {
	return []DocumentStatus{StatusApproved, StatusPaid}
}

// RequiresElevation reports whether setting target needs an elevated actor.
func RequiresElevation(target DocumentStatus) bool {
	return target == StatusApproved || target == StatusPaid
}

// StateMachine validates and applies document status transitions. Every
// successful transition appends exactly one history record inside the same
// transaction, and the document row is locked FOR UPDATE so two concurrent
// transitions on the same document cannot both succeed from the same state.
type StateMachine struct {
	pool    *pgxpool.Pool
	history HistoryRecorder
}

func NewStateMachine(pool *pgxpool.Pool, history HistoryRecorder) *StateMachine {
	return &StateMachine{pool: pool, history: history}
}

// lockedDocument is the slice of a document row a transition needs.
type lockedDocument struct {
	Type   DocumentType
	Status DocumentStatus
}

// lockDocument loads type and status under FOR UPDATE.
func lockDocument(ctx context.Context, tx pgx.Tx, documentID int) (lockedDocument, error) {
	var doc lockedDocument
	err := tx.QueryRow(ctx,
		"SELECT doc_type, status FROM documents WHERE id = $1 FOR UPDATE",
		documentID,
	).Scan(&doc.Type, &doc.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return doc, ErrNotFound
		}
		return doc, fmt.Errorf("lock document %d: %w", documentID, err)
	}
	return doc, nil
}

// Submit moves a draft document to pending.
func (m *StateMachine) Submit(ctx context.Context, documentID int, actor Actor) error {
	return m.transition(ctx, documentID, func(tx pgx.Tx, doc lockedDocument) error {
		if doc.Status != StatusDraft {
			return &InvalidTransitionError{From: doc.Status, To: StatusPending,
				Reason: "only draft documents can be submitted"}
		}
		if err := m.setStatus(ctx, tx, documentID, StatusPending); err != nil {
			return err
		}
		return m.history.Append(ctx, tx, documentID, HistoryEntry{
			Action:    ActionStatusChanged,
			Actor:     actor.Name,
			Details:   fmt.Sprintf("%s submitted for approval", doc.Type.Label()),
			OldStatus: doc.Status,
			NewStatus: StatusPending,
		})
	})
}

// Approve sets the document approved and stamps the approver. Re-approving
// an approved document and reopening a terminal one both fail.
func (m *StateMachine) Approve(ctx context.Context, documentID int, actor Actor) error {
	return m.transition(ctx, documentID, func(tx pgx.Tx, doc lockedDocument) error {
		if doc.Status == StatusApproved {
			return &InvalidTransitionError{From: doc.Status, To: StatusApproved,
				Reason: "document is already approved"}
		}
		if doc.Status.Terminal() {
			return &InvalidTransitionError{From: doc.Status, To: StatusApproved,
				Reason: fmt.Sprintf("a %s document cannot be approved", doc.Status)}
		}
		if _, err := tx.Exec(ctx, `
			UPDATE documents
			SET status = $1, approved_by = $2, approved_at = NOW(), updated_at = NOW()
			WHERE id = $3`,
			string(StatusApproved), actor.Name, documentID,
		); err != nil {
			return fmt.Errorf("approve document %d: %w", documentID, err)
		}
		return m.history.Append(ctx, tx, documentID, HistoryEntry{
			Action:    ActionApproved,
			Actor:     actor.Name,
			Details:   fmt.Sprintf("%s approved", doc.Type.Label()),
			OldStatus: doc.Status,
			NewStatus: StatusApproved,
		})
	})
}

// Reject sets the document rejected and stamps the rejecter. Re-rejecting a
// rejected document and reopening a terminal one both fail.
func (m *StateMachine) Reject(ctx context.Context, documentID int, actor Actor) error {
	return m.transition(ctx, documentID, func(tx pgx.Tx, doc lockedDocument) error {
		if doc.Status == StatusRejected {
			return &InvalidTransitionError{From: doc.Status, To: StatusRejected,
				Reason: "document is already rejected"}
		}
		if doc.Status.Terminal() {
			return &InvalidTransitionError{From: doc.Status, To: StatusRejected,
				Reason: fmt.Sprintf("a %s document cannot be rejected", doc.Status)}
		}
		if _, err := tx.Exec(ctx, `
			UPDATE documents
			SET status = $1, rejected_by = $2, rejected_at = NOW(), updated_at = NOW()
			WHERE id = $3`,
			string(StatusRejected), actor.Name, documentID,
		); err != nil {
			return fmt.Errorf("reject document %d: %w", documentID, err)
		}
		return m.history.Append(ctx, tx, documentID, HistoryEntry{
			Action:    ActionRejected,
			Actor:     actor.Name,
			Details:   fmt.Sprintf("%s rejected", doc.Type.Label()),
			OldStatus: doc.Status,
			NewStatus: StatusRejected,
		})
	})
}

// MarkPaid moves an approved document to paid.
func (m *StateMachine) MarkPaid(ctx context.Context, documentID int, actor Actor) error {
	return m.transition(ctx, documentID, func(tx pgx.Tx, doc lockedDocument) error {
		if doc.Status != StatusApproved {
			return &InvalidTransitionError{From: doc.Status, To: StatusPaid,
				Reason: "only approved documents can be marked paid"}
		}
		if err := m.setStatus(ctx, tx, documentID, StatusPaid); err != nil {
			return err
		}
		return m.history.Append(ctx, tx, documentID, HistoryEntry{
			Action:    ActionStatusChanged,
			Actor:     actor.Name,
			Details:   fmt.Sprintf("%s marked as paid", doc.Type.Label()),
			OldStatus: doc.Status,
			NewStatus: StatusPaid,
		})
	})
}

// Cancel moves any non-terminal document to cancelled.
func (m *StateMachine) Cancel(ctx context.Context, documentID int, actor Actor) error {
	return m.transition(ctx, documentID, func(tx pgx.Tx, doc lockedDocument) error {
		if doc.Status.Terminal() {
			return &InvalidTransitionError{From: doc.Status, To: StatusCancelled,
				Reason: fmt.Sprintf("a %s document cannot be cancelled", doc.Status)}
		}
		if err := m.setStatus(ctx, tx, documentID, StatusCancelled); err != nil {
			return err
		}
		return m.history.Append(ctx, tx, documentID, HistoryEntry{
			Action:    ActionStatusChanged,
			Actor:     actor.Name,
			Details:   fmt.Sprintf("%s cancelled", doc.Type.Label()),
			OldStatus: doc.Status,
			NewStatus: StatusCancelled,
		})
	})
}

// ChangeStatus applies a generic transition to any enumerated status. Terminal
// states cannot be left, and privileged targets (approved, paid) require an
// elevated actor.
func (m *StateMachine) ChangeStatus(ctx context.Context, documentID int, target DocumentStatus, actor Actor) error {
	if !target.Valid() {
		return &InvalidTransitionError{To: target, Reason: fmt.Sprintf("unknown status %q", target)}
	}
	if RequiresElevation(target) && !actor.Elevated {
		return &InvalidTransitionError{To: target,
			Reason: fmt.Sprintf("status %s requires an elevated actor", target)}
	}
	return m.transition(ctx, documentID, func(tx pgx.Tx, doc lockedDocument) error {
		if doc.Status.Terminal() {
			return &InvalidTransitionError{From: doc.Status, To: target,
				Reason: fmt.Sprintf("a %s document cannot change status", doc.Status)}
		}
		if err := m.setStatus(ctx, tx, documentID, target); err != nil {
			return err
		}
		return m.history.Append(ctx, tx, documentID, HistoryEntry{
			Action:    ActionStatusChanged,
			Actor:     actor.Name,
			Details:   fmt.Sprintf("Status changed from %s to %s", doc.Status, target),
			OldStatus: doc.Status,
			NewStatus: target,
		})
	})
}

// transition runs one status change in its own transaction: lock the row,
// apply the operation, commit. Any failure rolls the whole change back,
// history record included.
func (m *StateMachine) transition(ctx context.Context, documentID int, op func(pgx.Tx, lockedDocument) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	doc, err := lockDocument(ctx, tx, documentID)
	if err != nil {
		return err
	}
	if err := op(tx, doc); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}

func (m *StateMachine) setStatus(ctx context.Context, tx pgx.Tx, documentID int, status DocumentStatus) error {
	if _, err := tx.Exec(ctx,
		"UPDATE documents SET status = $1, updated_at = NOW() WHERE id = $2",
		string(status), documentID,
	); err != nil {
		return fmt.Errorf("set document %d status to %s: %w", documentID, status, err)
	}
	return nil
}
