package core_test

import (
	"context"
	"errors"
	"testing"

	"invoice-manager/internal/core"
)

func TestStateMachine_FullLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svcs := newTestServices(pool)
	ctx := context.Background()
	doc := mustCreate(t, svcs.docs, invoiceInput())

	if err := svcs.states.Submit(ctx, doc.ID, testActor); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := svcs.states.Approve(ctx, doc.ID, elevatedActor); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := svcs.states.MarkPaid(ctx, doc.ID, elevatedActor); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	got, history, err := svcs.docs.GetWithHistory(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != core.StatusPaid {
		t.Errorf("status = %s, want paid", got.Status)
	}
	if got.ApprovedBy == nil || *got.ApprovedBy != elevatedActor.Name {
		t.Errorf("approved_by not stamped: %v", got.ApprovedBy)
	}
	if got.ApprovedAt == nil {
		t.Error("approved_at not stamped")
	}

	// created + submit + approve + pay, newest first.
	if len(history) != 4 {
		t.Fatalf("history entries = %d, want 4", len(history))
	}
	if history[0].OldStatus != core.StatusApproved || history[0].NewStatus != core.StatusPaid {
		t.Errorf("latest entry = %s -> %s, want approved -> paid", history[0].OldStatus, history[0].NewStatus)
	}
}

func TestStateMachine_ApproveGuards(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svcs := newTestServices(pool)
	ctx := context.Background()
	doc := mustCreate(t, svcs.docs, quotationInput())

	if err := svcs.states.Approve(ctx, doc.ID, elevatedActor); err != nil {
		t.Fatalf("approve from draft should pass: %v", err)
	}

	var invalid *core.InvalidTransitionError
	if err := svcs.states.Approve(ctx, doc.ID, elevatedActor); !errors.As(err, &invalid) {
		t.Errorf("re-approve should fail with InvalidTransitionError, got %v", err)
	}

	rejected := mustCreate(t, svcs.docs, quotationInput())
	if err := svcs.states.Reject(ctx, rejected.ID, testActor); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := svcs.states.Approve(ctx, rejected.ID, elevatedActor); !errors.As(err, &invalid) {
		t.Errorf("approving a rejected document should fail, got %v", err)
	}
	if err := svcs.states.Reject(ctx, rejected.ID, testActor); !errors.As(err, &invalid) {
		t.Errorf("re-reject should fail, got %v", err)
	}
}

func TestStateMachine_MarkPaidOnlyFromApproved(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svcs := newTestServices(pool)
	ctx := context.Background()
	doc := mustCreate(t, svcs.docs, invoiceInput())

	var invalid *core.InvalidTransitionError
	if err := svcs.states.MarkPaid(ctx, doc.ID, elevatedActor); !errors.As(err, &invalid) {
		t.Errorf("paying a draft should fail, got %v", err)
	}

	if err := svcs.states.Approve(ctx, doc.ID, elevatedActor); err != nil {
		t.Fatal(err)
	}
	if err := svcs.states.MarkPaid(ctx, doc.ID, elevatedActor); err != nil {
		t.Errorf("paying an approved document should pass: %v", err)
	}

	// Paid is terminal.
	if err := svcs.states.Cancel(ctx, doc.ID, testActor); !errors.As(err, &invalid) {
		t.Errorf("cancelling a paid document should fail, got %v", err)
	}
}

func TestStateMachine_CancelNonTerminal(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svcs := newTestServices(pool)
	ctx := context.Background()

	for _, prepare := range []func(id int) error{
		func(id int) error { return nil }, // draft
		func(id int) error { return svcs.states.Submit(ctx, id, testActor) },
		func(id int) error { return svcs.states.Approve(ctx, id, elevatedActor) },
	} {
		doc := mustCreate(t, svcs.docs, quotationInput())
		if err := prepare(doc.ID); err != nil {
			t.Fatal(err)
		}
		if err := svcs.states.Cancel(ctx, doc.ID, testActor); err != nil {
			t.Errorf("cancel should pass from any non-terminal status: %v", err)
		}
	}
}

func TestStateMachine_ChangeStatus(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svcs := newTestServices(pool)
	ctx := context.Background()
	doc := mustCreate(t, svcs.docs, quotationInput())

	var invalid *core.InvalidTransitionError
	if err := svcs.states.ChangeStatus(ctx, doc.ID, "archived", testActor); !errors.As(err, &invalid) {
		t.Errorf("unknown status should fail, got %v", err)
	}

	// Privileged targets need an elevated actor.
	if err := svcs.states.ChangeStatus(ctx, doc.ID, core.StatusApproved, testActor); !errors.As(err, &invalid) {
		t.Errorf("approved without elevation should fail, got %v", err)
	}
	if err := svcs.states.ChangeStatus(ctx, doc.ID, core.StatusApproved, elevatedActor); err != nil {
		t.Errorf("approved with elevation should pass: %v", err)
	}

	// Elevation does not reopen terminal documents.
	if err := svcs.states.ChangeStatus(ctx, doc.ID, core.StatusPaid, elevatedActor); err != nil {
		t.Fatal(err)
	}
	if err := svcs.states.ChangeStatus(ctx, doc.ID, core.StatusDraft, elevatedActor); !errors.As(err, &invalid) {
		t.Errorf("leaving a terminal status should fail, got %v", err)
	}
}

func TestStateMachine_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svcs := newTestServices(pool)
	if err := svcs.states.Submit(context.Background(), 999999, testActor); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
