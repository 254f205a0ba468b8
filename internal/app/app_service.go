package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"invoice-manager/internal/core"
)

type appService struct {
	docs       core.DocumentService
	states     *core.StateMachine
	conversion *core.ConversionEngine
	log        zerolog.Logger
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	docs core.DocumentService,
	states *core.StateMachine,
	conversion *core.ConversionEngine,
	log zerolog.Logger,
) ApplicationService {
	return &appService{
		docs:       docs,
		states:     states,
		conversion: conversion,
		log:        log,
	}
}

// requireElevation rejects privileged status targets for regular actors.
func requireElevation(target core.DocumentStatus, actor core.Actor) error {
	if core.RequiresElevation(target) && !actor.Elevated {
		return fmt.Errorf("status %s requires an elevated actor", target)
	}
	return nil
}

// resolveID turns a CLI-style ref (numeric id or reference string) into the
// document's internal id.
func (s *appService) resolveID(ctx context.Context, ref string) (int, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return id, nil
	}
	doc, err := s.docs.GetByReference(ctx, ref)
	if err != nil {
		return 0, err
	}
	return doc.ID, nil
}

func (s *appService) CreateDocument(ctx context.Context, req CreateDocumentRequest) (*DocumentResult, error) {
	items := make([]core.ItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = core.ItemInput{
			Description: item.Description,
			Unit:        item.Unit,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	doc, err := s.docs.Create(ctx, core.NewDocument{
		Type:     req.Type,
		Date:     req.Date,
		Currency: req.Currency,
		TaxRate:  req.TaxRate,
		Customer: core.CustomerSnapshot{
			Name:     req.CustomerName,
			Location: req.CustomerLocation,
			Phone:    req.CustomerPhone,
		},
		WorkDelivery:  req.WorkDelivery,
		PaymentTerms:  req.PaymentTerms,
		CustomerPORef: req.CustomerPORef,
		Notes:         req.Notes,
		FooterText:    req.FooterText,
		Items:         items,
		Actor:         req.Actor,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("reference", doc.Reference).
		Str("type", string(doc.Type)).
		Str("actor", req.Actor.Name).
		Msg("document created")
	return &DocumentResult{Document: doc}, nil
}

func (s *appService) UpdateDocument(ctx context.Context, req UpdateDocumentRequest) (*DocumentResult, error) {
	id, err := s.resolveID(ctx, req.Ref)
	if err != nil {
		return nil, err
	}

	items := make([]core.ItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = core.ItemInput{
			Description: item.Description,
			Unit:        item.Unit,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	doc, err := s.docs.Update(ctx, id, core.DocumentUpdate{
		Date:     req.Date,
		Currency: req.Currency,
		TaxRate:  req.TaxRate,
		Customer: core.CustomerSnapshot{
			Name:     req.CustomerName,
			Location: req.CustomerLocation,
			Phone:    req.CustomerPhone,
		},
		WorkDelivery:  req.WorkDelivery,
		PaymentTerms:  req.PaymentTerms,
		CustomerPORef: req.CustomerPORef,
		Notes:         req.Notes,
		FooterText:    req.FooterText,
		Items:         items,
	}, req.Actor)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("reference", doc.Reference).
		Str("actor", req.Actor.Name).
		Msg("document updated")
	return &DocumentResult{Document: doc}, nil
}

func (s *appService) GetDocument(ctx context.Context, ref string) (*DocumentResult, error) {
	id, err := s.resolveID(ctx, ref)
	if err != nil {
		return nil, err
	}
	doc, history, err := s.docs.GetWithHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DocumentResult{Document: doc, History: history}, nil
}

func (s *appService) ListDocuments(ctx context.Context, docType core.DocumentType, status *core.DocumentStatus) (*DocumentListResult, error) {
	docs, err := s.docs.List(ctx, docType, status)
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Type: docType, Documents: docs}, nil
}

func (s *appService) DeleteDocument(ctx context.Context, ref string, actor core.Actor) error {
	id, err := s.resolveID(ctx, ref)
	if err != nil {
		return err
	}

	// Caller-side policy: only drafts are deletable, elevated actors excepted.
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return err
	}
	if doc.Status != core.StatusDraft && !actor.Elevated {
		return fmt.Errorf("document %s is %s: only draft documents can be deleted", doc.Reference, doc.Status)
	}

	if err := s.docs.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().
		Str("reference", doc.Reference).
		Str("actor", actor.Name).
		Msg("document deleted")
	return nil
}

func (s *appService) Submit(ctx context.Context, ref string, actor core.Actor) (*DocumentResult, error) {
	return s.transition(ctx, ref, actor, "submitted", s.states.Submit)
}

func (s *appService) Approve(ctx context.Context, ref string, actor core.Actor) (*DocumentResult, error) {
	if err := requireElevation(core.StatusApproved, actor); err != nil {
		return nil, err
	}
	return s.transition(ctx, ref, actor, "approved", s.states.Approve)
}

func (s *appService) Reject(ctx context.Context, ref string, actor core.Actor) (*DocumentResult, error) {
	return s.transition(ctx, ref, actor, "rejected", s.states.Reject)
}

func (s *appService) MarkPaid(ctx context.Context, ref string, actor core.Actor) (*DocumentResult, error) {
	if err := requireElevation(core.StatusPaid, actor); err != nil {
		return nil, err
	}
	return s.transition(ctx, ref, actor, "marked paid", s.states.MarkPaid)
}

func (s *appService) Cancel(ctx context.Context, ref string, actor core.Actor) (*DocumentResult, error) {
	return s.transition(ctx, ref, actor, "cancelled", s.states.Cancel)
}

func (s *appService) SetStatus(ctx context.Context, ref string, target core.DocumentStatus, actor core.Actor) (*DocumentResult, error) {
	return s.transition(ctx, ref, actor, fmt.Sprintf("status set to %s", target),
		func(ctx context.Context, id int, actor core.Actor) error {
			return s.states.ChangeStatus(ctx, id, target, actor)
		})
}

func (s *appService) ConvertToInvoice(ctx context.Context, ref string, actor core.Actor) (*DocumentResult, error) {
	id, err := s.resolveID(ctx, ref)
	if err != nil {
		return nil, err
	}
	invoice, err := s.conversion.ConvertToInvoice(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("quotation", ref).
		Str("invoice", invoice.Reference).
		Str("actor", actor.Name).
		Msg("quotation converted to invoice")
	return &DocumentResult{Document: invoice}, nil
}

// transition resolves the ref, runs one state-machine operation and returns
// the refreshed document.
func (s *appService) transition(ctx context.Context, ref string, actor core.Actor, verb string,
	op func(context.Context, int, core.Actor) error) (*DocumentResult, error) {

	id, err := s.resolveID(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := op(ctx, id, actor); err != nil {
		return nil, err
	}

	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("reference", doc.Reference).
		Str("status", string(doc.Status)).
		Str("actor", actor.Name).
		Msgf("document %s", verb)
	return &DocumentResult{Document: doc}, nil
}
