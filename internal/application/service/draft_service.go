package service

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kmarube/eventquote-api/internal/domain/entity"
	"github.com/kmarube/eventquote-api/internal/domain/enum"
	domainRepo "github.com/kmarube/eventquote-api/internal/domain/repository"
	"github.com/kmarube/eventquote-api/pkg/apperror"
	"github.com/kmarube/eventquote-api/pkg/money"
)

// draft is one in-memory editing session. The quotation inside is
// owned exclusively by this session until it is saved; the store is
// not touched by any mutation.
type draft struct {
	mu        sync.Mutex
	quotation entity.Quotation
	saving    bool
}

// DraftService is the mutation surface for in-memory quotation drafts.
// Invalid numeric input coerces to zero, edits against unknown item
// ids are silent no-ops, and the line item list can never be emptied.
// Nothing here persists until Save.
type DraftService struct {
	mu            sync.Mutex
	drafts        map[uuid.UUID]*draft
	quotationRepo domainRepo.QuotationRepository
	storeTimeout  time.Duration
	logger        *zap.Logger
}

// NewDraftService creates a new draft editor service
func NewDraftService(quotationRepo domainRepo.QuotationRepository, storeTimeout time.Duration, logger *zap.Logger) *DraftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftService{
		drafts:        make(map[uuid.UUID]*draft),
		quotationRepo: quotationRepo,
		storeTimeout:  storeTimeout,
		logger:        logger,
	}
}

// DraftView is a read snapshot of a draft with totals freshly derived.
type DraftView struct {
	Quotation entity.Quotation `json:"quotation"`
	Totals    money.Totals     `json:"totals"`
	Saving    bool             `json:"saving"`
}

// Open starts a draft session. With a nil quotation id a new quotation
// is built from the numbering policy; otherwise the stored quotation is
// loaded into the session. Opening an already-open quotation returns
// the existing session unchanged.
func (s *DraftService) Open(ctx context.Context, ownerID uuid.UUID, quotationID *uuid.UUID) (*DraftView, error) {
	if quotationID == nil {
		ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()

		existing, err := s.quotationRepo.ListAll(ctx, ownerID)
		if err != nil {
			s.logger.Warn("draft open: listing collection failed", zap.Error(err))
			return nil, apperror.ErrStoreUnavailable
		}
		q := entity.NewQuotation(ownerID, existing, time.Now())
		return s.adopt(q), nil
	}

	s.mu.Lock()
	if d, ok := s.drafts[*quotationID]; ok && d.quotation.OwnerID == ownerID {
		s.mu.Unlock()
		return s.view(d), nil
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	stored, err := s.quotationRepo.GetByID(ctx, *quotationID)
	if err != nil {
		s.logger.Warn("draft open: loading quotation failed", zap.Error(err))
		return nil, apperror.ErrStoreUnavailable
	}
	if stored == nil || stored.OwnerID != ownerID {
		return nil, apperror.NewNotFoundError("Quotation")
	}
	return s.adopt(stored), nil
}

func (s *DraftService) adopt(q *entity.Quotation) *DraftView {
	d := &draft{quotation: cloneQuotation(q)}
	s.mu.Lock()
	s.drafts[q.ID] = d
	s.mu.Unlock()
	return s.view(d)
}

// Get returns the current draft state with recomputed totals.
func (s *DraftService) Get(ownerID, draftID uuid.UUID) (*DraftView, error) {
	d, err := s.session(ownerID, draftID)
	if err != nil {
		return nil, err
	}
	return s.view(d), nil
}

// SetField updates a header-level field. Numeric fields parse the raw
// value and default to zero on garbage; everything else is stored
// verbatim. Unknown field names are ignored.
func (s *DraftService) SetField(ownerID, draftID uuid.UUID, field, value string) (*DraftView, error) {
	d, err := s.session(ownerID, draftID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	q := &d.quotation
	switch field {
	case "client_name":
		q.ClientName = value
	case "company_name":
		q.CompanyName = value
	case "address":
		q.Address = value
	case "contact_number":
		q.ContactNumber = value
	case "quotation_number":
		q.QuotationNumber = value
	case "valid_until":
		if t, err := time.Parse("2006-01-02", value); err == nil {
			q.ValidUntil = t
		}
	case "tax_rate":
		q.TaxRate = parseAmount(value)
	case "discount":
		q.Discount = parseAmount(value)
	case "status":
		q.Status = enum.ParseQuotationStatus(value)
	case "terms":
		q.Terms = value
	case "notes":
		q.Notes = value
	}
	d.mu.Unlock()

	return s.view(d), nil
}

// EditItem updates one field of one line item. Qty and unit price
// recompute the item amount synchronously; an unknown item id leaves
// the draft untouched.
func (s *DraftService) EditItem(ownerID, draftID, itemID uuid.UUID, field, value string) (*DraftView, error) {
	d, err := s.session(ownerID, draftID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	for i := range d.quotation.Items {
		item := &d.quotation.Items[i]
		if item.ID != itemID {
			continue
		}
		switch field {
		case "requirement":
			item.Requirement = value
		case "qty":
			item.Qty = parseAmount(value)
			item.Amount = money.LineAmount(item.Qty, item.UnitPrice)
		case "unit_price":
			item.UnitPrice = parseAmount(value)
			item.Amount = money.LineAmount(item.Qty, item.UnitPrice)
		case "remark":
			item.Remark = value
		}
		break
	}
	d.mu.Unlock()

	return s.view(d), nil
}

// AddItem appends a fresh empty line item.
func (s *DraftService) AddItem(ownerID, draftID uuid.UUID) (*DraftView, error) {
	d, err := s.session(ownerID, draftID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	item := entity.NewLineItem()
	item.QuotationID = d.quotation.ID
	d.quotation.Items = append(d.quotation.Items, item)
	d.mu.Unlock()

	return s.view(d), nil
}

// RemoveItem drops the matching line item unless it is the last one
// left; a quotation always keeps at least one item, so removing the
// final item is a no-op rather than an error.
func (s *DraftService) RemoveItem(ownerID, draftID, itemID uuid.UUID) (*DraftView, error) {
	d, err := s.session(ownerID, draftID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if len(d.quotation.Items) > 1 {
		items := d.quotation.Items
		for i := range items {
			if items[i].ID == itemID {
				d.quotation.Items = append(items[:i:i], items[i+1:]...)
				break
			}
		}
	}
	d.mu.Unlock()

	return s.view(d), nil
}

// Save materializes the derived totals, refreshes the issue date and
// upserts the draft. A second save for the same draft is rejected
// while the first is still pending; the draft itself stays editable
// and intact whether or not the store write succeeds.
func (s *DraftService) Save(ctx context.Context, ownerID, draftID uuid.UUID) (*entity.Quotation, error) {
	d, err := s.session(ownerID, draftID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.saving {
		d.mu.Unlock()
		return nil, apperror.ErrSavePending
	}
	d.saving = true
	now := time.Now()
	d.quotation.DateIssued = now.Format(entity.DateIssuedFormat)
	d.quotation.UpdatedAt = now
	d.quotation.Recalculate()
	snapshot := cloneQuotation(&d.quotation)
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.saving = false
		d.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.quotationRepo.Upsert(ctx, &snapshot); err != nil {
		s.logger.Warn("draft save failed", zap.String("quotation_id", draftID.String()), zap.Error(err))
		if ctx.Err() != nil {
			return nil, apperror.ErrStoreTimeout
		}
		return nil, apperror.ErrStoreUnavailable
	}
	return &snapshot, nil
}

// Discard closes a draft session, dropping unsaved changes.
func (s *DraftService) Discard(ownerID, draftID uuid.UUID) error {
	if _, err := s.session(ownerID, draftID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.drafts, draftID)
	s.mu.Unlock()
	return nil
}

// DiscardFor drops any open session for a quotation regardless of
// state. Called when the quotation is deleted from the store.
func (s *DraftService) DiscardFor(quotationID uuid.UUID) {
	s.mu.Lock()
	delete(s.drafts, quotationID)
	s.mu.Unlock()
}

func (s *DraftService) session(ownerID, draftID uuid.UUID) (*draft, error) {
	s.mu.Lock()
	d, ok := s.drafts[draftID]
	s.mu.Unlock()
	if !ok || d.quotation.OwnerID != ownerID {
		return nil, apperror.NewNotFoundError("Draft")
	}
	return d, nil
}

func (s *DraftService) view(d *draft) *DraftView {
	d.mu.Lock()
	defer d.mu.Unlock()

	q := cloneQuotation(&d.quotation)
	return &DraftView{
		Quotation: q,
		Totals:    q.Totals(),
		Saving:    d.saving,
	}
}

func cloneQuotation(q *entity.Quotation) entity.Quotation {
	out := *q
	out.Items = make([]entity.LineItem, len(q.Items))
	copy(out.Items, q.Items)
	return out
}

// parseAmount parses a numeric entry the way the editor treats user
// input: anything that is not a finite non-negative number becomes
// zero. ParseFloat accepts "NaN" and "Inf" literals without error, and
// neither compares below zero, so they need their own check.
func parseAmount(value string) float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
