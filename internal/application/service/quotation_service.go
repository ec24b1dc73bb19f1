package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kmarube/eventquote-api/internal/domain/entity"
	"github.com/kmarube/eventquote-api/internal/domain/enum"
	domainRepo "github.com/kmarube/eventquote-api/internal/domain/repository"
	"github.com/kmarube/eventquote-api/pkg/apperror"
	"github.com/kmarube/eventquote-api/pkg/pagination"
)

// QuotationService handles the persisted quotation collection.
type QuotationService struct {
	quotationRepo domainRepo.QuotationRepository
	storeTimeout  time.Duration
	logger        *zap.Logger
}

// NewQuotationService creates a new quotation service
func NewQuotationService(quotationRepo domainRepo.QuotationRepository, storeTimeout time.Duration, logger *zap.Logger) *QuotationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuotationService{
		quotationRepo: quotationRepo,
		storeTimeout:  storeTimeout,
		logger:        logger,
	}
}

// LineItemInput is one requested line item row.
type LineItemInput struct {
	Requirement string  `json:"requirement"`
	Qty         float64 `json:"qty"`
	UnitPrice   float64 `json:"unit_price"`
	Remark      string  `json:"remark"`
}

// QuotationPatch carries the writable fields of a quotation. Nil
// fields are left untouched on update (merge semantics); derived
// totals are never part of the patch and are always recomputed.
type QuotationPatch struct {
	ClientName      *string          `json:"client_name"`
	CompanyName     *string          `json:"company_name"`
	Address         *string          `json:"address"`
	ContactNumber   *string          `json:"contact_number"`
	QuotationNumber *string          `json:"quotation_number"`
	ValidUntil      *time.Time       `json:"valid_until"`
	TaxRate         *float64         `json:"tax_rate"`
	Discount        *float64         `json:"discount"`
	Status          *string          `json:"status"`
	Terms           *string          `json:"terms"`
	Notes           *string          `json:"notes"`
	Items           *[]LineItemInput `json:"items"`
}

// apply merges the patch into the quotation. Numeric inputs below zero
// normalize to zero instead of erroring.
func (p *QuotationPatch) apply(q *entity.Quotation) {
	if p.ClientName != nil {
		q.ClientName = *p.ClientName
	}
	if p.CompanyName != nil {
		q.CompanyName = *p.CompanyName
	}
	if p.Address != nil {
		q.Address = *p.Address
	}
	if p.ContactNumber != nil {
		q.ContactNumber = *p.ContactNumber
	}
	if p.QuotationNumber != nil {
		// Uniqueness is not re-validated on manual edits.
		q.QuotationNumber = *p.QuotationNumber
	}
	if p.ValidUntil != nil {
		q.ValidUntil = *p.ValidUntil
	}
	if p.TaxRate != nil {
		q.TaxRate = nonNegative(*p.TaxRate)
	}
	if p.Discount != nil {
		q.Discount = nonNegative(*p.Discount)
	}
	if p.Status != nil {
		q.Status = enum.ParseQuotationStatus(*p.Status)
	}
	if p.Terms != nil {
		q.Terms = *p.Terms
	}
	if p.Notes != nil {
		q.Notes = *p.Notes
	}
	if p.Items != nil && len(*p.Items) > 0 {
		items := make([]entity.LineItem, len(*p.Items))
		for i, in := range *p.Items {
			item := entity.NewLineItem()
			item.QuotationID = q.ID
			item.Requirement = in.Requirement
			item.Qty = nonNegative(in.Qty)
			item.UnitPrice = nonNegative(in.UnitPrice)
			item.Remark = in.Remark
			items[i] = item
		}
		q.Items = items
	}
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// CreateQuotation builds a quotation with default values and the next
// sequence number, applies the optional patch and persists it.
func (s *QuotationService) CreateQuotation(ctx context.Context, ownerID uuid.UUID, patch *QuotationPatch) (*entity.Quotation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	existing, err := s.quotationRepo.ListAll(ctx, ownerID)
	if err != nil {
		return nil, s.storeError("list", err)
	}

	quotation := entity.NewQuotation(ownerID, existing, time.Now())
	if patch != nil {
		patch.apply(quotation)
	}
	quotation.Recalculate()

	if err := s.quotationRepo.Create(ctx, quotation); err != nil {
		return nil, s.storeError("create", err)
	}
	return quotation, nil
}

// GetQuotation retrieves a quotation by ID scoped to its owner.
func (s *QuotationService) GetQuotation(ctx context.Context, ownerID, id uuid.UUID) (*entity.Quotation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError("get", err)
	}
	if quotation == nil || quotation.OwnerID != ownerID {
		return nil, apperror.NewNotFoundError("Quotation")
	}
	return quotation, nil
}

// ListQuotationsInput represents the input for listing quotations
type ListQuotationsInput struct {
	OwnerID    uuid.UUID
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.QuotationStatus
}

// ListQuotations lists quotations with filtering
func (s *QuotationService) ListQuotations(ctx context.Context, input *ListQuotationsInput) (*pagination.PaginatedResult[entity.Quotation], error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	params := &domainRepo.QuotationFilterParams{
		Pagination: input.Pagination,
		Search:     input.Search,
		Status:     input.Status,
	}

	quotations, total, err := s.quotationRepo.List(ctx, input.OwnerID, params)
	if err != nil {
		return nil, s.storeError("list", err)
	}

	pag := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(quotations, pag), nil
}

// UpdateQuotation merges the patch into the stored quotation,
// recomputes derived totals and writes the result back.
func (s *QuotationService) UpdateQuotation(ctx context.Context, ownerID, id uuid.UUID, patch *QuotationPatch) (*entity.Quotation, error) {
	quotation, err := s.GetQuotation(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	patch.apply(quotation)
	quotation.DateIssued = time.Now().Format(entity.DateIssuedFormat)
	quotation.UpdatedAt = time.Now()
	quotation.Recalculate()

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.quotationRepo.Upsert(ctx, quotation); err != nil {
		return nil, s.storeError("upsert", err)
	}
	return quotation, nil
}

// DeleteQuotation removes a quotation permanently. Deleting an id that
// is already gone succeeds.
func (s *QuotationService) DeleteQuotation(ctx context.Context, ownerID, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return s.storeError("get", err)
	}
	if quotation == nil {
		return nil
	}
	if quotation.OwnerID != ownerID {
		return apperror.NewNotFoundError("Quotation")
	}

	if err := s.quotationRepo.Delete(ctx, id); err != nil {
		return s.storeError("delete", err)
	}
	return nil
}

// WatchQuotations opens a live snapshot subscription for the owner's
// collection.
func (s *QuotationService) WatchQuotations(ctx context.Context, ownerID uuid.UUID) (*domainRepo.Subscription, error) {
	sub, err := s.quotationRepo.Watch(ctx, ownerID)
	if err != nil {
		return nil, s.storeError("watch", err)
	}
	return sub, nil
}

// storeError maps a backend failure onto the non-fatal store error
// taxonomy. Timeouts get their own signal so callers can tell expiry
// from outage; nothing is retried automatically.
func (s *QuotationService) storeError(op string, err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	s.logger.Warn("quotation store operation failed", zap.String("op", op), zap.Error(err))
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.ErrStoreTimeout
	}
	return apperror.ErrStoreUnavailable
}
