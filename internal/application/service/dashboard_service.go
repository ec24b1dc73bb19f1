package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kmarube/eventquote-api/internal/domain/entity"
	"github.com/kmarube/eventquote-api/internal/domain/enum"
	domainRepo "github.com/kmarube/eventquote-api/internal/domain/repository"
	"github.com/kmarube/eventquote-api/pkg/apperror"
	"github.com/kmarube/eventquote-api/pkg/money"
)

// DashboardService derives summary statistics over the quotation
// collection.
type DashboardService struct {
	quotationRepo domainRepo.QuotationRepository
	storeTimeout  time.Duration
	logger        *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(quotationRepo domainRepo.QuotationRepository, storeTimeout time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		quotationRepo: quotationRepo,
		storeTimeout:  storeTimeout,
		logger:        logger,
	}
}

// DashboardSummary is the filtered collection plus its statistics.
type DashboardSummary struct {
	Total      int                `json:"total"`
	Pending    int                `json:"pending"`
	Accepted   int                `json:"accepted"`
	Revenue    float64            `json:"revenue"`
	Quotations []entity.Quotation `json:"quotations"`
}

// Aggregate filters, sorts and summarizes a collection snapshot. Pure
// function of its inputs: call it again whenever the snapshot or the
// search term changes rather than caching the result.
func Aggregate(quotations []entity.Quotation, search string) *DashboardSummary {
	term := strings.ToLower(strings.TrimSpace(search))

	filtered := make([]entity.Quotation, 0, len(quotations))
	for _, q := range quotations {
		if term != "" &&
			!strings.Contains(strings.ToLower(q.ClientName), term) &&
			!strings.Contains(strings.ToLower(q.QuotationNumber), term) {
			continue
		}
		filtered = append(filtered, q)
	}

	// Newest first; a missing creation timestamp sorts as oldest.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	summary := &DashboardSummary{
		Total:      len(filtered),
		Quotations: filtered,
	}
	revenue := 0.0
	for _, q := range filtered {
		switch q.Status {
		case enum.QuotationStatusPending:
			summary.Pending++
		case enum.QuotationStatusAccepted:
			summary.Accepted++
			if !math.IsNaN(q.GrandTotal) && !math.IsInf(q.GrandTotal, 0) {
				revenue += q.GrandTotal
			}
		}
	}
	summary.Revenue = money.Round2(revenue)
	return summary
}

// GetSummary loads the current collection and aggregates it.
func (s *DashboardService) GetSummary(ctx context.Context, ownerID uuid.UUID, search string) (*DashboardSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	quotations, err := s.quotationRepo.ListAll(ctx, ownerID)
	if err != nil {
		s.logger.Warn("dashboard: listing collection failed", zap.Error(err))
		return nil, apperror.ErrStoreUnavailable
	}
	return Aggregate(quotations, search), nil
}
