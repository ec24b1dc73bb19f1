package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kmarube/eventquote-api/internal/domain/entity"
	domainRepo "github.com/kmarube/eventquote-api/internal/domain/repository"
)

type quotationRepository struct {
	db  *gorm.DB
	hub *watchHub
}

// NewQuotationRepository creates a Postgres-backed quotation store.
func NewQuotationRepository(db *gorm.DB) domainRepo.QuotationRepository {
	return &quotationRepository{db: db, hub: newWatchHub()}
}

func (r *quotationRepository) Create(ctx context.Context, quotation *entity.Quotation) error {
	if err := r.db.WithContext(ctx).Create(quotation).Error; err != nil {
		return err
	}
	r.notify(ctx, quotation.OwnerID)
	return nil
}

func (r *quotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Quotation, error) {
	var quotation entity.Quotation
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&quotation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

// Upsert writes the full record, replacing its line items. Save
// creates the row when the primary key is absent and updates it
// otherwise, which gives the create-or-overwrite contract.
func (r *quotationRepository) Upsert(ctx context.Context, quotation *entity.Quotation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.LineItem{}, "quotation_id = ?", quotation.ID).Error; err != nil {
			return err
		}
		for i := range quotation.Items {
			quotation.Items[i].QuotationID = quotation.ID
		}
		return tx.Save(quotation).Error
	})
	if err != nil {
		return err
	}
	r.notify(ctx, quotation.OwnerID)
	return nil
}

func (r *quotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		// Idempotent: deleting an absent record succeeds.
		return nil
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.LineItem{}, "quotation_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Quotation{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}
	r.notify(ctx, existing.OwnerID)
	return nil
}

func (r *quotationRepository) List(ctx context.Context, ownerID uuid.UUID, params *domainRepo.QuotationFilterParams) ([]entity.Quotation, int64, error) {
	var quotations []entity.Quotation
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Quotation{}).Where("owner_id = ?", ownerID)

	if params.Search != "" {
		query = query.Where("quotation_number ILIKE ? OR client_name ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Items").
		Order("created_at DESC").
		Find(&quotations).Error

	return quotations, total, err
}

func (r *quotationRepository) ListAll(ctx context.Context, ownerID uuid.UUID) ([]entity.Quotation, error) {
	var quotations []entity.Quotation
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&quotations).Error
	return quotations, err
}

func (r *quotationRepository) Watch(ctx context.Context, ownerID uuid.UUID) (*domainRepo.Subscription, error) {
	sub, id := r.hub.subscribe(ctx, ownerID)

	// Prime only this subscription with the current collection.
	snapshot, err := r.ListAll(ctx, ownerID)
	if err != nil {
		sub.Cancel()
		return nil, err
	}
	r.hub.prime(ownerID, id, snapshot)
	return sub, nil
}

func (r *quotationRepository) notify(ctx context.Context, ownerID uuid.UUID) {
	snapshot, err := r.ListAll(ctx, ownerID)
	if err != nil {
		return
	}
	r.hub.publish(ownerID, snapshot)
}
