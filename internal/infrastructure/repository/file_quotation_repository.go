package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kmarube/eventquote-api/internal/domain/entity"
	domainRepo "github.com/kmarube/eventquote-api/internal/domain/repository"
)

// fileQuotationRepository persists the collection as one flat JSON
// document on disk. It serves small single-node deployments and tests;
// the interface it satisfies is identical to the Postgres backend.
type fileQuotationRepository struct {
	mu         sync.RWMutex
	path       string
	quotations map[uuid.UUID]entity.Quotation
	hub        *watchHub
}

// NewFileQuotationRepository opens (or creates) a JSON-file-backed
// quotation store at path.
func NewFileQuotationRepository(path string) (domainRepo.QuotationRepository, error) {
	r := &fileQuotationRepository{
		path:       path,
		quotations: make(map[uuid.UUID]entity.Quotation),
		hub:        newWatchHub(),
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *fileQuotationRepository) load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read quotation file: %w", err)
	}
	var records []entity.Quotation
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse quotation file: %w", err)
	}
	for _, q := range records {
		r.quotations[q.ID] = q
	}
	return nil
}

// persist rewrites the whole file. Written to a temp file first and
// renamed so a crash mid-write never leaves a torn document.
func (r *fileQuotationRepository) persist() error {
	records := make([]entity.Quotation, 0, len(r.quotations))
	for _, q := range r.quotations {
		records = append(records, q)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

func (r *fileQuotationRepository) Create(ctx context.Context, quotation *entity.Quotation) error {
	r.mu.Lock()
	if quotation.ID == uuid.Nil {
		quotation.ID = uuid.New()
	}
	now := time.Now()
	quotation.CreatedAt = now
	quotation.UpdatedAt = now
	for i := range quotation.Items {
		if quotation.Items[i].ID == uuid.Nil {
			quotation.Items[i].ID = uuid.New()
		}
		quotation.Items[i].QuotationID = quotation.ID
	}
	r.quotations[quotation.ID] = *quotation
	err := r.persist()
	r.mu.Unlock()

	if err != nil {
		return err
	}
	r.notify(quotation.OwnerID)
	return nil
}

// copyRecord detaches the line item slice so callers can mutate what
// they read back without touching the stored record.
func copyRecord(q entity.Quotation) entity.Quotation {
	q.Items = append([]entity.LineItem(nil), q.Items...)
	return q
}

func (r *fileQuotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Quotation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.quotations[id]
	if !ok {
		return nil, nil
	}
	q = copyRecord(q)
	return &q, nil
}

func (r *fileQuotationRepository) Upsert(ctx context.Context, quotation *entity.Quotation) error {
	r.mu.Lock()
	now := time.Now()
	if existing, ok := r.quotations[quotation.ID]; ok {
		quotation.CreatedAt = existing.CreatedAt
	} else {
		if quotation.CreatedAt.IsZero() {
			quotation.CreatedAt = now
		}
	}
	quotation.UpdatedAt = now
	for i := range quotation.Items {
		if quotation.Items[i].ID == uuid.Nil {
			quotation.Items[i].ID = uuid.New()
		}
		quotation.Items[i].QuotationID = quotation.ID
	}
	r.quotations[quotation.ID] = *quotation
	err := r.persist()
	r.mu.Unlock()

	if err != nil {
		return err
	}
	r.notify(quotation.OwnerID)
	return nil
}

func (r *fileQuotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	existing, ok := r.quotations[id]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	delete(r.quotations, id)
	err := r.persist()
	r.mu.Unlock()

	if err != nil {
		return err
	}
	r.notify(existing.OwnerID)
	return nil
}

func (r *fileQuotationRepository) List(ctx context.Context, ownerID uuid.UUID, params *domainRepo.QuotationFilterParams) ([]entity.Quotation, int64, error) {
	all, err := r.ListAll(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}

	filtered := all[:0:0]
	term := strings.ToLower(params.Search)
	for _, q := range all {
		if term != "" &&
			!strings.Contains(strings.ToLower(q.QuotationNumber), term) &&
			!strings.Contains(strings.ToLower(q.ClientName), term) {
			continue
		}
		if params.Status != nil && q.Status != *params.Status {
			continue
		}
		filtered = append(filtered, q)
	}

	total := int64(len(filtered))
	params.Pagination.Validate()
	offset := params.Pagination.Offset()
	if offset >= len(filtered) {
		return []entity.Quotation{}, total, nil
	}
	end := offset + params.Pagination.PerPage
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (r *fileQuotationRepository) ListAll(ctx context.Context, ownerID uuid.UUID) ([]entity.Quotation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]entity.Quotation, 0, len(r.quotations))
	for _, q := range r.quotations {
		if q.OwnerID == ownerID {
			records = append(records, copyRecord(q))
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (r *fileQuotationRepository) Watch(ctx context.Context, ownerID uuid.UUID) (*domainRepo.Subscription, error) {
	sub, id := r.hub.subscribe(ctx, ownerID)

	snapshot, err := r.ListAll(ctx, ownerID)
	if err != nil {
		sub.Cancel()
		return nil, err
	}
	r.hub.prime(ownerID, id, snapshot)
	return sub, nil
}

func (r *fileQuotationRepository) notify(ownerID uuid.UUID) {
	snapshot, err := r.ListAll(context.Background(), ownerID)
	if err != nil {
		return
	}
	r.hub.publish(ownerID, snapshot)
}
