package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kmarube/eventquote-api/internal/domain/entity"
	domainRepo "github.com/kmarube/eventquote-api/internal/domain/repository"
)

// userRecord is the on-disk shape of an account. The entity hides the
// password hash from JSON, so persistence needs its own struct.
type userRecord struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r userRecord) toEntity() *entity.User {
	return &entity.User{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Password:  r.Password,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// fileUserRepository keeps accounts in a JSON file next to the
// quotation file, for deployments that run without Postgres.
type fileUserRepository struct {
	mu    sync.RWMutex
	path  string
	users map[uuid.UUID]userRecord
}

// NewFileUserRepository opens (or creates) a JSON-file-backed user store.
func NewFileUserRepository(path string) (domainRepo.UserRepository, error) {
	r := &fileUserRepository{
		path:  path,
		users: make(map[uuid.UUID]userRecord),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user file: %w", err)
	}
	var records []userRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse user file: %w", err)
	}
	for _, u := range records {
		r.users[u.ID] = u
	}
	return r, nil
}

func (r *fileUserRepository) persist() error {
	records := make([]userRecord, 0, len(r.users))
	for _, u := range r.users {
		records = append(records, u)
	}
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

func (r *fileUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = userRecord{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.Password,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	return r.persist()
}

func (r *fileUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return u.toEntity(), nil
}

func (r *fileUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u.toEntity(), nil
		}
	}
	return nil, nil
}
