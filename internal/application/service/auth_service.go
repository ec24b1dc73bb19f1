package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/kmarube/eventquote-api/internal/domain/entity"
	domainRepo "github.com/kmarube/eventquote-api/internal/domain/repository"
	"github.com/kmarube/eventquote-api/pkg/apperror"
	"github.com/kmarube/eventquote-api/pkg/utils"
)

// AuthService handles account registration and login. Each account is
// the owning scope for its quotation collection.
type AuthService struct {
	userRepo   domainRepo.UserRepository
	jwtManager *utils.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo domainRepo.UserRepository, jwtManager *utils.JWTManager) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// AuthResult is a user together with an access token for it.
type AuthResult struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a new account and returns a signed token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}
