package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

type RegisterInput struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name"     validate:"required,min=1,max=255"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AddressInput struct {
	Street  string `json:"street"  validate:"required,max=255"`
	City    string `json:"city"    validate:"required,max=100"`
	State   string `json:"state"   validate:"required,max=100"`
	Zip     string `json:"zip"     validate:"required,max=20"`
	Country string `json:"country" validate:"required,max=100"`
}

// SignedIn is a user plus the token to put in the auth cookie.
type SignedIn struct {
	User  models.User
	Token string
}

type AuthService struct {
	users  repositories.UserRepository
	tokens *auth.Tokens
}

func NewAuthService(users repositories.UserRepository, tokens *auth.Tokens) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a user with the "user" role and signs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (SignedIn, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return SignedIn{}, err
	}

	u := models.User{
		Email:        strings.TrimSpace(in.Email),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return SignedIn{}, ErrEmailTaken
		}
		return SignedIn{}, fmt.Errorf("create user: %w", err)
	}
	return s.signIn(u)
}

// Login checks credentials. Unknown email and wrong password look the same.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (SignedIn, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if errors.Is(err, repositories.ErrNotFound) {
		return SignedIn{}, ErrInvalidCredentials
	}
	if err != nil {
		return SignedIn{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return SignedIn{}, ErrInvalidCredentials
	}
	return s.signIn(u)
}

func (s *AuthService) signIn(u models.User) (SignedIn, error) {
	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return SignedIn{}, fmt.Errorf("issue token: %w", err)
	}
	return SignedIn{User: u, Token: token}, nil
}

// Me returns the signed-in user's record.
func (s *AuthService) Me(ctx context.Context, userID string) (models.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateAddress replaces the saved address.
func (s *AuthService) UpdateAddress(ctx context.Context, userID string, in AddressInput) (models.User, error) {
	return s.users.UpdateAddress(ctx, userID, models.Address{
		Street:  in.Street,
		City:    in.City,
		State:   in.State,
		Zip:     in.Zip,
		Country: in.Country,
	})
}
