package services

import (
	"context"
	"errors"
	"strings"

	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/app/repositories"
	"github.com/agromap/agromap/pkg/auth"
)

// SignupInput is the body of POST /api/auth/signup.
type SignupInput struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name"     validate:"max=120"`
	Role     string `json:"role"     validate:"omitempty,oneof=consumer manager"`
}

// SigninInput is the body of POST /api/auth/signin.
type SigninInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is a signed-in user and their token.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users  *repositories.UserRepository
	issuer *auth.Issuer
}

func NewAuthService(users *repositories.UserRepository, issuer *auth.Issuer) *AuthService {
	return &AuthService{users: users, issuer: issuer}
}

// Signup creates an account. Admins are never created here.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: in.Username,
		Password: hash,
		Name:     in.Name,
		Role:     in.Role,
	}
	if user.Role == "" {
		user.Role = models.RoleConsumer
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflict("Username %q is already taken", in.Username)
		}
		return nil, err
	}
	return user, nil
}

// Signin verifies credentials and issues a token.
func (s *AuthService) Signin(ctx context.Context, in SigninInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := check(in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, in.Username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Generate(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

// Role reports the stored role of user id. found is false once the account
// has been deleted.
func (s *AuthService) Role(ctx context.Context, id uint) (role string, found bool, err error) {
	role, err = s.users.Role(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return role, true, nil
}

// Current returns the signed-in user. A token for a deleted account is
// treated as signed out.
func (s *AuthService) Current(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, &Error{Kind: ErrInvalidCredentials, Message: "Session is no longer valid"}
	}
	return user, err
}
