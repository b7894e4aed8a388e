package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/casecraft/casecraft-api/internal/apperr"
	"github.com/casecraft/casecraft-api/internal/auth"
	"github.com/casecraft/casecraft-api/internal/model"
	"github.com/casecraft/casecraft-api/internal/repository"
)

type RegisterParams struct {
	Email    string
	Username string
	FullName string
	Password string
}

// Credential is an issued bearer token plus its type tag.
type Credential struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type AuthService interface {
	Register(ctx context.Context, params RegisterParams) (model.User, error)
	Login(ctx context.Context, identifier, password string) (Credential, error)
	// CurrentUser resolves the live account for a validated token subject.
	CurrentUser(ctx context.Context, subject string) (model.User, error)
	// ValidateToken verifies a bearer token and returns its subject.
	ValidateToken(token string) (string, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	hasher   auth.PasswordHasher
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokens *auth.TokenManager,
	hasher auth.PasswordHasher,
) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
	}
}

func (s *authService) Register(ctx context.Context, params RegisterParams) (model.User, error) {
	// Email is checked before username, so a request colliding on both
	// reports the email conflict. These checks are advisory; the unique
	// constraints in the user repository are the backstop.
	if _, err := s.userRepo.GetUserByEmail(ctx, params.Email); err == nil {
		return model.User{}, apperr.EmailTakenErr
	} else if !errors.Is(err, apperr.UserNotFoundErr) {
		return model.User{}, fmt.Errorf("user repository get user by email: %w", err)
	}

	if _, err := s.userRepo.GetUserByUsername(ctx, params.Username); err == nil {
		return model.User{}, apperr.UsernameTakenErr
	} else if !errors.Is(err, apperr.UserNotFoundErr) {
		return model.User{}, fmt.Errorf("user repository get user by username: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(params.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Email:          params.Email,
		Username:       params.Username,
		FullName:       params.FullName,
		HashedPassword: hashedPassword,
		IsAdmin:        false,
		IsActive:       true,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("user repository create user: %w", err)
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, identifier, password string) (Credential, error) {
	// The identifier is resolved as a username first; email is only
	// consulted when no username matches.
	user, err := s.userRepo.GetUserByUsername(ctx, identifier)
	if errors.Is(err, apperr.UserNotFoundErr) {
		user, err = s.userRepo.GetUserByEmail(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, apperr.UserNotFoundErr) {
			return Credential{}, apperr.UserNotFoundErr
		}
		return Credential{}, fmt.Errorf("user repository get user: %w", err)
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return Credential{}, apperr.IncorrectPasswordErr
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return Credential{}, fmt.Errorf("issue token: %w", err)
	}

	return Credential{
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}

func (s *authService) CurrentUser(ctx context.Context, subject string) (model.User, error) {
	// Always a fresh read by the username embedded in the token, never a
	// snapshot from issuance time.
	user, err := s.userRepo.GetUserByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, apperr.UserNotFoundErr) {
			return model.User{}, apperr.InvalidTokenErr
		}
		return model.User{}, fmt.Errorf("user repository get user by username: %w", err)
	}

	if !user.IsActive {
		return model.User{}, apperr.UserInactiveErr
	}

	return user, nil
}

func (s *authService) ValidateToken(token string) (string, error) {
	subject, err := s.tokens.Validate(token)
	if err != nil {
		return "", fmt.Errorf("validate token: %w", err)
	}
	return subject, nil
}
