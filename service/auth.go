package service

import (
	"context"
	"strings"

	"groovy/core/apperr"
	"groovy/core/auth"
	"groovy/core/events"
	"groovy/dto"
	"groovy/logger"
	"groovy/mapper"
	"groovy/model"
)

// AuthService registers accounts, logs them in and resolves bearer tokens.
type AuthService struct {
	*deps
	tokens           *auth.TokenService
	allowAdminSignup bool
}

func (s *AuthService) Register(ctx context.Context, in dto.UserDto) (*dto.AuthResponse, error) {
	if err := dto.Validate(&in); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, apperr.Validation(apperr.FieldError{Field: "password", Message: "must not be blank"})
	}
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if role == model.RoleAdmin && !s.allowAdminSignup {
		return nil, apperr.Forbidden("Registering as ADMIN is not allowed")
	}

	email := strings.TrimSpace(in.Email)
	exists, err := s.store.Users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("Email is already in use")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{Name: strings.TrimSpace(in.Name), Email: email, PasswordHash: hash, Role: role}
	if err := s.store.Users.Create(ctx, user); err != nil {
		return nil, emailInUse(err)
	}
	logger.Info("User registered", logger.Int64("userId", user.ID), logger.String("role", string(role)))
	if role == model.RoleArtist {
		s.changed(ctx, events.Created, events.EntityArtist, user.ID)
	}
	return s.respond(user)
}

// Login answers unknown emails and wrong passwords identically.
func (s *AuthService) Login(ctx context.Context, in dto.AuthRequest) (*dto.AuthResponse, error) {
	if err := dto.Validate(&in); err != nil {
		return nil, err
	}
	user, err := s.store.Users.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPasswordHash(in.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	return s.respond(user)
}

// Authenticate verifies a bearer token and loads the account it names, so
// role changes and deletions take effect before the token expires.
func (s *AuthService) Authenticate(ctx context.Context, token string) (auth.Principal, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return auth.Principal{}, apperr.Wrap(apperr.KindUnauthorized, err, "Invalid or expired token")
	}
	user, err := s.store.Users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return auth.Principal{}, err
	}
	if user == nil {
		return auth.Principal{}, apperr.Unauthorized("Invalid or expired token")
	}
	return auth.Principal{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

func (s *AuthService) respond(user *model.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, User: mapper.ToUserDto(user)}, nil
}
