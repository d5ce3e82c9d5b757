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
	"groovy/repository"
)

// UserService manages accounts of every role.
type UserService struct {
	*deps
}

func (s *UserService) List(ctx context.Context) ([]dto.UserDto, error) {
	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	return mapper.ToUserDtos(users), nil
}

func (s *UserService) Get(ctx context.Context, id int64) (dto.UserDto, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return dto.UserDto{}, err
	}
	return mapper.ToUserDto(user), nil
}

// Current returns the account behind the request principal.
func (s *UserService) Current(ctx context.Context, p auth.Principal) (dto.UserDto, error) {
	return s.Get(ctx, p.UserID)
}

// Create is the administrator path for adding an account of any role.
func (s *UserService) Create(ctx context.Context, in dto.UserDto) (dto.UserDto, error) {
	if err := dto.Validate(&in); err != nil {
		return dto.UserDto{}, err
	}
	if in.Password == "" {
		return dto.UserDto{}, apperr.Validation(apperr.FieldError{Field: "password", Message: "must not be blank"})
	}
	email := strings.TrimSpace(in.Email)
	exists, err := s.store.Users.ExistsByEmail(ctx, email)
	if err != nil {
		return dto.UserDto{}, err
	}
	if exists {
		return dto.UserDto{}, apperr.Conflict("Email is already in use")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return dto.UserDto{}, err
	}

	user := &model.User{Name: strings.TrimSpace(in.Name), Email: email, PasswordHash: hash, Role: in.Role}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		return dto.UserDto{}, emailInUse(err)
	}
	if user.IsArtist() {
		s.changed(ctx, events.Created, events.EntityArtist, user.ID)
	}
	return mapper.ToUserDto(user), nil
}

// Update lets users edit themselves and administrators edit anyone. An
// empty password keeps the current one; only administrators change roles.
func (s *UserService) Update(ctx context.Context, p auth.Principal, id int64, in dto.UserDto) (dto.UserDto, error) {
	if !p.IsAdmin() && p.UserID != id {
		return dto.UserDto{}, apperr.Forbidden("You can only update your own account")
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return dto.UserDto{}, err
	}
	if err := dto.Validate(&in); err != nil {
		return dto.UserDto{}, err
	}

	email := strings.TrimSpace(in.Email)
	if email != user.Email {
		exists, err := s.store.Users.ExistsByEmail(ctx, email)
		if err != nil {
			return dto.UserDto{}, err
		}
		if exists {
			return dto.UserDto{}, apperr.Conflict("Email is already in use")
		}
	}
	wasArtist := user.IsArtist()
	if in.Role != "" && in.Role != user.Role {
		if !p.IsAdmin() {
			return dto.UserDto{}, apperr.Forbidden("Only administrators can change roles")
		}
		if wasArtist {
			albums, err := s.store.Artists.CountAlbums(ctx, user.ID)
			if err != nil {
				return dto.UserDto{}, err
			}
			if albums > 0 {
				return dto.UserDto{}, apperr.BadRequest("Cannot change role of artist with albums. Remove all albums first.")
			}
		}
		user.Role = in.Role
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return dto.UserDto{}, err
		}
		user.PasswordHash = hash
	}
	user.Name = strings.TrimSpace(in.Name)
	user.Email = email

	if err := s.store.Users.Update(ctx, user); err != nil {
		return dto.UserDto{}, emailInUse(err)
	}
	if wasArtist || user.IsArtist() {
		s.changed(ctx, events.Updated, events.EntityArtist, user.ID)
	}
	return mapper.ToUserDto(user), nil
}

// Delete removes the account with its playlists and favorites. Artists
// must have no albums left.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := deleteAccount(ctx, s.store, user); err != nil {
		return err
	}
	logger.Info("User deleted", logger.Int64("userId", id))
	if user.IsArtist() {
		s.changed(ctx, events.Deleted, events.EntityArtist, id)
	}
	return nil
}

func (s *UserService) load(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("User", id)
	}
	return user, nil
}

// deleteAccount is shared by user and artist deletion.
func deleteAccount(ctx context.Context, store *repository.Store, user *model.User) error {
	albums, err := store.Artists.CountAlbums(ctx, user.ID)
	if err != nil {
		return err
	}
	if albums > 0 {
		return apperr.BadRequest("Cannot delete artist with albums. Remove all albums first.")
	}
	return store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Favorites.DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.Playlists.DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		return tx.Users.Delete(ctx, user.ID)
	})
}
