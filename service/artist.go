package service

import (
	"context"
	"strings"

	"groovy/cache"
	"groovy/core/apperr"
	"groovy/core/auth"
	"groovy/core/events"
	"groovy/dto"
	"groovy/mapper"
	"groovy/model"
)

// ArtistService manages artist profiles, which are users with the ARTIST role.
type ArtistService struct {
	*deps
}

func (s *ArtistService) List(ctx context.Context) ([]dto.ArtistDto, error) {
	return cache.Remember(ctx, s.cache, cache.KeyArtists, func() ([]dto.ArtistDto, error) {
		artists, err := s.store.Artists.List(ctx)
		if err != nil {
			return nil, err
		}
		return mapper.ToArtistDtos(artists), nil
	})
}

func (s *ArtistService) Get(ctx context.Context, id int64) (dto.ArtistDto, error) {
	artist, err := s.load(ctx, id)
	if err != nil {
		return dto.ArtistDto{}, err
	}
	return mapper.ToArtistDto(artist), nil
}

// Search matches names case-insensitively; a blank name lists everything.
func (s *ArtistService) Search(ctx context.Context, name string) ([]dto.ArtistDto, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.List(ctx)
	}
	artists, err := s.store.Artists.SearchByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return mapper.ToArtistDtos(artists), nil
}

// Create always stores the ARTIST role. The password is optional; without
// one the artist cannot log in.
func (s *ArtistService) Create(ctx context.Context, in dto.ArtistDto) (dto.ArtistDto, error) {
	if err := dto.Validate(&in); err != nil {
		return dto.ArtistDto{}, err
	}
	email := strings.TrimSpace(in.Email)
	exists, err := s.store.Users.ExistsByEmail(ctx, email)
	if err != nil {
		return dto.ArtistDto{}, err
	}
	if exists {
		return dto.ArtistDto{}, apperr.Conflict("Email is already in use")
	}

	artist := &model.User{Name: strings.TrimSpace(in.Name), Email: email, Role: model.RoleArtist}
	applyProfile(artist, in)
	if in.Password != "" {
		if artist.PasswordHash, err = auth.HashPassword(in.Password); err != nil {
			return dto.ArtistDto{}, err
		}
	}
	if err := s.store.Users.Create(ctx, artist); err != nil {
		return dto.ArtistDto{}, emailInUse(err)
	}
	s.changed(ctx, events.Created, events.EntityArtist, artist.ID)
	return s.Get(ctx, artist.ID)
}

// Update is allowed to administrators and to the artist themself.
func (s *ArtistService) Update(ctx context.Context, p auth.Principal, id int64, in dto.ArtistDto) (dto.ArtistDto, error) {
	if !p.IsAdmin() && p.UserID != id {
		return dto.ArtistDto{}, apperr.Forbidden("You can only update your own artist profile")
	}
	artist, err := s.load(ctx, id)
	if err != nil {
		return dto.ArtistDto{}, err
	}
	if err := dto.Validate(&in); err != nil {
		return dto.ArtistDto{}, err
	}

	email := strings.TrimSpace(in.Email)
	if email != artist.Email {
		exists, err := s.store.Users.ExistsByEmail(ctx, email)
		if err != nil {
			return dto.ArtistDto{}, err
		}
		if exists {
			return dto.ArtistDto{}, apperr.Conflict("Email is already in use")
		}
	}
	artist.Name = strings.TrimSpace(in.Name)
	artist.Email = email
	applyProfile(artist, in)
	if in.Password != "" {
		if artist.PasswordHash, err = auth.HashPassword(in.Password); err != nil {
			return dto.ArtistDto{}, err
		}
	}

	if err := s.store.Users.Update(ctx, artist); err != nil {
		return dto.ArtistDto{}, emailInUse(err)
	}
	s.changed(ctx, events.Updated, events.EntityArtist, id)
	return s.Get(ctx, id)
}

func (s *ArtistService) Delete(ctx context.Context, id int64) error {
	artist, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := deleteAccount(ctx, s.store, artist); err != nil {
		return err
	}
	s.changed(ctx, events.Deleted, events.EntityArtist, id)
	return nil
}

func (s *ArtistService) load(ctx context.Context, id int64) (*model.User, error) {
	artist, err := s.store.Artists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if artist == nil {
		return nil, notFound("Artist", id)
	}
	return artist, nil
}

// applyProfile copies the profile fields that were sent.
func applyProfile(artist *model.User, in dto.ArtistDto) {
	if in.Biography != nil {
		artist.Biography = *in.Biography
	}
	if in.ProfilePicture != nil {
		artist.ProfilePicture = *in.ProfilePicture
	}
}
