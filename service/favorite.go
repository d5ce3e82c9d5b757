package service

import (
	"context"

	"groovy/core/auth"
	"groovy/dto"
	"groovy/mapper"
)

// FavoriteService keeps the caller's favorite songs.
type FavoriteService struct {
	*deps
}

func (s *FavoriteService) List(ctx context.Context, p auth.Principal) ([]dto.SongDto, error) {
	if err := s.requireUser(ctx, p.UserID); err != nil {
		return nil, err
	}
	songs, err := s.store.Favorites.ListSongs(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return mapper.ToSongDtos(songs), nil
}

// Add reports false when the song already was a favorite.
func (s *FavoriteService) Add(ctx context.Context, p auth.Principal, songID int64) (bool, error) {
	if err := s.requireUser(ctx, p.UserID); err != nil {
		return false, err
	}
	if err := s.requireSong(ctx, songID); err != nil {
		return false, err
	}
	return s.store.Favorites.Add(ctx, p.UserID, songID)
}

// Remove reports false when the song was not a favorite.
func (s *FavoriteService) Remove(ctx context.Context, p auth.Principal, songID int64) (bool, error) {
	if err := s.requireUser(ctx, p.UserID); err != nil {
		return false, err
	}
	if err := s.requireSong(ctx, songID); err != nil {
		return false, err
	}
	return s.store.Favorites.Remove(ctx, p.UserID, songID)
}

func (s *FavoriteService) IsFavorite(ctx context.Context, p auth.Principal, songID int64) (bool, error) {
	return s.store.Favorites.Exists(ctx, p.UserID, songID)
}

func (s *FavoriteService) requireUser(ctx context.Context, id int64) error {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return notFound("User", id)
	}
	return nil
}

func (s *FavoriteService) requireSong(ctx context.Context, id int64) error {
	exists, err := s.store.Songs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if exists == nil {
		return notFound("Song", id)
	}
	return nil
}
