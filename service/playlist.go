package service

import (
	"context"
	"strings"

	"groovy/core/apperr"
	"groovy/core/auth"
	"groovy/core/events"
	"groovy/dto"
	"groovy/mapper"
	"groovy/model"
)

// PlaylistService manages user playlists. Only the owner or an
// administrator may change one.
type PlaylistService struct {
	*deps
}

func (s *PlaylistService) List(ctx context.Context) ([]dto.PlaylistDto, error) {
	playlists, err := s.store.Playlists.List(ctx)
	if err != nil {
		return nil, err
	}
	return mapper.ToPlaylistDtos(playlists), nil
}

func (s *PlaylistService) Get(ctx context.Context, id int64) (dto.PlaylistDto, error) {
	playlist, err := s.load(ctx, id)
	if err != nil {
		return dto.PlaylistDto{}, err
	}
	return mapper.ToPlaylistDto(playlist), nil
}

func (s *PlaylistService) ListByUser(ctx context.Context, userID int64) ([]dto.PlaylistDto, error) {
	playlists, err := s.store.Playlists.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapper.ToPlaylistDtos(playlists), nil
}

func (s *PlaylistService) Search(ctx context.Context, name string) ([]dto.PlaylistDto, error) {
	playlists, err := s.store.Playlists.SearchByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return mapper.ToPlaylistDtos(playlists), nil
}

func (s *PlaylistService) Create(ctx context.Context, p auth.Principal, in dto.PlaylistDto) (dto.PlaylistDto, error) {
	if err := dto.Validate(&in); err != nil {
		return dto.PlaylistDto{}, err
	}
	userID := *in.UserID
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return dto.PlaylistDto{}, err
	}
	if user == nil {
		return dto.PlaylistDto{}, notFound("User", userID)
	}
	if !p.IsAdmin() && p.UserID != userID {
		return dto.PlaylistDto{}, apperr.Forbidden("You can only create playlists for yourself")
	}

	playlist := &model.Playlist{Name: strings.TrimSpace(in.Name), UserID: userID}
	if err := s.store.Playlists.Create(ctx, playlist); err != nil {
		return dto.PlaylistDto{}, err
	}
	s.events.Publish(events.Created, events.EntityPlaylist, playlist.ID)
	return s.Get(ctx, playlist.ID)
}

// Update renames the playlist; owner and songs are not changed here.
func (s *PlaylistService) Update(ctx context.Context, p auth.Principal, id int64, in dto.PlaylistDto) (dto.PlaylistDto, error) {
	playlist, err := s.owned(ctx, p, id)
	if err != nil {
		return dto.PlaylistDto{}, err
	}
	if err := dto.ValidatePartial(&in, "Name"); err != nil {
		return dto.PlaylistDto{}, err
	}
	playlist.Name = strings.TrimSpace(in.Name)
	if err := s.store.Playlists.Update(ctx, playlist); err != nil {
		return dto.PlaylistDto{}, err
	}
	s.events.Publish(events.Updated, events.EntityPlaylist, id)
	return s.Get(ctx, id)
}

// AddSong is idempotent: adding a song twice keeps one entry.
func (s *PlaylistService) AddSong(ctx context.Context, p auth.Principal, playlistID, songID int64) (dto.PlaylistDto, error) {
	if _, err := s.owned(ctx, p, playlistID); err != nil {
		return dto.PlaylistDto{}, err
	}
	if err := s.requireSong(ctx, songID); err != nil {
		return dto.PlaylistDto{}, err
	}
	if err := s.store.Playlists.AddSong(ctx, playlistID, songID); err != nil {
		return dto.PlaylistDto{}, err
	}
	s.events.Publish(events.Updated, events.EntityPlaylist, playlistID)
	return s.Get(ctx, playlistID)
}

// RemoveSong is idempotent; the song itself must exist.
func (s *PlaylistService) RemoveSong(ctx context.Context, p auth.Principal, playlistID, songID int64) (dto.PlaylistDto, error) {
	if _, err := s.owned(ctx, p, playlistID); err != nil {
		return dto.PlaylistDto{}, err
	}
	if err := s.requireSong(ctx, songID); err != nil {
		return dto.PlaylistDto{}, err
	}
	if err := s.store.Playlists.RemoveSong(ctx, playlistID, songID); err != nil {
		return dto.PlaylistDto{}, err
	}
	s.events.Publish(events.Updated, events.EntityPlaylist, playlistID)
	return s.Get(ctx, playlistID)
}

func (s *PlaylistService) Delete(ctx context.Context, p auth.Principal, id int64) error {
	if _, err := s.owned(ctx, p, id); err != nil {
		return err
	}
	if err := s.store.Playlists.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Publish(events.Deleted, events.EntityPlaylist, id)
	return nil
}

func (s *PlaylistService) load(ctx context.Context, id int64) (*model.Playlist, error) {
	playlist, err := s.store.Playlists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if playlist == nil {
		return nil, notFound("Playlist", id)
	}
	return playlist, nil
}

// owned loads the playlist and checks that p may modify it.
func (s *PlaylistService) owned(ctx context.Context, p auth.Principal, id int64) (*model.Playlist, error) {
	playlist, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && playlist.UserID != p.UserID {
		return nil, apperr.Forbidden("You can only modify your own playlists")
	}
	playlist.User = nil
	playlist.Songs = nil
	return playlist, nil
}

func (s *PlaylistService) requireSong(ctx context.Context, songID int64) error {
	song, err := s.store.Songs.GetByID(ctx, songID)
	if err != nil {
		return err
	}
	if song == nil {
		return notFound("Song", songID)
	}
	return nil
}
