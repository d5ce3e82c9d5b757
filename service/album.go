package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"groovy/cache"
	"groovy/core/apperr"
	"groovy/core/auth"
	"groovy/core/events"
	"groovy/dto"
	"groovy/mapper"
	"groovy/model"
	"groovy/repository"
)

// AlbumService manages albums and their cover art.
type AlbumService struct {
	*deps
}

func (s *AlbumService) List(ctx context.Context) ([]dto.AlbumDto, error) {
	return cache.Remember(ctx, s.cache, cache.KeyAlbums, func() ([]dto.AlbumDto, error) {
		albums, err := s.store.Albums.List(ctx)
		if err != nil {
			return nil, err
		}
		return mapper.ToAlbumDtos(albums), nil
	})
}

func (s *AlbumService) Get(ctx context.Context, id int64) (dto.AlbumDto, error) {
	album, err := s.load(ctx, id)
	if err != nil {
		return dto.AlbumDto{}, err
	}
	return mapper.ToAlbumDto(album), nil
}

// ListByArtist returns an empty list for unknown artists.
func (s *AlbumService) ListByArtist(ctx context.Context, artistID int64) ([]dto.AlbumDto, error) {
	albums, err := s.store.Albums.ListByArtist(ctx, artistID)
	if err != nil {
		return nil, err
	}
	return mapper.ToAlbumDtos(albums), nil
}

// Create adds an album to an existing artist. Artists may only create
// albums for themselves.
func (s *AlbumService) Create(ctx context.Context, p auth.Principal, in dto.AlbumDto) (dto.AlbumDto, error) {
	if err := dto.Validate(&in); err != nil {
		return dto.AlbumDto{}, err
	}
	artistID := *in.ArtistID
	if err := s.requireArtist(ctx, artistID); err != nil {
		return dto.AlbumDto{}, err
	}
	if !ownsAlbum(p, artistID) {
		return dto.AlbumDto{}, apperr.Forbidden("Artists can only create albums for themselves")
	}

	album := &model.Album{Name: strings.TrimSpace(in.Name), ArtistID: artistID, CoverImage: in.CoverImage}
	if err := s.store.Albums.Create(ctx, album); err != nil {
		return dto.AlbumDto{}, err
	}
	s.changed(ctx, events.Created, events.EntityAlbum, album.ID)
	return s.Get(ctx, album.ID)
}

// Update renames the album and, for administrators, moves it to another
// artist together with its songs.
func (s *AlbumService) Update(ctx context.Context, p auth.Principal, id int64, in dto.AlbumDto) (dto.AlbumDto, error) {
	album, err := s.load(ctx, id)
	if err != nil {
		return dto.AlbumDto{}, err
	}
	if !ownsAlbum(p, album.ArtistID) {
		return dto.AlbumDto{}, apperr.Forbidden("You can only modify your own albums")
	}
	if err := dto.Validate(&in); err != nil {
		return dto.AlbumDto{}, err
	}

	moved := *in.ArtistID != album.ArtistID
	if moved {
		if !p.IsAdmin() {
			return dto.AlbumDto{}, apperr.Forbidden("Only administrators can move an album to another artist")
		}
		if err := s.requireArtist(ctx, *in.ArtistID); err != nil {
			return dto.AlbumDto{}, err
		}
	}

	album.Name = strings.TrimSpace(in.Name)
	album.ArtistID = *in.ArtistID
	if in.CoverImage != "" {
		album.CoverImage = in.CoverImage
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Albums.Update(ctx, album); err != nil {
			return err
		}
		if moved {
			return tx.Songs.SetArtistForAlbum(ctx, album.ID, album.ArtistID)
		}
		return nil
	})
	if err != nil {
		return dto.AlbumDto{}, err
	}
	s.changed(ctx, events.Updated, events.EntityAlbum, id)
	return s.Get(ctx, id)
}

// Delete refuses albums that still have songs.
func (s *AlbumService) Delete(ctx context.Context, p auth.Principal, id int64) error {
	album, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !ownsAlbum(p, album.ArtistID) {
		return apperr.Forbidden("You can only delete your own albums")
	}
	songs, err := s.store.Albums.CountSongs(ctx, id)
	if err != nil {
		return err
	}
	if songs > 0 {
		return apperr.BadRequest("Cannot delete album with songs. Remove all songs first.")
	}
	if err := s.store.Albums.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, events.Deleted, events.EntityAlbum, id)
	if album.CoverImage == coverFilename(id, album.CoverImage) {
		s.removeFile(ctx, album.CoverImage)
	}
	return nil
}

// UploadCover stores the image as album{id}.{ext} and returns that name.
func (s *AlbumService) UploadCover(ctx context.Context, p auth.Principal, id int64, file Upload) (string, error) {
	album, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if !ownsAlbum(p, album.ArtistID) {
		return "", apperr.Forbidden("You can only modify your own albums")
	}

	filename, err := s.files.StoreAs(ctx, coverFilename(id, file.Filename), file.Reader, file.Size)
	if err != nil {
		return "", err
	}
	if err := s.store.Albums.UpdateCover(ctx, id, filename); err != nil {
		return "", err
	}
	s.changed(ctx, events.Updated, events.EntityAlbum, id)
	if album.CoverImage != "" && album.CoverImage != filename && album.CoverImage == coverFilename(id, album.CoverImage) {
		s.removeFile(ctx, album.CoverImage)
	}
	return filename, nil
}

func (s *AlbumService) load(ctx context.Context, id int64) (*model.Album, error) {
	album, err := s.store.Albums.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if album == nil {
		return nil, notFound("Album", id)
	}
	return album, nil
}

func (s *AlbumService) requireArtist(ctx context.Context, artistID int64) error {
	artist, err := s.store.Artists.GetByID(ctx, artistID)
	if err != nil {
		return err
	}
	if artist == nil {
		return notFound("Artist", artistID)
	}
	return nil
}

// coverFilename builds album{id}.{ext}; the extension is taken from the
// uploaded name, lower-cased, and defaults to jpg.
func coverFilename(albumID int64, original string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(original), "."))
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("album%d.%s", albumID, ext)
}
