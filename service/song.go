package service

import (
	"context"
	"io"
	"strings"

	"groovy/cache"
	"groovy/core/apperr"
	"groovy/core/auth"
	"groovy/core/events"
	"groovy/dto"
	"groovy/logger"
	"groovy/mapper"
	"groovy/model"
	"groovy/repository"
	"groovy/storage"
)

// SongService manages songs and their audio files.
type SongService struct {
	*deps
}

func (s *SongService) List(ctx context.Context) ([]dto.SongDto, error) {
	return cache.Remember(ctx, s.cache, cache.KeySongs, func() ([]dto.SongDto, error) {
		songs, err := s.store.Songs.List(ctx)
		if err != nil {
			return nil, err
		}
		return mapper.ToSongDtos(songs), nil
	})
}

func (s *SongService) Get(ctx context.Context, id int64) (dto.SongDto, error) {
	song, err := s.load(ctx, id)
	if err != nil {
		return dto.SongDto{}, err
	}
	return mapper.ToSongDto(song), nil
}

func (s *SongService) ListByAlbum(ctx context.Context, albumID int64) ([]dto.SongDto, error) {
	songs, err := s.store.Songs.ListByAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	return mapper.ToSongDtos(songs), nil
}

func (s *SongService) Search(ctx context.Context, title string) ([]dto.SongDto, error) {
	songs, err := s.store.Songs.SearchByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	return mapper.ToSongDtos(songs), nil
}

// Create adds a song to an album. The audio file is optional; with a custom
// filename it is stored under exactly that name.
func (s *SongService) Create(ctx context.Context, p auth.Principal, in dto.SongDto, audio *Upload, customFilename string) (dto.SongDto, error) {
	if err := dto.Validate(&in); err != nil {
		return dto.SongDto{}, err
	}
	album, err := s.album(ctx, *in.AlbumID)
	if err != nil {
		return dto.SongDto{}, err
	}
	if !ownsAlbum(p, album.ArtistID) {
		return dto.SongDto{}, apperr.Forbidden("You can only add songs to your own albums")
	}

	filePath, err := s.storeAudio(ctx, audio, strings.TrimSpace(customFilename))
	if err != nil {
		return dto.SongDto{}, err
	}
	song := &model.Song{
		Title:    strings.TrimSpace(in.Title),
		Duration: in.Duration,
		FilePath: filePath,
		AlbumID:  album.ID,
		ArtistID: album.ArtistID,
	}
	if err := s.store.Songs.Create(ctx, song); err != nil {
		s.removeFile(ctx, filePath)
		return dto.SongDto{}, err
	}
	s.changed(ctx, events.Created, events.EntitySong, song.ID)
	return s.Get(ctx, song.ID)
}

// Update applies the fields that were sent. A new audio file is stored
// before the old one is deleted, so a failed upload keeps the old audio.
func (s *SongService) Update(ctx context.Context, p auth.Principal, id int64, in dto.SongDto, audio *Upload) (dto.SongDto, error) {
	song, err := s.load(ctx, id)
	if err != nil {
		return dto.SongDto{}, err
	}
	if !ownsAlbum(p, song.ArtistID) {
		return dto.SongDto{}, apperr.Forbidden("You can only modify your own songs")
	}

	var fields []string
	if in.Title != "" {
		fields = append(fields, "Title")
	}
	if in.Duration != nil {
		fields = append(fields, "Duration")
	}
	if err := dto.ValidatePartial(&in, fields...); err != nil {
		return dto.SongDto{}, err
	}

	if in.AlbumID != nil && *in.AlbumID != song.AlbumID {
		album, err := s.album(ctx, *in.AlbumID)
		if err != nil {
			return dto.SongDto{}, err
		}
		if !ownsAlbum(p, album.ArtistID) {
			return dto.SongDto{}, apperr.Forbidden("You can only move songs to your own albums")
		}
		song.AlbumID = album.ID
		song.ArtistID = album.ArtistID
	}
	if in.Title != "" {
		song.Title = strings.TrimSpace(in.Title)
	}
	if in.Duration != nil {
		song.Duration = in.Duration
	}

	oldPath := song.FilePath
	if audio != nil {
		newPath, err := s.storeAudio(ctx, audio, "")
		if err != nil {
			return dto.SongDto{}, err
		}
		song.FilePath = newPath
	}

	song.Album = nil
	if err := s.store.Songs.Update(ctx, song); err != nil {
		if song.FilePath != oldPath {
			s.removeFile(ctx, song.FilePath)
		}
		return dto.SongDto{}, err
	}
	if song.FilePath != oldPath {
		s.removeFile(ctx, oldPath)
	}
	s.changed(ctx, events.Updated, events.EntitySong, id)
	return s.Get(ctx, id)
}

// Delete removes the song from favorites and playlists, then the row, and
// finally its audio file once the transaction has committed.
func (s *SongService) Delete(ctx context.Context, p auth.Principal, id int64) error {
	song, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !ownsAlbum(p, song.ArtistID) {
		return apperr.Forbidden("You can only delete your own songs")
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Favorites.DeleteBySong(ctx, id); err != nil {
			return err
		}
		if err := tx.Playlists.RemoveSongEverywhere(ctx, id); err != nil {
			return err
		}
		return tx.Songs.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.changed(ctx, events.Deleted, events.EntitySong, id)
	s.removeFile(ctx, song.FilePath)
	return nil
}

// OpenAudio returns a seekable reader over the song's audio file.
func (s *SongService) OpenAudio(ctx context.Context, id int64) (io.ReadSeekCloser, storage.FileInfo, error) {
	song, err := s.load(ctx, id)
	if err != nil {
		return nil, storage.FileInfo{}, err
	}
	if song.FilePath == "" {
		return nil, storage.FileInfo{}, apperr.NotFound("Song file not found")
	}
	return s.files.Open(ctx, song.FilePath)
}

// FileRemoved clears the file path of songs whose audio disappeared from
// the store without going through the service.
func (s *SongService) FileRemoved(ctx context.Context, name string) {
	ids, err := s.store.Songs.ClearFilePath(ctx, name)
	if err != nil {
		logger.Error("failed to detach removed audio file", logger.String("file", name), logger.ErrorField(err))
		return
	}
	if len(ids) > 0 {
		logger.Warn("Audio file removed, songs detached", logger.String("file", name), logger.Int("songs", len(ids)))
	}
	for _, id := range ids {
		s.changed(ctx, events.Updated, events.EntitySong, id)
	}
}

func (s *SongService) storeAudio(ctx context.Context, audio *Upload, customFilename string) (string, error) {
	if audio == nil {
		return "", nil
	}
	if customFilename != "" {
		return s.files.StoreAs(ctx, customFilename, audio.Reader, audio.Size)
	}
	return s.files.Store(ctx, audio.Filename, audio.Reader, audio.Size)
}

func (s *SongService) load(ctx context.Context, id int64) (*model.Song, error) {
	song, err := s.store.Songs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if song == nil {
		return nil, notFound("Song", id)
	}
	return song, nil
}

func (s *SongService) album(ctx context.Context, id int64) (*model.Album, error) {
	album, err := s.store.Albums.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if album == nil {
		return nil, notFound("Album", id)
	}
	return album, nil
}
