// Package service implements the catalog use cases on top of the
// repositories, the file store, the cache and the event hub.
package service

import (
	"context"
	"io"

	"groovy/cache"
	"groovy/core/apperr"
	"groovy/core/auth"
	"groovy/core/events"
	"groovy/db"
	"groovy/logger"
	"groovy/model"
	"groovy/repository"
	"groovy/storage"
)

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// Options carries the behaviour switches read from configuration.
type Options struct {
	AllowAdminSignup bool
}

// Services groups every use case the HTTP layer needs.
type Services struct {
	Auth      *AuthService
	Users     *UserService
	Artists   *ArtistService
	Albums    *AlbumService
	Songs     *SongService
	Playlists *PlaylistService
	Favorites *FavoriteService
}

// deps is shared by every service.
type deps struct {
	store  *repository.Store
	files  storage.Storage
	cache  cache.Store
	events events.Publisher
}

// New wires the services. A nil cache or publisher disables that concern.
func New(store *repository.Store, files storage.Storage, tokens *auth.TokenService, c cache.Store, pub events.Publisher, opts Options) *Services {
	if c == nil {
		c = cache.Noop{}
	}
	if pub == nil {
		pub = events.Discard
	}
	d := &deps{store: store, files: files, cache: c, events: pub}
	return &Services{
		Auth:      &AuthService{deps: d, tokens: tokens, allowAdminSignup: opts.AllowAdminSignup},
		Users:     &UserService{deps: d},
		Artists:   &ArtistService{deps: d},
		Albums:    &AlbumService{deps: d},
		Songs:     &SongService{deps: d},
		Playlists: &PlaylistService{deps: d},
		Favorites: &FavoriteService{deps: d},
	}
}

// changed drops cached catalog listings and notifies subscribers.
func (d *deps) changed(ctx context.Context, t events.Type, entity events.Entity, id int64) {
	if err := d.cache.Invalidate(ctx, cache.CatalogPrefix); err != nil {
		logger.Warn("cache invalidation failed", logger.ErrorField(err))
	}
	d.events.Publish(t, entity, id)
}

// removeFile deletes a stored file after the database no longer points at it.
// Failures leave an orphan on disk and are only logged.
func (d *deps) removeFile(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := d.files.Delete(ctx, name); err != nil {
		logger.Warn("failed to delete stored file", logger.String("file", name), logger.ErrorField(err))
	}
}

func notFound(entity string, id int64) error {
	return apperr.NotFound("%s not found with id: %d", entity, id)
}

func emailInUse(err error) error {
	if db.IsDuplicateKey(err) {
		return apperr.Conflict("Email is already in use")
	}
	return err
}

// ownsAlbum reports whether p may change the album's content.
func ownsAlbum(p auth.Principal, artistID int64) bool {
	return p.IsAdmin() || (p.Role == model.RoleArtist && p.UserID == artistID)
}
