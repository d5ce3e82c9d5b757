package repository

import (
	"context"
	"errors"
	"strings"

	"groovy/db"

	"gorm.io/gorm"
)

// Store bundles the repositories that share one *gorm.DB, so a service can
// run several of them inside a single transaction.
type Store struct {
	db        *gorm.DB
	Users     UserRepository
	Artists   ArtistRepository
	Albums    AlbumRepository
	Songs     SongRepository
	Playlists PlaylistRepository
	Favorites FavoriteRepository
}

// NewStore 创建仓库集合
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		Users:     NewGormUserRepository(db),
		Artists:   NewGormArtistRepository(db),
		Albums:    NewGormAlbumRepository(db),
		Songs:     NewGormSongRepository(db),
		Playlists: NewGormPlaylistRepository(db),
		Favorites: NewGormFavoriteRepository(db),
	}
}

// DB exposes the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with a Store bound to one transaction. Returning an
// error from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return db.Ping(ctx, s.db)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// likeEscaper escapes LIKE wildcards with '!' so user input matches literally.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a lower-cased "contains" LIKE pattern.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
