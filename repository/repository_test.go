package repository

import (
	"context"
	"testing"

	"groovy/internal/testdb"
	"groovy/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store  *Store
	artist *model.User
	album  *model.Album
	songs  []*model.Song
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := NewStore(testdb.New(t))

	artist := &model.User{Name: "Miles Davis", Email: "miles@example.com", Role: model.RoleArtist}
	require.NoError(t, store.Users.Create(ctx, artist))
	album := &model.Album{Name: "Kind of Blue", ArtistID: artist.ID}
	require.NoError(t, store.Albums.Create(ctx, album))

	var songs []*model.Song
	for _, title := range []string{"So What", "Freddie Freeloader", "Blue in Green"} {
		s := &model.Song{Title: title, AlbumID: album.ID, ArtistID: artist.ID, FilePath: title + ".mp3"}
		require.NoError(t, store.Songs.Create(ctx, s))
		songs = append(songs, s)
	}
	return &fixture{store: store, artist: artist, album: album, songs: songs}
}

func TestUserRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.store.Users.GetByEmail(ctx, "miles@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, f.artist.ID, u.ID)

	missing, err := f.store.Users.GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	exists, err := f.store.Users.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	u.Name = "Miles Dewey Davis"
	require.NoError(t, f.store.Users.Update(ctx, u))
	reloaded, err := f.store.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Miles Dewey Davis", reloaded.Name)
}

func TestArtistRepositoryLoadsCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Users.Create(ctx, &model.User{Name: "Listener", Email: "l@example.com", Role: model.RoleUser}))

	artists, err := f.store.Artists.List(ctx)
	require.NoError(t, err)
	require.Len(t, artists, 1)
	assert.Len(t, artists[0].Albums, 1)
	assert.Len(t, artists[0].Songs, 3)

	found, err := f.store.Artists.SearchByName(ctx, "DAVIS")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = f.store.Artists.SearchByName(ctx, "100%")
	require.NoError(t, err)
	assert.Empty(t, found)

	count, err := f.store.Artists.CountAlbums(ctx, f.artist.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSongRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	song, err := f.store.Songs.GetByID(ctx, f.songs[0].ID)
	require.NoError(t, err)
	require.NotNil(t, song.Album)
	require.NotNil(t, song.Album.Artist)
	assert.Equal(t, "Miles Davis", song.Album.Artist.Name)

	found, err := f.store.Songs.SearchByTitle(ctx, "blue")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Blue in Green", found[0].Title)

	ids, err := f.store.Songs.ClearFilePath(ctx, "So What.mp3")
	require.NoError(t, err)
	assert.Equal(t, []int64{f.songs[0].ID}, ids)

	ids, err = f.store.Songs.ClearFilePath(ctx, "missing.mp3")
	require.NoError(t, err)
	assert.Empty(t, ids)
	song, err = f.store.Songs.GetByID(ctx, f.songs[0].ID)
	require.NoError(t, err)
	assert.Empty(t, song.FilePath)

	count, err := f.store.Albums.CountSongs(ctx, f.album.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestPlaylistRepositorySongs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := &model.Playlist{Name: "Late Night", UserID: f.artist.ID}
	require.NoError(t, f.store.Playlists.Create(ctx, p))

	require.NoError(t, f.store.Playlists.AddSong(ctx, p.ID, f.songs[1].ID))
	require.NoError(t, f.store.Playlists.AddSong(ctx, p.ID, f.songs[0].ID))
	require.NoError(t, f.store.Playlists.AddSong(ctx, p.ID, f.songs[0].ID))

	loaded, err := f.store.Playlists.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Songs, 2)
	assert.Equal(t, f.songs[0].ID, loaded.Songs[0].ID)
	require.NotNil(t, loaded.User)

	require.NoError(t, f.store.Playlists.RemoveSong(ctx, p.ID, f.songs[0].ID))
	has, err := f.store.Playlists.HasSong(ctx, p.ID, f.songs[0].ID)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, f.store.Playlists.DeleteByUser(ctx, f.artist.ID))
	gone, err := f.store.Playlists.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestFavoriteRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.artist.ID

	added, err := f.store.Favorites.Add(ctx, uid, f.songs[2].ID)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = f.store.Favorites.Add(ctx, uid, f.songs[2].ID)
	require.NoError(t, err)
	assert.False(t, added)

	songs, err := f.store.Favorites.ListSongs(ctx, uid)
	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, "Blue in Green", songs[0].Title)

	removed, err := f.store.Favorites.Remove(ctx, uid, f.songs[2].ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = f.store.Favorites.Remove(ctx, uid, f.songs[2].ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestTransactionRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.store.Transaction(ctx, func(tx *Store) error {
		require.NoError(t, tx.Songs.Delete(ctx, f.songs[0].ID))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	song, err := f.store.Songs.GetByID(ctx, f.songs[0].ID)
	require.NoError(t, err)
	assert.NotNil(t, song)
}
