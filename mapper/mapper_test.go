package mapper

import (
	"testing"

	"groovy/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToArtistDtoCarriesNames(t *testing.T) {
	artist := &model.User{
		ID: 7, Name: "Nina Simone", Email: "nina@example.com", Role: model.RoleArtist,
		PasswordHash: "hash", Biography: "Singer",
		Albums: []model.Album{{ID: 3, Name: "Pastel Blues", ArtistID: 7}},
		Songs:  []model.Song{{ID: 11, Title: "Sinnerman", AlbumID: 3, ArtistID: 7}},
	}

	got := ToArtistDto(artist)
	assert.Equal(t, "nina@example.com", got.Email)
	assert.Empty(t, got.Password)
	require.NotNil(t, got.Biography)
	assert.Equal(t, "Singer", *got.Biography)
	assert.Nil(t, got.ProfilePicture)
	require.Len(t, got.Albums, 1)
	assert.Equal(t, "Nina Simone", got.Albums[0].ArtistName)
	require.Len(t, got.Songs, 1)
	assert.Equal(t, "Pastel Blues", got.Songs[0].AlbumName)
	assert.Equal(t, "Nina Simone", got.Songs[0].ArtistName)
}

func TestToPlaylistDtoEmptySongsIsNotNil(t *testing.T) {
	got := ToPlaylistDto(&model.Playlist{ID: 1, Name: "Empty", UserID: 2, User: &model.User{Name: "Ann"}})
	assert.NotNil(t, got.Songs)
	assert.Equal(t, "Ann", got.UserName)
	require.NotNil(t, got.UserID)
	assert.Equal(t, int64(2), *got.UserID)
}

func TestToSongDtoWithoutAlbum(t *testing.T) {
	got := ToSongDto(&model.Song{ID: 1, Title: "Loose"})
	assert.Empty(t, got.AlbumName)
	assert.Equal(t, "Loose", got.Title)
}
