package dto

import (
	"testing"

	"groovy/core/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, apperr.KindValidation, ae.Kind)
	out := map[string]string{}
	for _, f := range ae.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestValidateUser(t *testing.T) {
	assert.NoError(t, Validate(&UserDto{Name: "John", Email: "john@example.com", Password: "secret1"}))

	fields := fieldsOf(t, Validate(&UserDto{Name: " ", Email: "nope", Role: "ROOT", Password: "123"}))
	assert.Equal(t, "must not be blank", fields["name"])
	assert.Equal(t, "must be a well-formed email address", fields["email"])
	assert.Equal(t, "must be one of [USER, ADMIN, ARTIST]", fields["role"])
	assert.Equal(t, "size must be at least 6", fields["password"])
}

func TestValidateArtistChecksEmbeddedUser(t *testing.T) {
	long := make([]byte, 1001)
	for i := range long {
		long[i] = 'a'
	}
	bio := string(long)
	fields := fieldsOf(t, Validate(&ArtistDto{UserDto: UserDto{Name: "X", Email: "x@example.com"}, Biography: &bio}))
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "biography")
}

func TestValidateSong(t *testing.T) {
	albumID := int64(1)
	negative := -2.5
	fields := fieldsOf(t, Validate(&SongDto{Title: "", Duration: &negative}))
	assert.Equal(t, "must not be blank", fields["title"])
	assert.Equal(t, "must not be blank", fields["albumId"])
	assert.Equal(t, "must be greater than 0", fields["duration"])

	assert.NoError(t, Validate(&SongDto{Title: "So What", AlbumID: &albumID}))
}

func TestValidatePartialSkipsAbsentFields(t *testing.T) {
	assert.NoError(t, ValidatePartial(&SongDto{}))
	assert.NoError(t, ValidatePartial(&SongDto{Title: "Only title"}, "Title"))

	zero := 0.0
	fields := fieldsOf(t, ValidatePartial(&SongDto{Duration: &zero}, "Duration"))
	assert.Len(t, fields, 1)
	assert.Contains(t, fields, "duration")
}
