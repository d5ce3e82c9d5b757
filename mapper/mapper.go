// Package mapper converts between GORM models and API DTOs.
package mapper

import (
	"groovy/dto"
	"groovy/model"

	"github.com/samber/lo"
)

// ToUserDto never copies the password hash.
func ToUserDto(u *model.User) dto.UserDto {
	if u == nil {
		return dto.UserDto{}
	}
	return dto.UserDto{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func ToUserDtos(users []*model.User) []dto.UserDto {
	return lo.Map(users, func(u *model.User, _ int) dto.UserDto { return ToUserDto(u) })
}

// ToArtistDto includes the artist's albums and songs when they were loaded.
func ToArtistDto(u *model.User) dto.ArtistDto {
	if u == nil {
		return dto.ArtistDto{}
	}
	out := dto.ArtistDto{
		UserDto: ToUserDto(u),
		Albums:  make([]dto.AlbumDto, 0, len(u.Albums)),
		Songs:   make([]dto.SongDto, 0, len(u.Songs)),
	}
	if u.Biography != "" {
		out.Biography = lo.ToPtr(u.Biography)
	}
	if u.ProfilePicture != "" {
		out.ProfilePicture = lo.ToPtr(u.ProfilePicture)
	}

	albumNames := lo.SliceToMap(u.Albums, func(a model.Album) (int64, string) { return a.ID, a.Name })
	for i := range u.Albums {
		a := u.Albums[i]
		a.Artist = u
		out.Albums = append(out.Albums, ToAlbumDto(&a))
	}
	for i := range u.Songs {
		s := toSongDto(&u.Songs[i])
		s.AlbumName = albumNames[u.Songs[i].AlbumID]
		s.ArtistName = u.Name
		out.Songs = append(out.Songs, s)
	}
	return out
}

func ToArtistDtos(users []*model.User) []dto.ArtistDto {
	return lo.Map(users, func(u *model.User, _ int) dto.ArtistDto { return ToArtistDto(u) })
}

func ToAlbumDto(a *model.Album) dto.AlbumDto {
	if a == nil {
		return dto.AlbumDto{}
	}
	out := dto.AlbumDto{
		ID:         a.ID,
		Name:       a.Name,
		ArtistID:   lo.ToPtr(a.ArtistID),
		CoverImage: a.CoverImage,
		Songs:      make([]dto.SongDto, 0, len(a.Songs)),
	}
	if a.Artist != nil {
		out.ArtistName = a.Artist.Name
	}
	for i := range a.Songs {
		s := toSongDto(&a.Songs[i])
		s.AlbumName = a.Name
		s.ArtistName = out.ArtistName
		out.Songs = append(out.Songs, s)
	}
	return out
}

func ToAlbumDtos(albums []*model.Album) []dto.AlbumDto {
	return lo.Map(albums, func(a *model.Album, _ int) dto.AlbumDto { return ToAlbumDto(a) })
}

// ToSongDto fills album and artist names from the preloaded Album.Artist.
func ToSongDto(s *model.Song) dto.SongDto {
	if s == nil {
		return dto.SongDto{}
	}
	out := toSongDto(s)
	if s.Album != nil {
		out.AlbumName = s.Album.Name
		if s.Album.Artist != nil {
			out.ArtistName = s.Album.Artist.Name
		}
	}
	return out
}

func toSongDto(s *model.Song) dto.SongDto {
	return dto.SongDto{
		ID:       s.ID,
		Title:    s.Title,
		Duration: s.Duration,
		FilePath: s.FilePath,
		AlbumID:  lo.ToPtr(s.AlbumID),
	}
}

func ToSongDtos(songs []*model.Song) []dto.SongDto {
	return lo.Map(songs, func(s *model.Song, _ int) dto.SongDto { return ToSongDto(s) })
}

func ToPlaylistDto(p *model.Playlist) dto.PlaylistDto {
	if p == nil {
		return dto.PlaylistDto{}
	}
	out := dto.PlaylistDto{
		ID:     p.ID,
		Name:   p.Name,
		UserID: lo.ToPtr(p.UserID),
		Songs:  make([]dto.SongDto, 0, len(p.Songs)),
	}
	if p.User != nil {
		out.UserName = p.User.Name
	}
	for i := range p.Songs {
		out.Songs = append(out.Songs, ToSongDto(&p.Songs[i]))
	}
	return out
}

func ToPlaylistDtos(playlists []*model.Playlist) []dto.PlaylistDto {
	return lo.Map(playlists, func(p *model.Playlist, _ int) dto.PlaylistDto { return ToPlaylistDto(p) })
}
