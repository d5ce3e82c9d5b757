// Package dto holds the JSON request and response shapes of the API.
// Read-only fields are filled by the mapper and ignored on input.
package dto

import (
	"time"

	"groovy/core/apperr"
	"groovy/model"
)

// UserDto is the public view of an account. Password is write-only.
type UserDto struct {
	ID       int64      `json:"id,omitempty"`
	Name     string     `json:"name" validate:"notblank,min=2,max=100"`
	Email    string     `json:"email" validate:"notblank,email"`
	Role     model.Role `json:"role,omitempty" validate:"omitempty,oneof=USER ADMIN ARTIST"`
	Password string     `json:"password,omitempty" validate:"omitempty,min=6"`
}

// ArtistDto extends UserDto with the artist profile and catalog.
type ArtistDto struct {
	UserDto
	Biography      *string    `json:"biography,omitempty" validate:"omitempty,max=1000"`
	ProfilePicture *string    `json:"profilePicture,omitempty" validate:"omitempty,max=512"`
	Albums         []AlbumDto `json:"albums"`
	Songs          []SongDto  `json:"songs"`
}

type AlbumDto struct {
	ID         int64     `json:"id,omitempty"`
	Name       string    `json:"name" validate:"notblank,max=100"`
	ArtistID   *int64    `json:"artistId" validate:"required"`
	ArtistName string    `json:"artistName,omitempty"`
	CoverImage string    `json:"coverImage,omitempty" validate:"max=255"`
	Songs      []SongDto `json:"songs"`
}

// SongDto describes a track. Duration is in minutes.
type SongDto struct {
	ID         int64    `json:"id,omitempty"`
	Title      string   `json:"title" validate:"notblank,max=100"`
	Duration   *float64 `json:"duration,omitempty" validate:"omitempty,gt=0"`
	FilePath   string   `json:"filePath,omitempty"`
	AlbumID    *int64   `json:"albumId" validate:"required"`
	AlbumName  string   `json:"albumName,omitempty"`
	ArtistName string   `json:"artistName,omitempty"`
}

type PlaylistDto struct {
	ID       int64     `json:"id,omitempty"`
	Name     string    `json:"name" validate:"notblank,max=100"`
	UserID   *int64    `json:"userId" validate:"required"`
	UserName string    `json:"userName,omitempty"`
	Songs    []SongDto `json:"songs"`
}

// AuthRequest is the login body.
type AuthRequest struct {
	Email    string `json:"email" validate:"notblank,email"`
	Password string `json:"password" validate:"notblank"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDto `json:"user"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Message   string              `json:"message"`
	Status    int                 `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	Path      string              `json:"path"`
	Errors    []apperr.FieldError `json:"errors,omitempty"`
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
}
