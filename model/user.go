package model

import "time"

// Role is the authorization role of an account.
type Role string

const (
	RoleUser   Role = "USER"
	RoleAdmin  Role = "ADMIN"
	RoleArtist Role = "ARTIST"
)

// User represents an account. Artists are users with RoleArtist; the
// artist-only columns stay empty for everyone else.
type User struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name           string    `json:"name" gorm:"size:100;not null;index"`
	Email          string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash   string    `json:"-" gorm:"size:255"` // Not exposed in API responses
	Role           Role      `json:"role" gorm:"size:20;not null;default:'USER';index"`
	Biography      string    `json:"biography,omitempty" gorm:"type:text"`
	ProfilePicture string    `json:"profilePicture,omitempty" gorm:"size:512"`
	Albums         []Album   `json:"-" gorm:"foreignKey:ArtistID"`
	Songs          []Song    `json:"-" gorm:"foreignKey:ArtistID"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// IsArtist reports whether the account is an artist profile.
func (u *User) IsArtist() bool {
	return u.Role == RoleArtist
}
