package model

import "time"

// PlaylistSongsTable is the join table between playlists and songs.
const PlaylistSongsTable = "playlist_songs"

// Playlist is a user-curated list of songs.
type Playlist struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"size:100;not null;index"`
	UserID    int64     `json:"userId" gorm:"not null;index"`
	User      *User     `json:"-" gorm:"foreignKey:UserID"`
	Songs     []Song    `json:"-" gorm:"many2many:playlist_songs"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (Playlist) TableName() string {
	return "playlists"
}

// UserFavorite marks a song as a favorite of a user. (user, song) is unique.
type UserFavorite struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"userId" gorm:"not null;uniqueIndex:uq_user_song"`
	SongID    int64     `json:"songId" gorm:"not null;uniqueIndex:uq_user_song;index"`
	Song      *Song     `json:"-" gorm:"foreignKey:SongID"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName 指定表名
func (UserFavorite) TableName() string {
	return "user_favorites"
}

// All lists every persistent model, in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Album{}, &Song{}, &Playlist{}, &UserFavorite{}}
}
