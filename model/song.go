package model

import "time"

// Song is a track on an album. ArtistID is copied from the album on every
// write so an artist's songs can be listed without a join.
type Song struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title     string    `json:"title" gorm:"size:100;not null;index"`
	Duration  *float64  `json:"duration"` // minutes
	FilePath  string    `json:"filePath" gorm:"size:512;index"`
	AlbumID   int64     `json:"albumId" gorm:"not null;index"`
	Album     *Album    `json:"-" gorm:"foreignKey:AlbumID"`
	ArtistID  int64     `json:"artistId" gorm:"index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (Song) TableName() string {
	return "songs"
}
