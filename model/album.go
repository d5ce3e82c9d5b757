package model

import "time"

// Album is a release owned by an artist.
type Album struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name       string    `json:"name" gorm:"size:100;not null;index"`
	ArtistID   int64     `json:"artistId" gorm:"not null;index"`
	Artist     *User     `json:"-" gorm:"foreignKey:ArtistID"`
	CoverImage string    `json:"coverImage" gorm:"size:255"`
	Songs      []Song    `json:"-" gorm:"foreignKey:AlbumID"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (Album) TableName() string {
	return "albums"
}
