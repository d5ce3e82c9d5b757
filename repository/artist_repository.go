package repository

import (
	"context"

	"groovy/model"

	"gorm.io/gorm"
)

// ArtistRepository 艺术家查询接口。艺术家是 role=ARTIST 的用户，
// 写操作走 UserRepository。
type ArtistRepository interface {
	List(ctx context.Context) ([]*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	SearchByName(ctx context.Context, name string) ([]*model.User, error)
	CountAlbums(ctx context.Context, artistID int64) (int64, error)
}

type gormArtistRepository struct {
	db *gorm.DB
}

// NewGormArtistRepository 创建 GORM 艺术家仓库
func NewGormArtistRepository(db *gorm.DB) ArtistRepository {
	return &gormArtistRepository{db: db}
}

// artists scopes a query to artist rows with their albums and songs loaded.
func (r *gormArtistRepository) artists(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("role = ?", model.RoleArtist).
		Preload("Albums", orderByID).
		Preload("Songs", orderByID)
}

// List 获取全部艺术家
func (r *gormArtistRepository) List(ctx context.Context) ([]*model.User, error) {
	var artists []*model.User
	err := r.artists(ctx).Order("id").Find(&artists).Error
	return artists, err
}

// GetByID 根据ID获取艺术家
func (r *gormArtistRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var artist model.User
	err := r.artists(ctx).Where("id = ?", id).First(&artist).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &artist, nil
}

// SearchByName 按名称模糊查询（不区分大小写）
func (r *gormArtistRepository) SearchByName(ctx context.Context, name string) ([]*model.User, error) {
	var artists []*model.User
	err := r.artists(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '!'", containsPattern(name)).
		Order("id").
		Find(&artists).Error
	return artists, err
}

// CountAlbums 统计艺术家的专辑数量
func (r *gormArtistRepository) CountAlbums(ctx context.Context, artistID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Album{}).
		Where("artist_id = ?", artistID).
		Count(&count).Error
	return count, err
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
