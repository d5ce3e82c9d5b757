package repository

import (
	"context"

	"groovy/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AlbumRepository 定义专辑相关的数据库操作接口
type AlbumRepository interface {
	// Create 创建新专辑
	Create(ctx context.Context, album *model.Album) error

	// GetByID 根据ID获取专辑信息，包含艺术家与歌曲
	GetByID(ctx context.Context, id int64) (*model.Album, error)

	// List 获取全部专辑
	List(ctx context.Context) ([]*model.Album, error)

	// ListByArtist 获取艺术家的所有专辑
	ListByArtist(ctx context.Context, artistID int64) ([]*model.Album, error)

	// Update 更新专辑信息
	Update(ctx context.Context, album *model.Album) error

	// UpdateCover 只更新封面文件名
	UpdateCover(ctx context.Context, id int64, coverImage string) error

	// Delete 删除专辑
	Delete(ctx context.Context, id int64) error

	// CountSongs 统计专辑中的歌曲数量
	CountSongs(ctx context.Context, albumID int64) (int64, error)
}

// gormAlbumRepository GORM实现的专辑仓库
type gormAlbumRepository struct {
	db *gorm.DB
}

// NewGormAlbumRepository 创建新的GORM专辑仓库实例
func NewGormAlbumRepository(db *gorm.DB) AlbumRepository {
	return &gormAlbumRepository{db: db}
}

func (r *gormAlbumRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Artist").
		Preload("Songs", orderByID)
}

// Create 创建新专辑
func (r *gormAlbumRepository) Create(ctx context.Context, album *model.Album) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(album).Error
}

// GetByID 根据ID获取专辑信息
func (r *gormAlbumRepository) GetByID(ctx context.Context, id int64) (*model.Album, error) {
	var album model.Album
	err := r.withRelations(ctx).First(&album, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &album, nil
}

// List 获取全部专辑
func (r *gormAlbumRepository) List(ctx context.Context) ([]*model.Album, error) {
	var albums []*model.Album
	err := r.withRelations(ctx).Order("id").Find(&albums).Error
	return albums, err
}

// ListByArtist 获取艺术家的所有专辑
func (r *gormAlbumRepository) ListByArtist(ctx context.Context, artistID int64) ([]*model.Album, error) {
	var albums []*model.Album
	err := r.withRelations(ctx).
		Where("artist_id = ?", artistID).
		Order("id").
		Find(&albums).Error
	return albums, err
}

// Update 更新专辑信息
func (r *gormAlbumRepository) Update(ctx context.Context, album *model.Album) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(album).Error
}

func (r *gormAlbumRepository) UpdateCover(ctx context.Context, id int64, coverImage string) error {
	return r.db.WithContext(ctx).Model(&model.Album{}).
		Where("id = ?", id).
		Update("cover_image", coverImage).Error
}

// Delete 删除专辑
func (r *gormAlbumRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Album{}, id).Error
}

// CountSongs 统计专辑中的歌曲数量
func (r *gormAlbumRepository) CountSongs(ctx context.Context, albumID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Song{}).
		Where("album_id = ?", albumID).
		Count(&count).Error
	return count, err
}
