package repository

import (
	"context"

	"groovy/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SongRepository 歌曲数据访问接口
type SongRepository interface {
	Create(ctx context.Context, song *model.Song) error
	GetByID(ctx context.Context, id int64) (*model.Song, error)
	List(ctx context.Context) ([]*model.Song, error)
	ListByAlbum(ctx context.Context, albumID int64) ([]*model.Song, error)
	SearchByTitle(ctx context.Context, title string) ([]*model.Song, error)
	Update(ctx context.Context, song *model.Song) error
	Delete(ctx context.Context, id int64) error

	// SetArtistForAlbum 专辑换艺术家时同步歌曲的 artist_id
	SetArtistForAlbum(ctx context.Context, albumID, artistID int64) error
	// ClearFilePath 清空指向 filePath 的歌曲文件字段，返回受影响的歌曲 ID
	ClearFilePath(ctx context.Context, filePath string) ([]int64, error)
}

// gormSongRepository GORM 实现
type gormSongRepository struct {
	db *gorm.DB
}

// NewGormSongRepository 创建 GORM 歌曲仓库
func NewGormSongRepository(db *gorm.DB) SongRepository {
	return &gormSongRepository{db: db}
}

func (r *gormSongRepository) withAlbum(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Album.Artist")
}

// Create 创建歌曲
func (r *gormSongRepository) Create(ctx context.Context, song *model.Song) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(song).Error
}

// GetByID 根据ID获取歌曲
func (r *gormSongRepository) GetByID(ctx context.Context, id int64) (*model.Song, error) {
	var song model.Song
	err := r.withAlbum(ctx).First(&song, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &song, nil
}

// List 获取全部歌曲
func (r *gormSongRepository) List(ctx context.Context) ([]*model.Song, error) {
	var songs []*model.Song
	err := r.withAlbum(ctx).Order("id").Find(&songs).Error
	return songs, err
}

// ListByAlbum 获取专辑下的歌曲
func (r *gormSongRepository) ListByAlbum(ctx context.Context, albumID int64) ([]*model.Song, error) {
	var songs []*model.Song
	err := r.withAlbum(ctx).
		Where("album_id = ?", albumID).
		Order("id").
		Find(&songs).Error
	return songs, err
}

// SearchByTitle 按标题模糊查询（不区分大小写）
func (r *gormSongRepository) SearchByTitle(ctx context.Context, title string) ([]*model.Song, error) {
	var songs []*model.Song
	err := r.withAlbum(ctx).
		Where("LOWER(title) LIKE ? ESCAPE '!'", containsPattern(title)).
		Order("id").
		Find(&songs).Error
	return songs, err
}

// Update 更新歌曲
func (r *gormSongRepository) Update(ctx context.Context, song *model.Song) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(song).Error
}

// Delete 删除歌曲
func (r *gormSongRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Song{}, id).Error
}

func (r *gormSongRepository) SetArtistForAlbum(ctx context.Context, albumID, artistID int64) error {
	return r.db.WithContext(ctx).Model(&model.Song{}).
		Where("album_id = ?", albumID).
		Update("artist_id", artistID).Error
}

func (r *gormSongRepository) ClearFilePath(ctx context.Context, filePath string) ([]int64, error) {
	db := r.db.WithContext(ctx)
	var ids []int64
	if err := db.Model(&model.Song{}).Where("file_path = ?", filePath).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := db.Model(&model.Song{}).Where("id IN ?", ids).Update("file_path", "").Error; err != nil {
		return nil, err
	}
	return ids, nil
}
