package repository

import (
	"context"

	"groovy/db"
	"groovy/model"

	"gorm.io/gorm"
)

// FavoriteRepository 收藏数据访问接口
type FavoriteRepository interface {
	Exists(ctx context.Context, userID, songID int64) (bool, error)
	Add(ctx context.Context, userID, songID int64) (bool, error)
	Remove(ctx context.Context, userID, songID int64) (bool, error)
	ListSongs(ctx context.Context, userID int64) ([]*model.Song, error)
	DeleteBySong(ctx context.Context, songID int64) error
	DeleteByUser(ctx context.Context, userID int64) error
}

type gormFavoriteRepository struct {
	db *gorm.DB
}

// NewGormFavoriteRepository 创建 GORM 收藏仓库
func NewGormFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &gormFavoriteRepository{db: db}
}

// Exists 检查是否已收藏
func (r *gormFavoriteRepository) Exists(ctx context.Context, userID, songID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserFavorite{}).
		Where("user_id = ? AND song_id = ?", userID, songID).
		Count(&count).Error
	return count > 0, err
}

// Add 添加收藏。已收藏时返回 false。
func (r *gormFavoriteRepository) Add(ctx context.Context, userID, songID int64) (bool, error) {
	exists, err := r.Exists(ctx, userID, songID)
	if err != nil || exists {
		return false, err
	}
	fav := &model.UserFavorite{UserID: userID, SongID: songID}
	if err := r.db.WithContext(ctx).Create(fav).Error; err != nil {
		// 并发插入撞上唯一索引，视为已收藏
		if db.IsDuplicateKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Remove 取消收藏。未收藏时返回 false。
func (r *gormFavoriteRepository) Remove(ctx context.Context, userID, songID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND song_id = ?", userID, songID).
		Delete(&model.UserFavorite{})
	return res.RowsAffected > 0, res.Error
}

// ListSongs 获取用户收藏的歌曲，按收藏顺序
func (r *gormFavoriteRepository) ListSongs(ctx context.Context, userID int64) ([]*model.Song, error) {
	var songs []*model.Song
	err := r.db.WithContext(ctx).
		Preload("Album.Artist").
		Joins("JOIN user_favorites ON user_favorites.song_id = songs.id").
		Where("user_favorites.user_id = ?", userID).
		Order("user_favorites.id").
		Find(&songs).Error
	return songs, err
}

func (r *gormFavoriteRepository) DeleteBySong(ctx context.Context, songID int64) error {
	return r.db.WithContext(ctx).Where("song_id = ?", songID).Delete(&model.UserFavorite{}).Error
}

func (r *gormFavoriteRepository) DeleteByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserFavorite{}).Error
}
