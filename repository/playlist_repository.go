package repository

import (
	"context"

	"groovy/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaylistRepository 播放列表数据访问接口
type PlaylistRepository interface {
	// 播放列表 CRUD
	Create(ctx context.Context, playlist *model.Playlist) error
	GetByID(ctx context.Context, id int64) (*model.Playlist, error)
	List(ctx context.Context) ([]*model.Playlist, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Playlist, error)
	SearchByName(ctx context.Context, name string) ([]*model.Playlist, error)
	Update(ctx context.Context, playlist *model.Playlist) error
	Delete(ctx context.Context, id int64) error
	DeleteByUser(ctx context.Context, userID int64) error

	// 歌曲管理
	HasSong(ctx context.Context, playlistID, songID int64) (bool, error)
	AddSong(ctx context.Context, playlistID, songID int64) error
	RemoveSong(ctx context.Context, playlistID, songID int64) error
	RemoveSongEverywhere(ctx context.Context, songID int64) error
}

// gormPlaylistRepository GORM 实现
type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository 创建 GORM 播放列表仓库
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

func (r *gormPlaylistRepository) withSongs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Songs", func(db *gorm.DB) *gorm.DB {
			return db.Order("songs.id")
		}).
		Preload("Songs.Album.Artist")
}

// ========== 播放列表 CRUD ==========

// Create 创建播放列表
func (r *gormPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(playlist).Error
}

// GetByID 根据ID获取播放列表
func (r *gormPlaylistRepository) GetByID(ctx context.Context, id int64) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.withSongs(ctx).First(&playlist, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &playlist, nil
}

// List 获取全部播放列表
func (r *gormPlaylistRepository) List(ctx context.Context) ([]*model.Playlist, error) {
	var playlists []*model.Playlist
	err := r.withSongs(ctx).Order("id").Find(&playlists).Error
	return playlists, err
}

// ListByUser 获取用户的播放列表
func (r *gormPlaylistRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Playlist, error) {
	var playlists []*model.Playlist
	err := r.withSongs(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&playlists).Error
	return playlists, err
}

// SearchByName 按名称模糊查询（不区分大小写）
func (r *gormPlaylistRepository) SearchByName(ctx context.Context, name string) ([]*model.Playlist, error) {
	var playlists []*model.Playlist
	err := r.withSongs(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '!'", containsPattern(name)).
		Order("id").
		Find(&playlists).Error
	return playlists, err
}

// Update 更新播放列表
func (r *gormPlaylistRepository) Update(ctx context.Context, playlist *model.Playlist) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(playlist).Error
}

// Delete 删除播放列表及其歌曲关联
func (r *gormPlaylistRepository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Exec("DELETE FROM "+model.PlaylistSongsTable+" WHERE playlist_id = ?", id).Error; err != nil {
		return err
	}
	return db.Delete(&model.Playlist{}, id).Error
}

// DeleteByUser 删除用户的全部播放列表
func (r *gormPlaylistRepository) DeleteByUser(ctx context.Context, userID int64) error {
	db := r.db.WithContext(ctx)
	var ids []int64
	if err := db.Model(&model.Playlist{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := db.Exec("DELETE FROM "+model.PlaylistSongsTable+" WHERE playlist_id IN ?", ids).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", ids).Delete(&model.Playlist{}).Error
}

// ========== 歌曲管理 ==========

// HasSong 检查歌曲是否已在播放列表中
func (r *gormPlaylistRepository) HasSong(ctx context.Context, playlistID, songID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table(model.PlaylistSongsTable).
		Where("playlist_id = ? AND song_id = ?", playlistID, songID).
		Count(&count).Error
	return count > 0, err
}

// AddSong 添加歌曲，已存在时不做任何事
func (r *gormPlaylistRepository) AddSong(ctx context.Context, playlistID, songID int64) error {
	exists, err := r.HasSong(ctx, playlistID, songID)
	if err != nil || exists {
		return err
	}
	return r.db.WithContext(ctx).
		Exec("INSERT INTO "+model.PlaylistSongsTable+" (playlist_id, song_id) VALUES (?, ?)", playlistID, songID).Error
}

// RemoveSong 移除歌曲
func (r *gormPlaylistRepository) RemoveSong(ctx context.Context, playlistID, songID int64) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM "+model.PlaylistSongsTable+" WHERE playlist_id = ? AND song_id = ?", playlistID, songID).Error
}

// RemoveSongEverywhere 从所有播放列表中移除歌曲
func (r *gormPlaylistRepository) RemoveSongEverywhere(ctx context.Context, songID int64) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM "+model.PlaylistSongsTable+" WHERE song_id = ?", songID).Error
}
