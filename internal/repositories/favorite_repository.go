package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/anonto42/imageboard/backend/internal/models"
)

// FavoriteRepository defines the interface for favorite operations
type FavoriteRepository interface {
	AddFavorite(ctx context.Context, favorite *models.Favorite) error
	IsFavorite(ctx context.Context, userID, postID uint) (bool, error)
	GetFavoritePosts(ctx context.Context, userID uint) ([]models.Post, error)
}

// GormFavoriteRepository implements FavoriteRepository
type GormFavoriteRepository struct {
	db *gorm.DB
}

func NewGormFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

// AddFavorite stores favorite; ErrConflict when the pair already exists.
func (r *GormFavoriteRepository) AddFavorite(ctx context.Context, favorite *models.Favorite) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Favorite{}).
			Where("user_id = ? AND post_id = ?", favorite.UserID, favorite.PostID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrConflict
		}
		return translate(tx.Omit("User", "Post").Create(favorite).Error)
	})
}

func (r *GormFavoriteRepository) IsFavorite(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

// GetFavoritePosts returns the posts a user has favorited, most recent favorite first.
func (r *GormFavoriteRepository) GetFavoritePosts(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Joins("JOIN favorites ON favorites.post_id = posts.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC, favorites.id DESC").
		Find(&posts).Error
	return posts, err
}
