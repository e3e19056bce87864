package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/anonto42/imageboard/backend/internal/models"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPostsByTitle(ctx context.Context, title string) ([]models.Post, error)
	GetPostsByUserID(ctx context.Context, userID uint) ([]models.Post, error)
	GetRecentPosts(ctx context.Context, limit int) ([]models.Post, error)
}

// GormPostRepository implements PostRepository with gorm
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// CreatePost inserts post. The owner must exist; ErrNotFound otherwise.
func (r *GormPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owners int64
		if err := tx.Model(&models.User{}).Where("id = ?", post.UserID).Count(&owners).Error; err != nil {
			return err
		}
		if owners == 0 {
			return ErrNotFound
		}
		return translate(tx.Omit("User").Create(post).Error)
	})
}

// GetPostByID retrieves a post by ID
func (r *GormPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// GetPostsByTitle returns every post with exactly this title. Titles are not unique.
func (r *GormPostRepository) GetPostsByTitle(ctx context.Context, title string) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Where("title = ?", title).Order("id").Find(&posts).Error
	return posts, err
}

// GetPostsByUserID retrieves a user's posts, newest first
func (r *GormPostRepository) GetPostsByUserID(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&posts).Error
	return posts, err
}

// GetRecentPosts retrieves the newest posts across all users
func (r *GormPostRepository) GetRecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&posts).Error
	return posts, err
}
