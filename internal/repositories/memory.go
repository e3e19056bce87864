package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/imageboard/backend/internal/models"
)

// MemoryStore is an in-process implementation of every repository interface.
// It applies the same uniqueness and ownership rules as the gorm repositories
// and is meant for tests and local experiments.
type MemoryStore struct {
	mu        sync.RWMutex
	users     []models.User
	posts     []models.Post
	favorites []models.Favorite
	now       func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Users returns the store as a UserRepository.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Posts returns the store as a PostRepository.
func (s *MemoryStore) Posts() PostRepository { return memoryPosts{s} }

// Favorites returns the store as a FavoriteRepository.
func (s *MemoryStore) Favorites() FavoriteRepository { return memoryFavorites{s} }

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) CreateUser(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return ErrConflict
		}
		if user.Email != nil && u.Email != nil && *u.Email == *user.Email {
			return ErrConflict
		}
	}
	user.ID = uint(len(r.s.users) + 1)
	user.CreatedAt = r.s.now()
	r.s.users = append(r.s.users, *user)
	return nil
}

func (r memoryUsers) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u, ok := r.s.userByID(id); ok {
		return &u, nil
	}
	return nil, ErrNotFound
}

func (r memoryUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

type memoryPosts struct{ s *MemoryStore }

func (r memoryPosts) CreatePost(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.userByID(post.UserID); !ok {
		return ErrNotFound
	}
	post.ID = uint(len(r.s.posts) + 1)
	post.CreatedAt = r.s.now()
	stored := *post
	stored.User = nil
	r.s.posts = append(r.s.posts, stored)
	return nil
}

func (r memoryPosts) GetPostByID(_ context.Context, id uint) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if p, ok := r.s.postByID(id); ok {
		return &p, nil
	}
	return nil, ErrNotFound
}

func (r memoryPosts) GetPostsByTitle(_ context.Context, title string) ([]models.Post, error) {
	return r.s.filterPosts(func(p models.Post) bool { return p.Title == title }, false), nil
}

func (r memoryPosts) GetPostsByUserID(_ context.Context, userID uint) ([]models.Post, error) {
	return r.s.filterPosts(func(p models.Post) bool { return p.UserID == userID }, true), nil
}

func (r memoryPosts) GetRecentPosts(_ context.Context, limit int) ([]models.Post, error) {
	posts := r.s.filterPosts(func(models.Post) bool { return true }, true)
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

type memoryFavorites struct{ s *MemoryStore }

func (r memoryFavorites) AddFavorite(_ context.Context, favorite *models.Favorite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.userByID(favorite.UserID); !ok {
		return ErrNotFound
	}
	if _, ok := r.s.postByID(favorite.PostID); !ok {
		return ErrNotFound
	}
	for _, f := range r.s.favorites {
		if f.UserID == favorite.UserID && f.PostID == favorite.PostID {
			return ErrConflict
		}
	}
	favorite.ID = uint(len(r.s.favorites) + 1)
	favorite.CreatedAt = r.s.now()
	stored := *favorite
	stored.User, stored.Post = nil, nil
	r.s.favorites = append(r.s.favorites, stored)
	return nil
}

func (r memoryFavorites) IsFavorite(_ context.Context, userID, postID uint) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, f := range r.s.favorites {
		if f.UserID == userID && f.PostID == postID {
			return true, nil
		}
	}
	return false, nil
}

func (r memoryFavorites) GetFavoritePosts(_ context.Context, userID uint) ([]models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var posts []models.Post
	for i := len(r.s.favorites) - 1; i >= 0; i-- {
		f := r.s.favorites[i]
		if f.UserID != userID {
			continue
		}
		if p, ok := r.s.postByID(f.PostID); ok {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// userByID and postByID expect s.mu to be held.
func (s *MemoryStore) userByID(id uint) (models.User, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *MemoryStore) postByID(id uint) (models.Post, bool) {
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

func (s *MemoryStore) filterPosts(keep func(models.Post) bool, newestFirst bool) []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var posts []models.Post
	for _, p := range s.posts {
		if keep(p) {
			posts = append(posts, p)
		}
	}
	if newestFirst {
		sort.SliceStable(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	}
	return posts
}
