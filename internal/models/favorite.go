package models

import "time"

// Favorite marks a post as a favorite of a user.
type Favorite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_post_favorite"`
	PostID    uint      `json:"post_id" gorm:"not null;index;uniqueIndex:idx_user_post_favorite"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Post      *Post     `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

// AddFavoriteRequest identifies the post to favorite, preferably by ID.
type AddFavoriteRequest struct {
	PostID    uint   `form:"post_id"`
	PostTitle string `form:"post_title"`
}
