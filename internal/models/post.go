package models

import "time"

// Post is an image post owned by a user.
type Post struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"index;not null"`
	Description string    `json:"description" gorm:"not null"`
	Image       string    `json:"image" gorm:"not null"` // public path of the stored file
	ImageName   string    `json:"image_name"`           // client filename, display only
	UserID      uint      `json:"user_id" gorm:"index;not null"`
	User        *User     `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreatePostRequest holds the text fields of the post creation form.
type CreatePostRequest struct {
	Title       string `form:"title" validate:"required,max=200"`
	Description string `form:"description" validate:"required,max=5000"`
}
