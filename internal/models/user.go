package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is a registered account. Password holds only the bcrypt digest.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Email     *string   `json:"email,omitempty" gorm:"uniqueIndex"`
	Avatar    *string   `json:"avatar,omitempty"`
	IsAdmin   bool      `json:"is_admin" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest is the registration form. bcrypt only accepts passwords of
// up to 72 bytes, so the password limit counts bytes rather than characters.
type RegisterRequest struct {
	Username string `form:"username" validate:"required,min=3,max=50,username"`
	Password string `form:"password" validate:"required,min=6,bytesmax=72"`
}

// LoginRequest is the login form. Lengths are not validated so that a bad
// login is always answered with 401.
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// SessionClaims are the claims carried by a session token.
type SessionClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}
