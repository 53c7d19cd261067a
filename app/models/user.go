package models

import "time"

// User is a registered account. Password holds the bcrypt hash and is never
// serialised to clients.
type User struct {
	ID                 string    `json:"_id"                bson:"_id"                gorm:"primaryKey;size:24"`
	Email              string    `json:"email"              bson:"email"              gorm:"size:255;not null;uniqueIndex" validate:"required,email"`
	Password           string    `json:"-"                  bson:"password"           gorm:"size:255;not null"`
	FavoriteCategories []string  `json:"favoriteCategories" bson:"favoriteCategories" gorm:"serializer:json"               validate:"dive,objectid"`
	IsAdmin            bool      `json:"isAdmin"            bson:"isAdmin"            gorm:"not null;default:false"`
	CreatedAt          time.Time `json:"createdAt"          bson:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt          time.Time `json:"updatedAt"          bson:"updatedAt" gorm:"autoUpdateTime:false"`
}

// Credentials is the body of register and login requests.
type Credentials struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// FavoritesInput is the body of the favorite-categories update.
type FavoritesInput struct {
	Categories []string `json:"categories" validate:"dive,objectid"`
}
