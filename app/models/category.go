package models

import "time"

// Category groups products. Names are unique.
type Category struct {
	ID        string    `json:"_id"       bson:"_id"       gorm:"primaryKey;size:24"`
	Name      string    `json:"name"      bson:"name"      gorm:"size:255;not null;uniqueIndex" validate:"required"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" gorm:"autoUpdateTime:false"`
}

// CategoryInput is the body of category create/update requests.
type CategoryInput struct {
	Name string `json:"name"`
}
