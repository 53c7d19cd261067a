package models

import (
	"strings"
	"time"
)

// Product is a catalog item. The same struct is persisted by every store
// adapter, hence the side-by-side bson and gorm tags.
type Product struct {
	ID          string            `json:"_id"                   bson:"_id"                   gorm:"primaryKey;size:24"`
	Title       string            `json:"title"                 bson:"title"                 gorm:"size:255;not null;index" validate:"required,min=3"`
	Description string            `json:"description,omitempty" bson:"description,omitempty" gorm:"type:text"`
	Price       float64           `json:"price"                 bson:"price"                 gorm:"not null;default:0"      validate:"gte=0"`
	Images      []string          `json:"images"                bson:"images"                gorm:"serializer:json"         validate:"min=1,dive,required"`
	Category    string            `json:"category"              bson:"category"              gorm:"size:24;index"           validate:"required,objectid"`
	Properties  map[string]string `json:"properties,omitempty"  bson:"properties,omitempty"  gorm:"serializer:json"`
	IsAuction   bool              `json:"isAuction"             bson:"isAuction"             gorm:"not null;default:false"`
	AuctionLink string            `json:"auctionLink,omitempty" bson:"auctionLink,omitempty" gorm:"size:512"                validate:"required_if=IsAuction true"`
	Stock       int               `json:"stock"                 bson:"stock"                 gorm:"not null;default:0;index" validate:"gte=0"`
	CreatedAt   time.Time         `json:"createdAt"             bson:"createdAt" gorm:"index;autoCreateTime:false"`
	UpdatedAt   time.Time         `json:"updatedAt"             bson:"updatedAt" gorm:"autoUpdateTime:false"`
}

// Normalize trims text fields and replaces nil collections with empty ones.
func (p *Product) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.TrimSpace(p.Category)
	p.AuctionLink = strings.TrimSpace(p.AuctionLink)
	if p.Images == nil {
		p.Images = []string{}
	}
	for i, img := range p.Images {
		p.Images[i] = strings.TrimSpace(img)
	}
}

// CategoryRef is the resolved category embedded in a product lookup.
type CategoryRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// ProductDetail is a product whose category id has been replaced by the
// category itself. Category is nil when the referenced category is gone.
type ProductDetail struct {
	Product
	Category *CategoryRef `json:"category"`
}

// ProductInput is the body of create and update requests. Nil fields were
// not supplied; on update they keep their stored value.
type ProductInput struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Price       *float64          `json:"price"`
	Images      []string          `json:"images"`
	Category    *string           `json:"category"`
	Properties  map[string]string `json:"properties"`
	IsAuction   *bool             `json:"isAuction"`
	AuctionLink *string           `json:"auctionLink"`
	Stock       *int              `json:"stock"`
}

// Apply copies every supplied field onto p.
func (in ProductInput) Apply(p *Product) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Images != nil {
		p.Images = append([]string(nil), in.Images...)
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Properties != nil {
		p.Properties = make(map[string]string, len(in.Properties))
		for k, v := range in.Properties {
			p.Properties[k] = v
		}
	}
	if in.IsAuction != nil {
		p.IsAuction = *in.IsAuction
	}
	if in.AuctionLink != nil {
		p.AuctionLink = *in.AuctionLink
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
}
