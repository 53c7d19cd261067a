package models

import "time"

// OrderStatus is the lifecycle state of an order. Any value may follow any
// other; only membership in the set is checked.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// LineItem is a snapshot of a product at the time it was ordered.
type LineItem struct {
	Name     string  `json:"name"     bson:"name"     validate:"required"`
	Price    float64 `json:"price"    bson:"price"    validate:"gte=0"`
	Quantity int     `json:"quantity" bson:"quantity" validate:"gte=1"`
}

type Order struct {
	ID          string      `json:"_id"         bson:"_id"         gorm:"primaryKey;size:24"`
	UserID      string      `json:"userId"      bson:"userId"      gorm:"size:24;not null;index" validate:"required,objectid"`
	Products    []LineItem  `json:"products"    bson:"products"    gorm:"serializer:json"       validate:"min=1,dive"`
	TotalAmount float64     `json:"totalAmount" bson:"totalAmount" gorm:"not null;default:0"    validate:"gte=0"`
	Status      OrderStatus `json:"status"      bson:"status"      gorm:"size:20;not null;default:pending" validate:"oneof=pending completed cancelled"`
	CreatedAt   time.Time   `json:"createdAt"   bson:"createdAt" gorm:"index;autoCreateTime:false"`
	UpdatedAt   time.Time   `json:"updatedAt"   bson:"updatedAt" gorm:"autoUpdateTime:false"`
}

// Total sums price × quantity over the line items.
func (o *Order) Total() float64 {
	var sum float64
	for _, item := range o.Products {
		sum += item.Price * float64(item.Quantity)
	}
	return sum
}

// OrderInput is the body of order creation.
type OrderInput struct {
	UserID      string     `json:"userId"`
	Products    []LineItem `json:"products"`
	TotalAmount *float64   `json:"totalAmount"`
}

// OrderStatusInput is the body of order updates.
type OrderStatusInput struct {
	Status OrderStatus `json:"status"`
}
