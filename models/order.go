package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusAccepted   OrderStatus = "ACCEPTED"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
)

var orderStatusText = map[OrderStatus]string{
	OrderStatusProcessing: "Processing",
	OrderStatusAccepted:   "Accepted",
	OrderStatusShipped:    "Shipped",
	OrderStatusDelivered:  "Delivered",
}

// Text returns the human-readable label for a status.
func (s OrderStatus) Text() string {
	if text, ok := orderStatusText[s]; ok {
		return text
	}
	return string(s)
}

// IsValidOrderStatus reports whether s is a known status value. Transitions
// between known statuses are deliberately unrestricted: an admin may move an
// order to any status, including backwards.
func IsValidOrderStatus(s OrderStatus) bool {
	_, ok := orderStatusText[s]
	return ok
}

// Order is created exactly once per checkout and is immutable afterwards
// except for Status. TotalPrice is computed at checkout time and never
// recomputed.
type Order struct {
	ID         uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	User       User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TotalPrice float64     `gorm:"not null" json:"total_price"`
	Status     OrderStatus `gorm:"default:PROCESSING" json:"status"`
	Items      []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// OrderItem holds a snapshot of the product name and price as of checkout.
// The ProductID reference stays live only for presentation data (image URL);
// the snapshot fields never change even if the product does.
type OrderItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrderID      uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	Order        Order     `gorm:"foreignKey:OrderID" json:"-"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product      Product   `gorm:"foreignKey:ProductID" json:"-"`
	ProductName  string    `gorm:"not null" json:"product_name"`
	ProductPrice float64   `gorm:"not null" json:"product_price"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (oi *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	return nil
}
