package models

import "time"

const IndexOrdersByDelivery = "idx_orders_delivery"

// Order is a customer order with a scheduled delivery day.
type Order struct {
	ID           int       `gorm:"column:id;primaryKey"`
	EventID      int       `gorm:"column:event_id"`
	ClientName   string    `gorm:"column:client_name"`
	DeliveryDate string    `gorm:"column:delivery_date;index:idx_orders_delivery"`
	Status       string    `gorm:"column:status"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (Order) TableName() string { return "orders" }
