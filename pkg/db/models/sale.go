package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	IndexSalesByDate  = "idx_sales_date"
	IndexSalesByEvent = "idx_sales_event"
)

// Sale is a single POS sale row. Date holds the operative day key.
type Sale struct {
	ID          int             `gorm:"column:id;primaryKey"`
	EventID     int             `gorm:"column:event_id;index:idx_sales_event"`
	Date        string          `gorm:"column:date;index:idx_sales_date"`
	Total       decimal.Decimal `gorm:"column:total;type:numeric(12,2)"`
	ProductName string          `gorm:"column:product_name"`
	Qty         float64         `gorm:"column:qty"`
	Payment     string          `gorm:"column:payment"`
	Courtesy    bool            `gorm:"column:courtesy"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
}

func (Sale) TableName() string { return "sales" }
