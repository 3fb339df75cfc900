package models

import (
	"time"

	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
)

const (
	IndexCashByEvent    = "idx_cash_event"
	IndexCashByEventDay = "idx_cash_event_day"
)

// CashDay is one cash-drawer ledger record. Data carries fx, initial balances
// per currency, the movements list and an optional cashSales snapshot.
type CashDay struct {
	ID        int            `gorm:"column:id;primaryKey"`
	EventID   int            `gorm:"column:event_id;index:idx_cash_event;index:idx_cash_event_day,priority:1"`
	DayKey    string         `gorm:"column:day_key;index:idx_cash_event_day,priority:2"`
	Status    string         `gorm:"column:status"`
	OpenedAt  *time.Time     `gorm:"column:opened_at"`
	ClosedAt  *time.Time     `gorm:"column:closed_at"`
	Data      types.Document `gorm:"column:data;type:text"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (CashDay) TableName() string { return "cash_days" }
