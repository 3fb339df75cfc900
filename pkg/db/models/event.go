package models

import (
	"time"

	"github.com/Arcano33sa/suitea33-sub002/pkg/types"
)

// Event is an operational unit of the POS (a catering or retail event).
// Everything beyond identity and timestamps lives in Data because the POS has
// written several shapes over time (activity flags, fx fields, checklist
// template, per-day state).
type Event struct {
	ID        int            `gorm:"column:id;primaryKey"`
	Name      string         `gorm:"column:name"`
	GroupName string         `gorm:"column:group_name"`
	Data      types.Document `gorm:"column:data;type:text"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (Event) TableName() string { return "events" }
