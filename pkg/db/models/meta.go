package models

import "time"

const MetaKeyCurrentEvent = "currentEventId"

type Meta struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Meta) TableName() string { return "meta" }

// All lists every POS model, used by dev/test schema setup.
func All() []any {
	return []any{&Event{}, &Sale{}, &CashDay{}, &Reminder{}, &Order{}, &Meta{}}
}
