package models

import "time"

const IndexRemindersByDay = "idx_reminders_day"

// Reminder is an entry of the POS reminders index. ID is the composite
// "<dayKey>|<reminderID>" key.
type Reminder struct {
	ID        string    `gorm:"column:id;primaryKey"`
	DayKey    string    `gorm:"column:day_key;index:idx_reminders_day"`
	EventID   int       `gorm:"column:event_id"`
	EventName string    `gorm:"column:event_name"`
	DueTime   string    `gorm:"column:due_time"`
	Priority  string    `gorm:"column:priority"`
	Done      bool      `gorm:"column:done"`
	Text      string    `gorm:"column:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Reminder) TableName() string { return "reminders" }
