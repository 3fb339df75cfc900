package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"gorm.io/gorm/clause"
)

// FocusEventID reads the persisted "currentEventId" pointer.
func (a *Accessor) FocusEventID(ctx context.Context) Result[int] {
	res := Get[models.Meta](ctx, a, "key", models.MetaKeyCurrentEvent)
	if !res.Known() {
		return Result[int]{Status: res.Status, Reason: res.Reason}
	}
	if res.Value == nil {
		return Empty(0)
	}
	id, err := strconv.Atoi(res.Value.Value)
	if err != nil || id <= 0 {
		return fail[int](ctx, a, models.Meta{}.TableName(), "", ReasonMalformed)
	}
	return OK(id)
}

// SetFocusEventID upserts the focus pointer. This is the only write the
// dashboard performs and it is idempotent.
func (a *Accessor) SetFocusEventID(ctx context.Context, eventID int) error {
	if !a.Available() {
		return errNoDatabase
	}
	row := models.Meta{
		Key:       models.MetaKeyCurrentEvent,
		Value:     strconv.Itoa(eventID),
		UpdatedAt: time.Now().UTC(),
	}
	err := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("persist focus pointer: %w", err)
	}
	return nil
}
