package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Range narrows an indexed read. Column is the indexed column; Eq, Lower,
// Upper (both inclusive) and Prefix apply to it. Filter adds equality
// conditions on other columns.
type Range struct {
	Column  string
	Eq      any
	Lower   any
	Upper   any
	Prefix  string
	Filter  map[string]any
	OrderBy string
}

func (r Range) apply(q *gorm.DB) *gorm.DB {
	if r.Column != "" {
		col := clause.Column{Name: r.Column}
		if r.Eq != nil {
			q = q.Where(clause.Eq{Column: col, Value: r.Eq})
		}
		if r.Lower != nil {
			q = q.Where(clause.Gte{Column: col, Value: r.Lower})
		}
		if r.Upper != nil {
			q = q.Where(clause.Lte{Column: col, Value: r.Upper})
		}
		if r.Prefix != "" {
			q = q.Where(clause.Like{Column: col, Value: r.Prefix + "%"})
		}
	}
	if len(r.Filter) > 0 {
		q = q.Where(map[string]interface{}(r.Filter))
	}
	if r.OrderBy != "" {
		q = q.Order(r.OrderBy)
	}
	return q
}

type tabler interface {
	TableName() string
}

func tableOf[T any]() (any, string) {
	model := new(T)
	if t, ok := any(model).(tabler); ok {
		return model, t.TableName()
	}
	return model, fmt.Sprintf("%T", *model)
}

func fail[T any](ctx context.Context, a *Accessor, source, index, reason string) Result[T] {
	a.degraded(ctx, source, index, reason)
	if reason == ReasonMissingIndex {
		return Unsupported[T](reason)
	}
	return Unavailable[T](reason)
}

func recoverInto[T any](ctx context.Context, a *Accessor, source, index string, res *Result[T]) {
	if r := recover(); r != nil {
		*res = fail[T](ctx, a, source, index, ReasonFault)
	}
}

// Get reads a single record where column equals value. A missing record is
// Empty, not unavailable.
func Get[T any](ctx context.Context, a *Accessor, column string, value any) (res Result[*T]) {
	_, source := tableOf[T]()
	defer recoverInto(ctx, a, source, "", &res)
	if !a.Available() {
		return fail[*T](ctx, a, source, "", ReasonNoDatabase)
	}

	var row T
	err := a.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Empty[*T](nil)
	}
	if err != nil {
		return fail[*T](ctx, a, source, "", ReasonReadFailed)
	}
	return OK(&row)
}

// ListByIndex reads every row matching rng through index. An empty index name
// scans by primary key. The read fetches one row past the scan ceiling; if
// the ceiling is exceeded the whole read is unavailable, never truncated.
func ListByIndex[T any](ctx context.Context, a *Accessor, index string, rng Range) (res Result[[]T]) {
	model, source := tableOf[T]()
	defer recoverInto(ctx, a, source, index, &res)
	if !a.Available() {
		return fail[[]T](ctx, a, source, index, ReasonNoDatabase)
	}
	if index != "" {
		ok, err := a.hasIndex(model, source, index)
		if err != nil {
			return fail[[]T](ctx, a, source, index, ReasonReadFailed)
		}
		if !ok {
			return fail[[]T](ctx, a, source, index, ReasonMissingIndex)
		}
	}

	var rows []T
	q := rng.apply(a.db.WithContext(ctx).Model(model))
	if err := q.Limit(a.limit + 1).Find(&rows).Error; err != nil {
		return fail[[]T](ctx, a, source, index, ReasonReadFailed)
	}
	if len(rows) > a.limit {
		return fail[[]T](ctx, a, source, index, ReasonScanCeiling)
	}
	if len(rows) == 0 {
		return Empty([]T{})
	}
	return OK(rows)
}

// ListAll scans a whole table under the same ceiling as ListByIndex.
func ListAll[T any](ctx context.Context, a *Accessor, orderBy string) Result[[]T] {
	return ListByIndex[T](ctx, a, "", Range{OrderBy: orderBy})
}

// CountByIndex counts rows matching rng through index.
func CountByIndex[T any](ctx context.Context, a *Accessor, index string, rng Range) (res Result[int]) {
	model, source := tableOf[T]()
	defer recoverInto(ctx, a, source, index, &res)
	if !a.Available() {
		return fail[int](ctx, a, source, index, ReasonNoDatabase)
	}
	if index != "" {
		ok, err := a.hasIndex(model, source, index)
		if err != nil {
			return fail[int](ctx, a, source, index, ReasonReadFailed)
		}
		if !ok {
			return fail[int](ctx, a, source, index, ReasonMissingIndex)
		}
	}

	var count int64
	rng.OrderBy = ""
	if err := rng.apply(a.db.WithContext(ctx).Model(model)).Count(&count).Error; err != nil {
		return fail[int](ctx, a, source, index, ReasonReadFailed)
	}
	if count == 0 {
		return Empty(0)
	}
	return OK(int(count))
}

// GetMany reads the records whose column is one of keys, in one query.
// Missing keys are simply absent from the result.
func GetMany[T any, K comparable](ctx context.Context, a *Accessor, column string, keys []K) (res Result[[]T]) {
	_, source := tableOf[T]()
	defer recoverInto(ctx, a, source, "", &res)
	if !a.Available() {
		return fail[[]T](ctx, a, source, "", ReasonNoDatabase)
	}
	if len(keys) > a.limit {
		return fail[[]T](ctx, a, source, "", ReasonScanCeiling)
	}
	if len(keys) == 0 {
		return Empty([]T{})
	}

	values := make([]any, 0, len(keys))
	for _, k := range keys {
		values = append(values, k)
	}
	var rows []T
	err := a.db.WithContext(ctx).
		Where(clause.IN{Column: clause.Column{Name: column}, Values: values}).
		Find(&rows).Error
	if err != nil {
		return fail[[]T](ctx, a, source, "", ReasonReadFailed)
	}
	if len(rows) == 0 {
		return Empty([]T{})
	}
	return OK(rows)
}
