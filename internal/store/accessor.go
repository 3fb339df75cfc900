// Package store holds the safe read helpers over the POS record store and the
// sibling-module blobs. Reads never return errors or panic: every failure is
// folded into an unavailable Result.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/Arcano33sa/suitea33-sub002/pkg/config"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db"
	"github.com/Arcano33sa/suitea33-sub002/pkg/logger"
	"github.com/Arcano33sa/suitea33-sub002/pkg/metrics"
	"gorm.io/gorm"
)

// DefaultScanLimit is used when Options.ScanLimit is not positive.
const DefaultScanLimit = 4000

var errNoDatabase = errors.New("store: running without database")

type Options struct {
	ScanLimit int
	Logger    *logger.Logger
	Metrics   *metrics.DashboardMetrics
}

// Accessor performs bounded reads against the POS store. A nil database puts
// it in "no database" mode where every read is unavailable.
type Accessor struct {
	db      *gorm.DB
	client  *db.Client
	limit   int
	logg    *logger.Logger
	metrics *metrics.DashboardMetrics

	mu      sync.RWMutex
	indexes map[string]bool
}

// New wraps an already-open connection.
func New(conn *gorm.DB, opts Options) *Accessor {
	limit := opts.ScanLimit
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	return &Accessor{
		db:      conn,
		limit:   limit,
		logg:    opts.Logger,
		metrics: opts.Metrics,
		indexes: map[string]bool{},
	}
}

type openResult struct {
	client *db.Client
	err    error
}

// Open connects to the POS store, giving up after cfg.OpenTimeout. Failure
// and timeout both yield an Accessor in "no database" mode instead of an
// error so the dashboard can still render its unavailable placeholders.
func Open(ctx context.Context, cfg config.DBConfig, opts Options) *Accessor {
	openCtx, cancel := context.WithTimeout(ctx, cfg.OpenTimeout)
	defer cancel()

	done := make(chan openResult, 1)
	go func() {
		client, err := db.New(openCtx, cfg, opts.Logger)
		done <- openResult{client: client, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			warn(ctx, opts.Logger, "pos store unavailable, running without database", res.err)
			return New(nil, opts)
		}
		acc := New(res.client.DB(), opts)
		acc.client = res.client
		return acc
	case <-openCtx.Done():
		warn(ctx, opts.Logger, "pos store open timed out, running without database", openCtx.Err())
		go func() {
			if res := <-done; res.client != nil {
				_ = res.client.Close()
			}
		}()
		return New(nil, opts)
	}
}

func warn(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil {
		return
	}
	logg.Warn(logg.WithField(ctx, "error", err.Error()), msg)
}

// Available reports whether a database is attached.
func (a *Accessor) Available() bool {
	return a != nil && a.db != nil
}

func (a *Accessor) ScanLimit() int {
	if a == nil {
		return DefaultScanLimit
	}
	return a.limit
}

// Ping backs the readiness probe.
func (a *Accessor) Ping(ctx context.Context) error {
	if !a.Available() {
		return errNoDatabase
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *Accessor) Close() error {
	if a == nil || a.client == nil {
		return nil
	}
	return a.client.Close()
}

func (a *Accessor) hasIndex(model any, table, index string) (bool, error) {
	key := table + "." + index
	a.mu.RLock()
	known, ok := a.indexes[key]
	a.mu.RUnlock()
	if ok {
		return known, nil
	}

	var found bool
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.New("index lookup panicked")
			}
		}()
		found = a.db.Migrator().HasIndex(model, index)
		return nil
	}()
	if err != nil {
		return false, err
	}

	a.mu.Lock()
	a.indexes[key] = found
	a.mu.Unlock()
	return found, nil
}

func (a *Accessor) degraded(ctx context.Context, source, index, reason string) {
	if a == nil {
		return
	}
	a.metrics.DegradedRead(source, reason)
	if a.logg == nil {
		return
	}
	fields := map[string]any{"store": source, "reason": reason}
	if index != "" {
		fields["index"] = index
	}
	a.logg.Warn(a.logg.WithFields(ctx, fields), "degraded store read")
}
