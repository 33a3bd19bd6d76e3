package config

import (
	"context"
	"errors"

	"github.com/mmdatafocus/gallon_backend/appctx"
	"gorm.io/gorm"
)

// HistoryTable holds the append-only distribution log.
const HistoryTable = "gallon_transactions"

var ErrHistoryImmutable = errors.New("gallon transactions are append-only")

// HistoryGuardPlugin rejects updates to the distribution log, and deletes unless
// the context carries the cascade flag set by employee deletion.
//
// NOTE:
// - Raw SQL and database-level ON DELETE CASCADE bypass this guard.
type HistoryGuardPlugin struct{}

func NewHistoryGuardPlugin() *HistoryGuardPlugin { return &HistoryGuardPlugin{} }

func (p *HistoryGuardPlugin) Name() string { return "history_guard" }

func (p *HistoryGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Update().Before("gorm:update").Register("history_guard:update", historyUpdateCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("history_guard:delete", historyDeleteCallback); err != nil {
		return err
	}
	return nil
}

func historyUpdateCallback(db *gorm.DB) {
	if !touchesHistory(db) {
		return
	}
	db.AddError(ErrHistoryImmutable)
}

func historyDeleteCallback(db *gorm.DB) {
	if !touchesHistory(db) {
		return
	}
	if allowHistoryDelete(db.Statement.Context) {
		return
	}
	db.AddError(ErrHistoryImmutable)
}

func touchesHistory(db *gorm.DB) bool {
	if db == nil || db.Statement == nil {
		return false
	}
	if db.Statement.Table == HistoryTable {
		return true
	}
	return db.Statement.Schema != nil && db.Statement.Schema.Table == HistoryTable
}

func allowHistoryDelete(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, ok := appctx.GetBool(ctx, appctx.ContextKeyAllowHistoryDelete)
	return ok && v
}
