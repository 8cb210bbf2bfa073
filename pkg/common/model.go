package common

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// History is one remote command issued from the action loop.
type History struct {
	ID        int       `json:"id" gorm:"type:integer;primaryKey;not null;autoIncrement"`
	VM        int       `json:"vm" gorm:"index;not null"`
	Host      string    `json:"host"`
	Action    string    `json:"action" gorm:"not null"`
	Command   string    `json:"command"`
	ExitCode  int       `json:"exit-code"`
	CreatedAt time.Time `json:"created-at"`
}

// Store wraps the history database.
type Store struct {
	*gorm.DB
}

// NewHistoryDB opens dataSource and migrates the history table.
func NewHistoryDB(ctx context.Context, dataSource string) (*Store, error) {
	gormDB, err := GetDB(dataSource)
	if err != nil {
		return nil, err
	}
	gormDB = gormDB.WithContext(ctx)

	// Fix: SQLite "database is locked (5) (SQLITE_BUSY)".
	db, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := gormDB.AutoMigrate(&History{}); err != nil {
		return nil, err
	}
	return &Store{DB: gormDB}, nil
}

// Record saves one history entry, stamping CreatedAt when unset.
func (d *Store) Record(h *History) error {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	return d.DB.Create(h).Error
}

// ListHistory returns the newest entries first. vm <= 0 means every VM, limit <= 0 means no limit.
func (d *Store) ListHistory(vm, limit int) ([]*History, error) {
	list := make([]*History, 0)
	db := d.DB.Order("id desc")
	if vm > 0 {
		db = db.Where("vm = ?", vm)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Close releases the underlying connection.
func (d *Store) Close() error {
	db, err := d.DB.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
