package common

import (
	"context"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultDB is the history store opened by InitStorage.
var DefaultDB *Store

// InitStorage initializes database storage.
func InitStorage(ctx context.Context) error {
	dataSource := GetDataSource()
	if err := os.MkdirAll(filepath.Dir(dataSource), 0755); err != nil {
		return err
	}

	store, err := NewHistoryDB(ctx, dataSource)
	if err != nil {
		return err
	}
	DefaultDB = store
	return nil
}

// GetDataSource returns the sqlite file path under the config dir.
func GetDataSource() string {
	return filepath.Join(CfgPath, DBFile)
}

// GetDB open and returns database.
func GetDB(dataSource string) (*gorm.DB, error) {
	config := &gorm.Config{}
	if !Debug {
		config.Logger = logger.Default.LogMode(logger.Silent)
	}
	return gorm.Open(sqlite.Open(dataSource), config)
}
