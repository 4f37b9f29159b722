package database

import (
	"sync"

	"gorm.io/gorm"
)

var (
	db   *gorm.DB
	dbMu sync.RWMutex
)

// GetDB returns the global connection set up by SetupDatabase.
func GetDB() *gorm.DB {
	dbMu.RLock()
	defer dbMu.RUnlock()
	return db
}

// SetDB installs the global connection.
func SetDB(conn *gorm.DB) {
	dbMu.Lock()
	defer dbMu.Unlock()
	db = conn
}
