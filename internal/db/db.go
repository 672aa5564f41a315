package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"contentvault/internal/models"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// duplicate-key errors must surface as gorm.ErrDuplicatedKey for
		// the slug insert-retry to work
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate creates one table per content type, all sharing the ContentItem
// shape. The unique index on slug is per table.
func Migrate(gdb *gorm.DB) error {
	for _, t := range models.AllTypes() {
		if err := gdb.Table(t.Table()).AutoMigrate(&models.ContentItem{}); err != nil {
			return err
		}
	}
	return nil
}
