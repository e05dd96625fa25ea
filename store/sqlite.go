package store

import (
	"os"
	"path/filepath"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"martech/model"
)

const insertBatchSize = 500

// SQLiteStore loads the unified touchpoint table into a sqlite database and
// reads it back for reporting. Each run replaces the table wholesale; the
// core never does incremental writes.
type SQLiteStore struct {
	db        *gorm.DB
	tableName string
}

func NewSQLiteStore(dbPath, tableName string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create database directory %s", dir)
		}
	}

	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database %s", dbPath)
	}
	db.LogMode(false)

	return &SQLiteStore{db: db, tableName: tableName}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReplaceTouchpoints drops and recreates the table, then inserts every row
// in insertion order inside batched transactions.
func (s *SQLiteStore) ReplaceTouchpoints(touchpoints []model.Touchpoint) error {
	if err := s.db.DropTableIfExists(s.tableName).Error; err != nil {
		return errors.Wrapf(err, "failed to drop table %s", s.tableName)
	}
	if err := s.db.Table(s.tableName).CreateTable(&model.Touchpoint{}).Error; err != nil {
		return errors.Wrapf(err, "failed to create table %s", s.tableName)
	}

	for start := 0; start < len(touchpoints); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(touchpoints) {
			end = len(touchpoints)
		}

		tx := s.db.Begin()
		if tx.Error != nil {
			return errors.Wrap(tx.Error, "failed to begin insert transaction")
		}
		for i := start; i < end; i++ {
			if err := tx.Table(s.tableName).Create(&touchpoints[i]).Error; err != nil {
				tx.Rollback()
				return errors.Wrapf(err, "failed to insert touchpoint row %d", i)
			}
		}
		if err := tx.Commit().Error; err != nil {
			return errors.Wrap(err, "failed to commit insert transaction")
		}
	}

	log.WithFields(log.Fields{"table": s.tableName,
		"rows": len(touchpoints)}).Info("Loaded touchpoints into sqlite.")
	return nil
}

// ReadTouchpoints returns the stored table in insertion order.
func (s *SQLiteStore) ReadTouchpoints() ([]model.Touchpoint, error) {
	var touchpoints []model.Touchpoint
	if err := s.db.Table(s.tableName).Find(&touchpoints).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to read table %s", s.tableName)
	}
	return touchpoints, nil
}
