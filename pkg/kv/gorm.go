package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const migrateLockID int64 = 51732117

// PostgresStore keeps entries in a Postgres table through GORM.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore opens the DB and migrates the entries table.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&EntryModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

// withMigrationLock keeps concurrent processes from migrating at the same time.
func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

func gormGet(tx *gorm.DB, key string) (string, bool, error) {
	var model EntryModel
	if err := tx.First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return model.Value, true, nil
}

func gormSet(tx *gorm.DB, key, value string) error {
	model := EntryModel{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

func gormRemove(tx *gorm.DB, key string) error {
	if err := tx.Delete(&EntryModel{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("postgres remove %s: %w", key, err)
	}
	return nil
}

// Get returns the value stored under key.
func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	return gormGet(s.db.WithContext(ctx), key)
}

// Set upserts key.
func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	return gormSet(s.db.WithContext(ctx), key, value)
}

// Remove deletes key.
func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	return gormRemove(s.db.WithContext(ctx), key)
}

// Update runs fn in a transaction that first takes a transaction-scoped
// advisory lock per key, so overlapping updates queue behind each other even
// when the rows do not exist yet.
func (s *PostgresStore) Update(ctx context.Context, keys []string, fn func(Txn) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, k := range sortedUnique(keys) {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", k).Error; err != nil {
				return fmt.Errorf("lock %s: %w", k, err)
			}
		}
		txn := newStaged(func(key string) (string, bool, error) {
			return gormGet(tx, key)
		})
		if err := fn(txn); err != nil {
			return err
		}
		for _, k := range txn.keys() {
			w := txn.writes[k]
			var err error
			if w.deleted {
				err = gormRemove(tx, k)
			} else {
				err = gormSet(tx, k, w.value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
