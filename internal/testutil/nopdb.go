// Package testutil holds helpers shared by package tests.
package testutil

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const nopDriverName = "telehealth-nop"

var registerOnce sync.Once

// NewGormDB returns a gorm handle whose connections accept BEGIN, COMMIT and
// ROLLBACK and reject every statement. It lets usecases that open
// transactions run against fake repositories.
func NewGormDB(t testing.TB) *gorm.DB {
	t.Helper()
	registerOnce.Do(func() { sql.Register(nopDriverName, nopDriver{}) })

	sqlDB, err := sql.Open(nopDriverName, "")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db
}

var errNoStatements = errors.New("nop driver executes no statements")

type nopDriver struct{}

func (nopDriver) Open(string) (driver.Conn, error) { return nopConn{}, nil }

type nopConn struct{}

func (nopConn) Prepare(string) (driver.Stmt, error) { return nil, errNoStatements }
func (nopConn) Close() error                        { return nil }
func (nopConn) Begin() (driver.Tx, error)           { return nopTx{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }
