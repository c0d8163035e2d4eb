package persistence

import (
	"context"
	"database/sql"
	"errors"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	otgorm "github.com/smacker/opentracing-gorm"
	_ "modernc.org/sqlite"
)

const (
	DriverMysql  = "mysql"
	DriverSqlite = "sqlite"
)

var ActiveDataSourceManager *DataSourceManager

type DataSourceManager struct {
	gormDB *gorm.DB

	DatabaseConfig *DatabaseConfig
}

func (m *DataSourceManager) Start() error {
	db, err := connect(m.DatabaseConfig)
	if err != nil {
		return err
	}
	m.gormDB = db
	m.gormDB.SetLogger(gorm.Logger{LogWriter: logrus.StandardLogger()})
	if os.Getenv("GIN_MODE") != "release" {
		m.gormDB.LogMode(true)
	}
	otgorm.AddGormCallbacks(m.gormDB)
	return nil
}

func (m *DataSourceManager) Stop() {
	if m.gormDB != nil {
		if err := m.gormDB.Close(); err != nil {
			logrus.Errorf("failed to close DB: %v", err)
		}
		m.gormDB = nil
	}
}

// GormDB returns a fresh session carrying the span found in ctx.
func (m *DataSourceManager) GormDB(ctx context.Context) *gorm.DB {
	if m.gormDB == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return otgorm.SetSpanToGorm(ctx, m.gormDB.New())
}

func (m *DataSourceManager) Dialect() string {
	if m.gormDB == nil {
		return ""
	}
	return m.gormDB.Dialect().GetName()
}

func connect(config *DatabaseConfig) (*gorm.DB, error) {
	if config == nil {
		return nil, errors.New("database config is missing")
	}
	switch config.DriverType {
	case DriverSqlite:
		sqlDB, err := sql.Open(DriverSqlite, config.DriverArgs)
		if err != nil {
			return nil, err
		}
		// one connection keeps in-memory databases alive and serializes writers
		sqlDB.SetMaxOpenConns(1)
		db, err := gorm.Open("sqlite3", sqlDB)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		if err := db.DB().Ping(); err != nil {
			return nil, err
		}
		return db, nil
	default:
		db, err := gorm.Open(config.DriverType, config.DriverArgs)
		if err != nil {
			return nil, err
		}
		if err := db.DB().Ping(); err != nil {
			return nil, err
		}
		return db, nil
	}
}

// ForUpdate locks selected rows until the transaction ends. Only MySQL supports
// the clause; sqlite serializes writers anyway.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialect().GetName() == DriverMysql {
		return tx.Set("gorm:query_option", "FOR UPDATE")
	}
	return tx
}
