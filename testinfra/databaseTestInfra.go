package testinfra

import (
	"context"
	"fmt"
	"os"
	"skillbridge/persistence"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TestDatabase struct {
	TestDatabaseName string
	DS               *persistence.DataSourceManager
}

// StartTestDatabase opens an isolated in-memory sqlite database, or a fresh MySQL
// database when TEST_MYSQL_SERVICE is set, e.g. root:root@(127.0.0.1:3306)
func StartTestDatabase(baseName string) *TestDatabase {
	databaseName := baseName + "_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	config := &persistence.DatabaseConfig{
		DriverType: persistence.DriverSqlite, DriverArgs: "file:" + databaseName + "?mode=memory&cache=shared",
	}
	if mysqlSvc := os.Getenv("TEST_MYSQL_SERVICE"); mysqlSvc != "" {
		config = &persistence.DatabaseConfig{
			DriverType: persistence.DriverMysql,
			DriverArgs: mysqlSvc + "/" + databaseName + "?charset=utf8mb4&parseTime=True&loc=Local&timeout=5s",
		}
		if err := persistence.PrepareMysqlDatabase(config.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare test database %s: %v", databaseName, err)
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: config}
	if err := ds.Start(); err != nil {
		ds.Stop()
		logrus.Fatalf("test database connection failed %v", err)
	}
	return &TestDatabase{TestDatabaseName: databaseName, DS: ds}
}

// Migrate creates the tables of models.
func (d *TestDatabase) Migrate(models ...interface{}) error {
	if err := d.DS.GormDB(context.Background()).AutoMigrate(models...).Error; err != nil {
		return fmt.Errorf("migrate %s: %w", d.TestDatabaseName, err)
	}
	return nil
}

func StopTestDatabase(testDatabase *TestDatabase) {
	if testDatabase == nil || testDatabase.DS == nil {
		return
	}
	if testDatabase.DS.DatabaseConfig.DriverType == persistence.DriverMysql {
		if db := testDatabase.DS.GormDB(context.Background()); db != nil {
			if err := db.Exec("DROP DATABASE " + testDatabase.TestDatabaseName).Error; err != nil {
				logrus.Warnf("failed to drop test database %s: %v", testDatabase.TestDatabaseName, err)
			}
		}
	}
	// closing the last connection discards the in-memory sqlite database
	testDatabase.DS.Stop()
}
