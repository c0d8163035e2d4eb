package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

type DatabaseConfig struct {
	DriverType string `env:"DB_DRIVER" envDefault:"sqlite"`
	DriverArgs string `env:"DB_ARGS" envDefault:"file:skillbridge.db?_pragma=busy_timeout(5000)"`
}

func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	c := DatabaseConfig{}
	if err := env.Parse(&c); err != nil {
		return nil, err
	}
	if err := c.Normalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Normalize lower-cases the driver type and rejects unsupported settings.
func (c *DatabaseConfig) Normalize() error {
	c.DriverType = strings.ToLower(strings.TrimSpace(c.DriverType))
	if c.DriverType != DriverMysql && c.DriverType != DriverSqlite {
		return fmt.Errorf("unsupported database driver '%s'", c.DriverType)
	}
	if c.DriverArgs == "" {
		return errors.New("database driver args is empty")
	}
	return nil
}

// PrepareMysqlDatabase creates the database named in driverArgs if it is missing.
func PrepareMysqlDatabase(driverArgs string) error {
	cfg, err := mysql.ParseDSN(driverArgs)
	if err != nil {
		return err
	}
	databaseName := cfg.DBName
	if databaseName == "" {
		return errors.New("database name is missing in driver args")
	}
	cfg.DBName = ""

	db, err := sql.Open(DriverMysql, cfg.FormatDSN())
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logrus.Warnf("failed to close database preparing connection: %v", err)
		}
	}()

	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS `" + databaseName + "` DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci")
	if err != nil {
		return err
	}
	logrus.Infof("database %s is ready", databaseName)
	return nil
}
