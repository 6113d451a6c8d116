package mysql

import (
	"database/sql"
	"fmt"
	"time"

	mysqlDriver "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/ninja0404/trade-journal/pkg/logger"
)

type Wrapper struct {
	db     *gorm.DB
	sqldb  *sql.DB
	config *Config
}

type Config struct {
	Name     string `yaml:"name" json:"name" toml:"name"`
	User     string `yaml:"user" json:"user" toml:"user"`
	Password string `yaml:"password" json:"password" toml:"password"`
	Host     string `yaml:"host" json:"host" toml:"host"`
	Port     int    `yaml:"port" json:"port" toml:"port"`
	Database string `yaml:"database" json:"database" toml:"database"`

	Timeout string `yaml:"timeout" json:"timeout" toml:"timeout"` // connect timeout

	MaxPoolSize     int           `yaml:"max_pool_size" json:"max_pool_size" toml:"max_pool_size"`
	MaxIdleSize     int           `yaml:"max_idle_size" json:"max_idle_size" toml:"max_idle_size"`
	MaxIdleDuration time.Duration `yaml:"max_idle_ts" json:"max_idle_ts" toml:"max_idle_ts"`
	SqlOpenDebug    bool          `yaml:"open_debug" json:"open_debug" toml:"open_debug"`
	LogLevel        string        `yaml:"log_level" json:"log_level" toml:"log_level"`
}

func createDatabase(srcConf *Config) (*Wrapper, error) {
	cnf := validateConfig(srcConf)
	dsn := getDsn(cnf)

	gormConfig := gorm.Config{
		Logger: NewGormLogger(logger.Named("mysql"), mappingLoggerLevel(cnf.LogLevel, cnf.SqlOpenDebug)),
	}

	db, err := gorm.Open(mysqlDriver.Open(dsn), &gormConfig)
	if err != nil {
		return nil, err
	}

	sqldb, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(cnf.MaxPoolSize)
	sqldb.SetMaxIdleConns(cnf.MaxIdleSize)
	sqldb.SetConnMaxIdleTime(cnf.MaxIdleDuration)

	if err = sqldb.Ping(); err != nil {
		return nil, err
	}

	return &Wrapper{
		db:     db,
		sqldb:  sqldb,
		config: cnf,
	}, nil
}

func validateConfig(cnf *Config) *Config {
	if cnf.Timeout == "" {
		cnf.Timeout = "10s"
	}
	if cnf.MaxPoolSize <= 0 {
		cnf.MaxPoolSize = 20
	}
	if cnf.MaxIdleSize <= 0 {
		cnf.MaxIdleSize = 5
	}
	if cnf.MaxIdleDuration <= 0 {
		cnf.MaxIdleDuration = 10 * time.Minute
	}
	return cnf
}

func getDsn(cnf *Config) string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%s",
		cnf.User, cnf.Password, cnf.Host, cnf.Port, cnf.Database, cnf.Timeout,
	)
}
