package database

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config describes the database connection, read from the DB_* variables.
type Config struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// LoadConfig reads the connection settings. DB_PORT defaults per driver.
func LoadConfig() Config {
	driver := env.GetEnv("DB_DRIVER", DriverMySQL)
	defaultPort := "3306"
	if driver == DriverPostgres {
		defaultPort = "5432"
	}
	return Config{
		Driver:   driver,
		Host:     env.GetEnv("DB_HOST", "127.0.0.1"),
		Port:     env.GetEnv("DB_PORT", defaultPort),
		User:     env.GetEnv("DB_USER", ""),
		Password: env.GetEnv("DB_PASSWORD", ""),
		Name:     env.GetEnv("DB_NAME", ""),
	}
}

// DSN returns the driver specific data source name used by GORM.
// clientFoundRows makes MySQL report matched rows, so an update that
// writes identical values is not mistaken for a missing row.
func (c Config) DSN() string {
	if c.Driver == DriverPostgres {
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.Host, c.User, c.Password, c.Name, c.Port)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// MigrateURL returns the URL golang-migrate expects for the same database.
func (c Config) MigrateURL() string {
	if c.Driver == DriverPostgres {
		return fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=disable", c.User, c.Password, c.Host, c.Port, c.Name)
	}
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true", c.User, c.Password, c.Host, c.Port, c.Name)
}

// MigrationsSource returns the migration directory for the configured driver.
func (c Config) MigrationsSource() string {
	if c.Driver == DriverPostgres {
		return "file://migrations/postgres"
	}
	return "file://migrations/mysql"
}

func (c Config) dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case DriverMySQL:
		return mysql.New(mysql.Config{
			DSN:                       c.DSN(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), nil
	case DriverPostgres:
		return postgres.Open(c.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.Driver)
	}
}

// Open connects with retries. Containers often start the app before the database accepts connections.
func Open(cfg Config) (*gorm.DB, error) {
	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{}
	if !env.IsDev() {
		gormConfig.Logger = logger.Default.LogMode(logger.Warn)
	}

	var db *gorm.DB
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(dialector, gormConfig)
		if err == nil {
			return db, nil
		}

		log.Warnf("[Database] Failed to connect (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Infof("[Database] Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}
	return nil, err
}

// SetupDatabase opens the global connection. In development the schema is
// auto-migrated; other environments rely on the SQL migrations.
func SetupDatabase() {
	db, err := Open(LoadConfig())
	if err != nil {
		panic(err)
	}
	if env.IsDev() {
		if err := db.AutoMigrate(models.All()...); err != nil {
			log.Errorf("[Database] Auto-migration failed: %v", err)
		}
	}
	SetDB(db)
}
