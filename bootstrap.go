package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"harvest/internal/config"
	"harvest/internal/services"
	"harvest/pkg/lock"
	"harvest/pkg/mailer"
	"harvest/pkg/nomod"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// orderLockTTL bounds how long a crashed holder keeps an order locked.
const orderLockTTL = 30 * time.Second

// openDatabase opens the configured database.
func openDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// SQLite allows a single writer.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	log.Printf("Connected to %s database", driver)
	return db, nil
}

// buildLocker returns a Redis lock shared by every instance when REDIS_ADDR
// is set, and an in-process lock otherwise.
func buildLocker(cfg *config.Config) (lock.Locker, func(), error) {
	if cfg.RedisAddr == "" {
		log.Println("REDIS_ADDR not set, using in-process order locks")
		return lock.NewKeyedMutex(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	log.Printf("Using redis order locks at %s", cfg.RedisAddr)
	return lock.NewRedisLocker(client, "harvest:lock:", orderLockTTL), func() { client.Close() }, nil
}

// buildGateway returns the Nomod client, or fake links outside production
// when no API key is configured.
func buildGateway(cfg *config.Config) (services.PaymentGateway, error) {
	if cfg.NomodAPIKey != "" {
		return nomod.NewClient(cfg.NomodBaseURL, cfg.NomodAPIKey, cfg.NomodTimeout), nil
	}
	if cfg.IsProduction() {
		return nil, errors.New("NOMOD_API_KEY is required in production")
	}
	return nomod.NewFakeClient(cfg.FrontendURL), nil
}

func buildMailer(cfg *config.Config) mailer.Mailer {
	if cfg.SMTPHost == "" {
		return mailer.NewLogMailer()
	}
	return mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.FromEmail,
		Timeout:  cfg.SMTPTimeout,
	})
}
