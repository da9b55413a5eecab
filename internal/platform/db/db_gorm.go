// Package db opens the PostgreSQL connection used by all repositories.
package db

import (
	"fmt"
	"log"
	"os"
	"time"

	gpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	catalogadapters "strategy_backend/internal/feature/catalog/adapters"
	memberentity "strategy_backend/internal/feature/member/domain/entity"
	strategyadapters "strategy_backend/internal/feature/strategy/adapters"
)

func OpenDB() *gorm.DB {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	name := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, pass, name)

	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		db, err = gorm.Open(gpostgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := db.AutoMigrate(
			&memberentity.Member{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
		// カタログテーブルはモデルを共有するためテーブル単位でマイグレーション
		if err := catalogadapters.Migrate(db); err != nil {
			log.Fatalf("failed to migrate catalog tables: %v", err)
		}
		if err := strategyadapters.Migrate(db); err != nil {
			log.Fatalf("failed to migrate strategy tables: %v", err)
		}
	}

	return db
}
