package main

import (
	"log"
	"os"
	"time"

	"strategy_backend/internal/app/router"
	catalogadapters "strategy_backend/internal/feature/catalog/adapters"
	cataloghandler "strategy_backend/internal/feature/catalog/transport/handler"
	catalogusecase "strategy_backend/internal/feature/catalog/usecase"
	memberadapters "strategy_backend/internal/feature/member/adapters"
	authhandler "strategy_backend/internal/feature/member/transport/handler"
	memberusecase "strategy_backend/internal/feature/member/usecase"
	strategyadapters "strategy_backend/internal/feature/strategy/adapters"
	strategyhandler "strategy_backend/internal/feature/strategy/transport/handler"
	strategyusecase "strategy_backend/internal/feature/strategy/usecase"
	"strategy_backend/internal/platform/cache"
	platformdb "strategy_backend/internal/platform/db"
	jwtmw "strategy_backend/internal/platform/jwt"
	platformredis "strategy_backend/internal/platform/redis"
	"strategy_backend/internal/platform/session"
)

const (
	accessTokenTTL  = 15 * time.Minute
	catalogCacheTTL = 5 * time.Minute
)

func main() {
	// db
	db := platformdb.OpenDB()

	// Redis（リフレッシュセッションの保存に必須）
	rdb, err := platformredis.NewRedisClient()
	if err != nil {
		log.Fatal("Redis is required for refresh sessions: ", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Println("[ERROR] Failed to close Redis client:", err)
		}
	}()

	// JWT_SECRETチェック（開発中の注意喚起）
	secret := os.Getenv(jwtmw.EnvKeyJWTSecret)
	if secret == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}
	tokenGen := jwtmw.NewGenerator(secret, accessTokenTTL)

	// Repository
	memberRepo := memberadapters.NewMemberRepository(db)
	sessionRepo := session.NewSessionRedis(rdb, "session")
	tradingTypeRepo := catalogadapters.NewTradingTypeRepository(db)
	assetClassRepo := catalogadapters.NewAssetClassRepository(db)
	strategyRepo := strategyadapters.NewStrategyRepository(db)

	// Redisキャッシュでラップ（一覧・詳細の読み取りのみ）
	cachedTradingTypes := cache.NewCachingCatalogRepository(rdb, catalogCacheTTL, tradingTypeRepo, "catalog:trading-types")
	cachedAssetClasses := cache.NewCachingCatalogRepository(rdb, catalogCacheTTL, assetClassRepo, "catalog:asset-classes")

	// Usecase
	authUC := memberusecase.NewAuthUsecase(memberRepo, sessionRepo, tokenGen)
	tradingTypeUC := catalogusecase.NewCatalogUsecase(cachedTradingTypes)
	assetClassUC := catalogusecase.NewCatalogUsecase(cachedAssetClasses)
	strategyUC := strategyusecase.NewStrategyUsecase(strategyRepo, tradingTypeUC, assetClassUC)

	// Handler
	authH := authhandler.NewAuthHandler(authUC)
	tradingTypeH := cataloghandler.NewCatalogHandler(tradingTypeUC, "trading-types")
	assetClassH := cataloghandler.NewCatalogHandler(assetClassUC, "investment-asset-classes")
	strategyH := strategyhandler.NewStrategyHandler(strategyUC)

	// ルータ生成
	r := router.NewRouter(authH, tradingTypeH, assetClassH, strategyH)

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
