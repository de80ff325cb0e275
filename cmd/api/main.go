package main

import (
	"deliveryboard/internal/config"
	"deliveryboard/internal/domain/model"
	"deliveryboard/internal/handler"
	"deliveryboard/internal/infra/db"
	infraRepo "deliveryboard/internal/infra/repository"
	"deliveryboard/internal/notify"
	"deliveryboard/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	//.envはあれば読む（本番は環境変数だけでよい）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.GoEnv == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.Order{},
		&model.OrderLineItem{},
		&model.StatusEvent{},
	); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	itemRepo := infraRepo.NewOrderLineItemGormRepository(gormDB)
	eventRepo := infraRepo.NewStatusEventGormRepository(gormDB)
	tx := infraRepo.NewTxManagerGorm(gormDB)

	//通知は撃ちっぱなし（失敗してもログだけ）
	dispatcher := notify.NewDispatcher(cfg.WebhookURL, cfg.WebhookTenantID, logger)

	//Usecase生成
	boardUC := usecase.NewBoardUsecase(tx, orderRepo, itemRepo, eventRepo, dispatcher)
	detailUC := usecase.NewOrderDetailUsecase(boardUC, tx, orderRepo, itemRepo, eventRepo, dispatcher)

	//Handler生成
	e := echo.New()
	e.HideBanner = true

	handler.NewBoardHandler(boardUC).RegisterRoutes(e, cfg)
	handler.NewOrderHandler(boardUC, detailUC).RegisterRoutes(e, cfg)

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	logger.Info("starting", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
