package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/events"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/redisx"
	infraRepo "app/internal/infra/repository"
	"app/internal/invoice"
	"app/internal/metrics"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	//.envはあれば読む（本番は環境変数のみ）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config load failed")
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.Post{},
		&model.Category{},
	); err != nil {
		log.WithError(err).Fatal("db migrate failed")
	}

	//セッションカート用Redis
	rdb, err := redisx.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("redis connect failed")
	}

	//Repository生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	postRepo := infraRepo.NewPostGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	cartStore := infraRepo.NewCartRedisStore(rdb)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//注文イベント（broker未設定なら無効）
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic,
			log.WithField("component", "events"))
		defer kp.Close()
		publisher = kp
	} else {
		log.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	orderMetrics := metrics.NewOrderMetrics()

	//JWT issuer
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 15 * time.Minute,
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, issuer, 12, log.WithField("component", "auth"))
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartStore, productRepo, log.WithField("component", "cart"))
	orderUC := usecase.NewOrderUsecase(txManager, cartStore, publisher, orderMetrics,
		log.WithField("component", "order"))
	postUC := usecase.NewPostUsecase(postRepo)
	adminUC := usecase.NewAdminUsecase(productRepo, userRepo, orderRepo,
		log.WithField("component", "admin"))

	//Handler生成
	h := server.Handlers{
		Auth:    handler.NewAuthHandler(authUC),
		Product: handler.NewProductHandler(productUC),
		Cart:    handler.NewCartHandler(cartUC),
		Order:   handler.NewOrderHandler(orderUC, invoice.NewRenderer()),
		Post:    handler.NewPostHandler(postUC),
		Admin:   handler.NewAdminHandler(adminUC),
	}

	e := server.New(cfg, h, log)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	log.WithField("addr", addr).Info("server starting")
	if err := server.Start(e, addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
