package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	mysqlDriver "gorm.io/driver/mysql"
	"gorm.io/gorm"

	httpAdapter "github.com/EthanQC/auth-center/internal/adapters/in/http"
	wsAdapter "github.com/EthanQC/auth-center/internal/adapters/in/ws"
	kafkaAdapter "github.com/EthanQC/auth-center/internal/adapters/out/kafka"
	mysqlRepo "github.com/EthanQC/auth-center/internal/adapters/out/mysql"
	redisRepo "github.com/EthanQC/auth-center/internal/adapters/out/redis"
	authApp "github.com/EthanQC/auth-center/internal/application/auth"
	svc "github.com/EthanQC/auth-center/internal/application/service"
	"github.com/EthanQC/auth-center/internal/config"
	"github.com/EthanQC/auth-center/internal/domain/entity"
	"github.com/EthanQC/auth-center/pkg/jwt"
	"github.com/EthanQC/auth-center/pkg/zlog"
)

func main() {
	cfgPath := flag.String("config", "configs/dev/auth_center.yaml", "配置文件路径（YAML）")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zlog.MustInitGlobal(cfg.Log)
	zlog.RegisterMetrics(prometheus.DefaultRegisterer)
	defer func() { _ = zap.L().Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// MySQL
	db, err := gorm.Open(mysqlDriver.Open(cfg.Mysql.DSN), &gorm.Config{})
	if err != nil {
		zap.L().Fatal("连接 MySQL 失败", zap.Error(err))
	}
	if err := db.AutoMigrate(&entity.User{}, &entity.RefreshTokenRecord{}); err != nil {
		zap.L().Fatal("迁移表结构失败", zap.Error(err))
	}

	// Redis
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		zap.L().Fatal("连接 Redis 失败", zap.Error(err))
	}

	// JWT 管理器
	jwtMgr, err := jwt.NewManager(cfg.JWT.Keys, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	if err != nil {
		zap.L().Fatal("初始化 JWT 管理器失败", zap.Error(err))
	}

	// 出站适配器
	revocationStore := redisRepo.NewRevocationStoreRedis(rdb)
	sessionIndex := redisRepo.NewSessionIndexRedis(rdb)
	refreshRepo := mysqlRepo.NewRefreshTokenRepoMysql(db)
	userRepo := mysqlRepo.NewUserRepositoryMySQL(db)

	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(cfg.Kafka.Brokers...),
		Topic:    cfg.Kafka.Topic,
		Balancer: &kafkago.Hash{},
	}
	defer writer.Close()
	publisher := kafkaAdapter.NewKafkaPublisher(writer)

	// 会话注册表与广播器
	registry := svc.NewSessionRegistry(cfg.Session.MaxPerUser, sessionIndex, cfg.JWT.RefreshTTL)
	broadcaster := svc.NewBroadcaster(registry)

	// 认证用例
	genUC := authApp.NewGenerateTokenUseCase(refreshRepo, jwtMgr)
	refreshUC := authApp.NewRefreshTokenUseCase(genUC, refreshRepo, revocationStore, registry, publisher, jwtMgr, cfg.JWT.RefreshTTL)
	revokeUC := authApp.NewRevokeTokenUseCase(refreshRepo, revocationStore, registry, publisher, jwtMgr, cfg.JWT.RefreshTTL)
	verifyUC := authApp.NewVerifyTokenUseCase(revocationStore, jwtMgr)
	authUC := authApp.NewDefaultAuthUseCase(userRepo, publisher, genUC, refreshUC, revokeUC, verifyUC)

	// 其它节点的强制下线事件
	consumer := kafkaAdapter.NewEvictConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, registry)
	go func() {
		if err := consumer.Run(ctx); err != nil {
			zap.L().Error("事件消费退出", zap.Error(err))
		}
	}()

	// HTTP + WebSocket
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), zlog.GinLogger())

	httpAdapter.NewAuthHandler(authUC, broadcaster).RegisterRoutes(r)
	r.GET("/ws", wsAdapter.NewServer(authUC, registry).Handle)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Any("/log/level", gin.WrapF(zlog.LevelHTTPHandler()))
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: r,
	}

	go func() {
		zap.L().Info("HTTP 服务启动", zap.Int("port", cfg.Server.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP 服务失败", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("收到退出信号，开始优雅关闭")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP 关闭失败", zap.Error(err))
	}
	zap.L().Info("服务已退出")
}
