package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Community_Graph/internal/config"
	"Community_Graph/internal/pkg"
	"Community_Graph/internal/repository/mysql"
	"Community_Graph/internal/repository/redis"
	"Community_Graph/internal/router"
	"Community_Graph/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("an error occurred when loading settings")
	}
	pkg.SetSecrets(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret)

	if err := mysql.InitDB(cfg.Database.DSN); err != nil {
		log.Fatal().Err(err).Msg("an error occurred when connecting to database")
	}
	// 自动建表
	if err := mysql.Migrate(mysql.DB); err != nil {
		log.Fatal().Err(err).Msg("an error occurred when migrating database")
	}

	// redis 可选
	var (
		tokens *redis.TokenRepository
		cache  service.BlockCache
	)
	redisOpts := redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	if redisOpts.Enabled() {
		rdb, err := redis.Open(redisOpts)
		if err != nil {
			log.Fatal().Err(err).Msg("an error occurred when connecting to redis")
		}
		defer rdb.Close()
		tokens = redis.NewTokenRepository(rdb)
		cache = redis.NewBlockCacheRepository(rdb)
	} else {
		log.Warn().Msg("redis disabled, token store and block cache are off")
	}

	// kafka 可选，未配置时 outbox 只写日志
	sender := service.Sender(service.LogSender)
	if len(cfg.Kafka.Brokers) > 0 {
		producer := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		defer producer.Close()
		sender = service.KafkaSender(producer)
	}

	visibility := service.NewVisibilityPolicy(mysql.DB, cache)
	deps := router.Deps{
		Users:       service.NewUserService(mysql.DB, tokens),
		Communities: service.NewCommunityService(mysql.DB),
		Members:     service.NewMemberService(mysql.DB, visibility),
		Follows:     service.NewFollowService(mysql.DB, visibility),
		Categories:  service.NewCategoryService(mysql.DB),
		Posts:       service.NewPostService(mysql.DB, visibility),
		Comments:    service.NewCommentService(mysql.DB, visibility),
		Tokens:      tokens,
	}

	// 后台任务
	relayer := service.NewOutboxRelayer(mysql.DB, cfg.Jobs.OutboxBatch, sender)
	reconciler := service.NewFollowCountReconciler(mysql.DB, cfg.Jobs.ReconcileBatch)
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := quartz.AddFunc(every(cfg.Jobs.OutboxEvery), func() { relayer.DrainOnce(context.Background()) }); err != nil {
		log.Fatal().Err(err).Msg("an error occurred when scheduling outbox relay")
	}
	if _, err := quartz.AddFunc(every(cfg.Jobs.ReconcileEvery), func() { reconciler.ReconcileOnce(context.Background()) }); err != nil {
		log.Fatal().Err(err).Msg("an error occurred when scheduling reconciler")
	}
	quartz.Start()

	// Server
	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: router.InitRouter(deps)}
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("an error occurred when running http server")
		}
	}()

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	<-quartz.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
}

func every(d time.Duration) string {
	return fmt.Sprintf("@every %s", d)
}
