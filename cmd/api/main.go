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

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/pkg"
	"yatube/internal/repository/redis"
	"yatube/internal/repository/sqldb"
	"yatube/internal/router"
	"yatube/internal/service"
	"yatube/internal/storage"
)

const AppVersion = "1.0.0"

func main() {
	// Booting screen
	fmt.Println(color.YellowString(" __   __    _         _         \n \\ \\ / /_ _| |_ _  _| |__  ___ \n  \\ V / _` |  _| || | '_ \\/ -_)\n   |_|\\__,_|\\__|\\_,_|_.__/\\___|"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Yatube"), AppVersion)
	fmt.Printf("Short posts, groups and the authors you follow\n")
	color.HiBlack("=====================================================\n")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when loading settings.")
	}
	config.SetupLogger(cfg.Log)
	gin.SetMode(cfg.HTTP.Mode)

	db, err := sqldb.Open(cfg.Database.Dialect, cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connecting to database.")
	}
	if cfg.Database.AutoMigrate {
		if err = sqldb.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
		}
	}

	rdb, err := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connecting to redis.")
	}
	defer rdb.Close()

	pages, err := cache.NewPageCache(cfg.Cache.HomeTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when creating page cache.")
	}
	defer pages.Close()

	images, mediaRoot, err := newImageStore(cfg.Media)
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when configuring image storage.")
	}

	sender := service.LogSender
	if len(cfg.Kafka.Brokers) > 0 {
		producer := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		defer producer.Close()
		sender = service.KafkaSender(producer)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Outbox events go to kafka.")
	} else {
		log.Info().Msg("No kafka brokers configured, outbox events are logged.")
	}

	var mailer pkg.Mailer = pkg.SMTPMailer{Cfg: pkg.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}}
	if cfg.SMTP.Host == "" {
		mailer = logMailer{}
	}

	engine, err := router.InitRouter(router.Deps{
		DB:           db,
		Sessions:     &redis.SessionRepository{RDB: rdb, TTL: cfg.Session.TTL},
		Emails:       &redis.EmailRepository{RDB: rdb},
		Tokens:       pkg.NewTokenIssuer(cfg.Session.Secret, cfg.Session.TTL),
		Mailer:       mailer,
		Pages:        pages,
		Images:       images,
		CookieName:   cfg.Session.CookieName,
		SecureCookie: cfg.Session.Secure,
		MediaRoot:    mediaRoot,
		MediaPrefix:  cfg.Media.URLPrefix,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when building routes.")
	}

	// Configure timed tasks
	relayer := service.NewOutboxRelayer(db, sender, cfg.Outbox.BatchSize, cfg.Outbox.Retention)
	quartz, err := newScheduler(cfg.Outbox.Schedule, func() { relayOutbox(relayer) }, func() { purgeOutbox(relayer) })
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when scheduling outbox jobs.")
	}
	quartz.Start()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP server is listening.")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server stopped unexpectedly.")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed.")
	}
	<-quartz.Stop().Done()
}

// newScheduler runs relay on schedule and purge hourly. A run still in
// progress makes the next tick of the same job a no-op.
func newScheduler(schedule string, relay, purge func()) (*cron.Cron, error) {
	logger := cron.VerbosePrintfLogger(&log.Logger)
	quartz := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))
	if _, err := quartz.AddFunc(schedule, relay); err != nil {
		return nil, fmt.Errorf("outbox schedule %q: %w", schedule, err)
	}
	if _, err := quartz.AddFunc("@every 60m", purge); err != nil {
		return nil, fmt.Errorf("outbox purge schedule: %w", err)
	}
	return quartz, nil
}

func relayOutbox(r *service.OutboxRelayer) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sent, failed, err := r.RelayOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("outbox relay failed")
		return
	}
	if sent+failed > 0 {
		log.Debug().Int("sent", sent).Int("failed", failed).Msg("outbox relayed")
	}
}

func purgeOutbox(r *service.OutboxRelayer) {
	n, err := r.Purge(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("outbox purge failed")
		return
	}
	log.Debug().Int64("deleted", n).Msg("outbox purged")
}

// newImageStore also returns the directory to serve when images stay local.
func newImageStore(cfg config.MediaConfig) (storage.ImageStore, string, error) {
	switch cfg.Backend {
	case "", "local":
		return &storage.LocalStore{Root: cfg.Root, URLPrefix: cfg.URLPrefix}, cfg.Root, nil
	case "s3":
		s, err := storage.NewS3Store(storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Prefix:    cfg.S3Prefix,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
		})
		return s, "", err
	default:
		return nil, "", fmt.Errorf("unknown media backend %q", cfg.Backend)
	}
}

// logMailer stands in for SMTP in development.
type logMailer struct{}

func (logMailer) Send(to, subject, body string) error {
	log.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("mail not sent, smtp is not configured")
	return nil
}
