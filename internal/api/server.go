package api

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/SundayYogurt/logistics_service/config"
	"github.com/SundayYogurt/logistics_service/infra/queue"
	"github.com/SundayYogurt/logistics_service/internal/clients/kavenegar"
	"github.com/SundayYogurt/logistics_service/internal/helper"
	"github.com/SundayYogurt/logistics_service/internal/interfaces"
	"github.com/SundayYogurt/logistics_service/internal/rate"
	"github.com/SundayYogurt/logistics_service/internal/repository"
	"github.com/SundayYogurt/logistics_service/internal/services"
	"github.com/SundayYogurt/logistics_service/pkg/clock"
	"github.com/SundayYogurt/logistics_service/pkg/cloudinary"
	"github.com/SundayYogurt/logistics_service/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fixed id shared by every replica so only one runs migrations at a time
const migrateLockID int64 = 20260222

func StartServer(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------- DB ----------
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	log.Info("database connected")

	if err := migrate(db); err != nil {
		return err
	}
	log.Info("migration successful")

	// ---------- Infra ----------
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var producer interfaces.ProducerHandler
	var kafkaProducer *queue.Producer
	if cfg.KafkaBroker != "" {
		kafkaProducer = queue.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic, kafkaCredentials(cfg), log)
		defer kafkaProducer.Close()
		producer = kafkaProducer
		log.Info("kafka producer ready", zap.String("broker", cfg.KafkaBroker), zap.String("topic", cfg.KafkaTopic))
	} else {
		log.Warn("KAFKA_BROKER not set, domain events are not published")
	}

	limiter, err := otpLimiter(ctx, cfg, log)
	if err != nil {
		return err
	}
	blobs, err := blobStore(cfg, log)
	if err != nil {
		return err
	}

	var sms interfaces.SMSGateway = services.LogSMSGateway{Log: log}
	if cfg.KavenegarAPIKey != "" {
		sms = kavenegar.New(cfg.KavenegarAPIKey, cfg.KavenegarTemplate)
	} else {
		log.Warn("KAVENEGAR_API_KEY not set, otp codes are only logged")
	}

	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	// ---------- Service ----------
	svc := NewServices(Infra{
		Store:        repository.NewStore(db),
		Clock:        clock.Real(),
		Log:          log,
		Registry:     registry,
		Producer:     producer,
		Limiter:      limiter,
		Blobs:        blobs,
		SMS:          sms,
		Auth:         helper.SetupAuth(cfg.JWTSecret, cfg.TokenTTL),
		MediaBaseURL: cfg.MediaBaseURL,
		MaxWidth:     cfg.MediaMaxWidth,
	})

	if cfg.BootstrapAdminPhone != "" {
		if _, err := svc.Users.BootstrapOwner(ctx, cfg.BootstrapAdminPhone); err != nil {
			return fmt.Errorf("bootstrap owner: %w", err)
		}
	}

	if cfg.KafkaBroker != "" {
		consumer := queue.NewKafkaConsumer(cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaGroupID, kafkaCredentials(cfg), svc.Audit, log)
		go consumer.Listen(ctx)
	}

	// ---------- Handler ----------
	app := NewApp(svc, AppOptions{
		AllowOrigins: cfg.BaseURL,
		MediaRoot:    localMediaRoot(cfg),
		Registry:     registry,
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	}()

	// ---------- Listen ----------
	log.Info("listening", zap.String("addr", cfg.ServerPort))
	return app.Listen(cfg.ServerPort)
}

func migrate(db *gorm.DB) error {
	if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
		return fmt.Errorf("migration lock: %w", err)
	}
	defer db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID)

	if err := repository.Migrate(db); err != nil {
		return fmt.Errorf("migration: %w", err)
	}
	if err := repository.NewRoleRepository(db).EnsureDefaults(); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	return nil
}

func kafkaCredentials(cfg config.Config) queue.Credentials {
	return queue.Credentials{Username: cfg.KafkaUsername, Password: cfg.KafkaPassword}
}

func otpLimiter(ctx context.Context, cfg config.Config, log *zap.Logger) (rate.Limiter, error) {
	if cfg.RedisURL == "" {
		log.Info("otp rate limiter in memory", zap.Int("limit", cfg.OTPRateLimit), zap.Duration("window", cfg.OTPRateWindow))
		return rate.NewMemory(cfg.OTPRateLimit, cfg.OTPRateWindow), nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// the limiter fails open, keep serving logins
		log.Warn("redis unreachable at startup", zap.Error(err))
	}
	log.Info("otp rate limiter on redis", zap.Int("limit", cfg.OTPRateLimit), zap.Duration("window", cfg.OTPRateWindow))
	return rate.NewRedisLimiter(client, cfg.OTPRateLimit, cfg.OTPRateWindow, ""), nil
}

func blobStore(cfg config.Config, log *zap.Logger) (interfaces.BlobStore, error) {
	if cfg.CloudinaryUrl != "" {
		cld, err := cloudinary.New(cfg.CloudinaryUrl)
		if err != nil {
			return nil, fmt.Errorf("cloudinary init: %w", err)
		}
		log.Info("media stored on cloudinary")
		return cloudinary.NewBlobStore(cld), nil
	}

	local, err := storage.NewLocalStore(cfg.MediaRoot)
	if err != nil {
		return nil, err
	}
	log.Info("media stored on local disk", zap.String("root", cfg.MediaRoot))
	return local, nil
}

func localMediaRoot(cfg config.Config) string {
	if cfg.CloudinaryUrl != "" {
		return ""
	}
	return cfg.MediaRoot
}
