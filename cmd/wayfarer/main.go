package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	bookingsapp "wayfarer/internal/app/bookings"
	catalogapp "wayfarer/internal/app/catalog"
	imagesapp "wayfarer/internal/app/images"
	"wayfarer/internal/app/policies"
	reviewsapp "wayfarer/internal/app/reviews"
	authsvc "wayfarer/internal/app/services/auth"
	domainbooking "wayfarer/internal/domain/booking"
	domaincatalog "wayfarer/internal/domain/catalog"
	domainimages "wayfarer/internal/domain/images"
	domainreviews "wayfarer/internal/domain/reviews"
	domainuser "wayfarer/internal/domain/user"
	"wayfarer/internal/infra/broker/kafka"
	"wayfarer/internal/infra/config"
	mongostore "wayfarer/internal/infra/db/mongo"
	ginserver "wayfarer/internal/infra/http/gin"
	"wayfarer/internal/infra/obs"
	"wayfarer/internal/infra/security"
	"wayfarer/internal/infra/storage/memory"
	redisstore "wayfarer/internal/infra/storage/redis"
	"wayfarer/internal/infra/storage/s3"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, cleanup, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	ready    func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, func(), error) {
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var (
		items        domaincatalog.Stores
		destinations domaincatalog.DestinationRepository
		reviewsRepo  domainreviews.Repository
		bookingsRepo domainbooking.Repository
		imagesRepo   domainimages.Repository
		usersRepo    domainuser.Repository
		ready        = func() error { return nil }
	)

	if cfg.MongoURI != "" {
		client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			cleanup()
			return application{}, nil, err
		}
		cleanups = append(cleanups, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Warn("mongo disconnect failed", "error", err)
			}
		})

		items = mongostore.NewItemStores(client.DB)
		destinations = mongostore.NewDestinationRepository(client.DB)
		reviewRepo := mongostore.NewReviewRepository(client.DB)
		bookingRepo := mongostore.NewBookingRepository(client.DB)
		imageRepo := mongostore.NewImageRepository(client.DB)
		userRepo := mongostore.NewUserRepository(client.DB)

		indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		for name, ensure := range map[string]func(context.Context) error{
			"reviews":  reviewRepo.EnsureIndexes,
			"bookings": bookingRepo.EnsureIndexes,
			"images":   imageRepo.EnsureIndexes,
			"users":    userRepo.EnsureIndexes,
		} {
			if err := ensure(indexCtx); err != nil {
				cleanup()
				return application{}, nil, err
			}
			logger.Debug("indexes ensured", "collection", name)
		}

		reviewsRepo = reviewRepo
		bookingsRepo = bookingRepo
		imagesRepo = imageRepo
		usersRepo = userRepo
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		logger.Info("mongo storage attached", "database", cfg.MongoDB)
	} else {
		items = memory.NewItemStores()
		destinations = memory.NewDestinationRepository()
		reviewsRepo = memory.NewReviewRepository()
		bookingsRepo = memory.NewBookingRepository()
		imagesRepo = memory.NewImageRepository()
		usersRepo = memory.NewUserRepository()
		logger.Warn("MONGO_URI not set, using in-memory storage")
	}

	var codes policies.CodeStore
	if cfg.RedisAddr != "" {
		redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		cleanups = append(cleanups, func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close failed", "error", err)
			}
		})
		codes = redisstore.NewCodeStore(redisClient)
		logger.Info("redis code store attached", "addr", cfg.RedisAddr)
	} else {
		codes = memory.NewCodeStore()
		logger.Warn("REDIS_ADDR not set, one-time codes stay in process")
	}

	var events policies.EventPublisher = policies.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Warn("kafka unavailable, events disabled", "error", err)
		} else {
			cleanups = append(cleanups, func() {
				if err := producer.Close(); err != nil {
					logger.Warn("kafka close failed", "error", err)
				}
			})
			events = kafka.NewEventPublisher(producer, cfg.KafkaTopicPrefix)
			logger.Info("kafka event publisher attached", "brokers", cfg.KafkaBrokers)
		}
	}

	var blobs policies.BlobStore = s3.NoopStore{}
	if cfg.S3Endpoint != "" {
		s3Client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			logger.Warn("s3 unavailable, image uploads disabled", "error", err)
		} else {
			blobs = s3Client
			logger.Info("s3 blob store attached", "bucket", cfg.S3Bucket)
		}
	} else {
		logger.Warn("S3_ENDPOINT not set, image uploads disabled")
	}

	authService := &authsvc.Service{
		Users:     usersRepo,
		Passwords: security.BcryptHasher{},
		Tokens:    security.JWTManager{Secret: []byte(cfg.JWTSecret), TTL: cfg.JWTTTL},
		Codes:     codes,
		CodeTTL:   cfg.OTPTTL,
		Logger:    logger,
	}
	imageService := &imagesapp.Service{
		Images: imagesRepo,
		Blobs:  blobs,
		Logger: logger,
	}
	catalogService := &catalogapp.Service{
		Items:        items,
		Destinations: destinations,
		Reviews:      reviewsRepo,
		Images:       imageService,
		Logger:       logger,
	}
	reviewService := &reviewsapp.Service{
		Reviews: reviewsRepo,
		Items:   items,
		Images:  imageService,
		Events:  events,
		Logger:  logger,
	}
	bookingService := &bookingsapp.Service{
		Bookings: bookingsRepo,
		Items:    items,
		Events:   events,
		Logger:   logger,
	}

	handlers := ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: authService, Logger: logger},
		Catalog:        ginserver.CatalogHandler{Service: catalogService, Logger: logger},
		Reviews:        ginserver.ReviewsHandler{Service: reviewService, Logger: logger},
		Bookings:       ginserver.BookingsHandler{Service: bookingService, Logger: logger},
		Images:         ginserver.ImagesHandler{Service: imageService, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
	}

	return application{handlers: handlers, ready: ready}, cleanup, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
