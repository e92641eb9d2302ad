package common

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"broker-backoffice-go/internal/aggregate"
	"broker-backoffice-go/internal/api"
	"broker-backoffice-go/internal/cache"
	"broker-backoffice-go/internal/client"
	"broker-backoffice-go/internal/endpoints"
	"broker-backoffice-go/internal/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	Client     *client.Client
	Cache      *cache.Cache
	Registry   *endpoints.Registry
	BackOffice *api.BackOffice
}

// InitializeLogger installs the global zap logger. When cfg.File is set,
// output is also written to a rotating file.
func InitializeLogger(cfg models.LogConfig) (*zap.Logger, func()) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			log.Printf("Unknown LOG_LEVEL %q, using info\n", cfg.Level)
		}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.Lock(os.Stderr), level),
	}

	var rotator *lumberjack.Logger
	if cfg.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(rotator), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
		if rotator != nil {
			rotator.Close()
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	if cfg.Cache.PolicyFile != "" {
		zap.L().Info("Loading cache policy", zap.String("file", cfg.Cache.PolicyFile))
		retention, err := LoadCachePolicy(cfg.Cache.PolicyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load cache policy: %w", err)
		}
		cfg.Cache.EndpointRetention = retention
	}

	backend, err := client.New(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	queryCache := cache.New(cfg.Cache)
	registry := endpoints.NewRegistry(backend, queryCache)
	policy := aggregate.ParsePolicy(cfg.Views.MergePolicy)

	zap.L().Info("Back-office services initialized",
		zap.String("backend", backend.BaseURL()),
		zap.Duration("keep_unused_for", cfg.Cache.KeepUnusedFor),
		zap.Int("endpoint_policies", len(cfg.Cache.EndpointRetention)),
		zap.Stringer("merge_policy", policy))

	return &Services{
		Client:     backend,
		Cache:      queryCache,
		Registry:   registry,
		BackOffice: api.NewBackOffice(registry, policy),
	}, nil
}

func (cs *Services) Close() {
	if cs.Cache != nil {
		cs.Cache.Flush()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
