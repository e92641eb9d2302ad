/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"broker-backoffice-go/internal/models"
)

func Load() (*models.Config, error) {
	backendTimeout, err := getEnvDuration("BACKEND_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	rateLimit, err := getEnvFloat("API_RATE_LIMIT", 0)
	if err != nil {
		return nil, err
	}

	keepUnusedFor, err := getEnvDuration("CACHE_KEEP_UNUSED_FOR", 60*time.Second)
	if err != nil {
		return nil, err
	}

	cleanupInterval, err := getEnvDuration("CACHE_CLEANUP_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	refetchTimeout, err := getEnvDuration("CACHE_REFETCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	readTimeout, err := getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	writeTimeout, err := getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Backend: models.BackendConfig{
			BaseURL:        getEnvString("BACKEND_BASE_URL", ""),
			Token:          getEnvString("BACKEND_TOKEN", ""),
			Timeout:        backendTimeout,
			RateLimit:      rateLimit,
			RateBurst:      getEnvInt("API_RATE_BURST", 10),
			MaxIdleConns:   getEnvInt("BACKEND_MAX_IDLE_CONNS", 25),
			EnableHTTP2:    getEnvBool("BACKEND_HTTP2", true),
			UserAgent:      getEnvString("BACKEND_USER_AGENT", "broker-backoffice-go"),
			DefaultPageLen: getEnvInt("BACKEND_PAGE_SIZE", 20),
		},
		Cache: models.CacheConfig{
			KeepUnusedFor:   keepUnusedFor,
			CleanupInterval: cleanupInterval,
			RefetchTimeout:  refetchTimeout,
			PolicyFile:      getEnvString("CACHE_POLICY_FILE", ""),
		},
		Server: models.ServerConfig{
			Addr:            getEnvString("SERVER_ADDR", ":8080"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			AllowedOrigins:  getEnvList("ALLOWED_ORIGINS"),
		},
		Views: models.ViewConfig{
			MergePolicy: getEnvString("MERGE_POLICY", "most_recent"),
		},
		Log: models.LogConfig{
			Level:      getEnvString("LOG_LEVEL", "info"),
			File:       getEnvString("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number for %s: %q (%w)", key, value, err)
		}
		return f, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
