package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// dotenvFile is loaded if present; existing variables win over the file.
var dotenvFile = ".env"

// parseEnv overlays SLOTSWAP_* environment variables. Unset or empty
// variables leave the current value alone.
func parseEnv(cfg *Config) error {
	_ = godotenv.Load(dotenvFile)

	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	str("SLOTSWAP_GRPC_ADDR", &cfg.EndpointAddrGRPC)
	str("SLOTSWAP_DB_DRIVER", &cfg.DatabaseDriver)
	str("SLOTSWAP_DB_DSN", &cfg.DatabaseDSN)
	str("SLOTSWAP_SECRET_KEY", &cfg.SecretKey)
	str("SLOTSWAP_LOG_BACKEND", &cfg.LogBackend)
	str("SLOTSWAP_LOG_LEVEL", &cfg.LogLevel)
	str("SLOTSWAP_ENV", &cfg.Environment)
	str("SLOTSWAP_S3_ROOT_USER", &cfg.S3RootUser)
	str("SLOTSWAP_S3_ROOT_PASSWORD", &cfg.S3RootPassword)
	str("SLOTSWAP_S3_BUCKET", &cfg.S3Bucket)
	str("SLOTSWAP_S3_REGION", &cfg.S3Region)
	str("SLOTSWAP_S3_BASE_ENDPOINT", &cfg.S3BaseEndpoint)

	if v := os.Getenv("SLOTSWAP_TX_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SLOTSWAP_TX_TIMEOUT: %w", err)
		}
		cfg.TxTimeout = d
	}
	if v := os.Getenv("SLOTSWAP_RECEIPT_QUEUE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SLOTSWAP_RECEIPT_QUEUE_SIZE: %w", err)
		}
		cfg.ReceiptQueueSize = n
	}
	return nil
}
