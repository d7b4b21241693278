package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/slotswap/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept both Go
// duration strings ("5s") and integer nanoseconds. Zero values are treated
// as "not set" and leave the running Config unchanged.
type JsonConfig struct {
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	DatabaseDriver   string         `json:"database_driver"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	TxTimeout        timex.Duration `json:"tx_timeout"`
	LogBackend       string         `json:"log_backend"`
	LogLevel         string         `json:"log_level"`
	Environment      string         `json:"environment"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	ReceiptQueueSize int            `json:"receipt_queue_size"`
}

// parseJSON overlays the JSON file at path onto config. An empty path is a
// no-op.
func parseJSON(config *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	set(&config.DatabaseDriver, c.DatabaseDriver)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	set(&config.LogBackend, c.LogBackend)
	set(&config.LogLevel, c.LogLevel)
	set(&config.Environment, c.Environment)
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.TxTimeout.Duration != 0 {
		config.TxTimeout = c.TxTimeout.Duration
	}
	if c.ReceiptQueueSize != 0 {
		config.ReceiptQueueSize = c.ReceiptQueueSize
	}
	return nil
}
