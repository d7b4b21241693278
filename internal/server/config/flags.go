package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/slotswap/internal/flagx"
)

var knownFlags = []string{
	"-a", "-d", "-driver", "-s", "-t", "-l", "-log-backend", "-env",
	"-u", "-p", "-b", "-g", "-e", "-q",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string        gRPC bind address (e.g., ":50051")
//	-d string        database DSN
//	-driver string   database driver: postgres or sqlite
//	-s string        JWT HMAC secret key
//	-t int           transaction timeout, milliseconds
//	-l string        log level
//	-log-backend     slog or zap
//	-env string      environment name ("production" tunes logging)
//	-u / -p string   S3 credentials
//	-b string        S3 bucket for swap receipts (empty disables archiving)
//	-g string        S3 region
//	-e string        S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-q int           receipt queue size
//
// Args are first filtered with flagx.FilterArgs so that flags owned by other
// parsers (-c for the JSON file) do not cause errors here.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("slotswap", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver (postgres|sqlite)")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	txTimeout := fs.Int("t", int(config.TxTimeout.Milliseconds()), "transaction timeout (in milliseconds)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogBackend, "log-backend", config.LogBackend, "log backend (slog|zap)")
	fs.StringVar(&config.Environment, "env", config.Environment, "environment")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 receipts bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.IntVar(&config.ReceiptQueueSize, "q", config.ReceiptQueueSize, "receipt queue size")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	config.TxTimeout = time.Duration(*txTimeout) * time.Millisecond
	return nil
}
