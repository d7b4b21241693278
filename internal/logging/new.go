package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	BackendSlog = "slog"
	BackendZap  = "zap"

	EnvProduction = "production"
)

// Options selects and tunes a logging backend.
type Options struct {
	Backend     string // "slog" (default) or "zap"
	Level       string // debug, info, warn, error
	Environment string // "production" switches zap to its production preset
	Output      io.Writer
}

// New builds a Logger for the given options. The returned close function
// flushes the backend and is safe to call more than once.
func New(o Options) (Logger, func() error, error) {
	if o.Output == nil {
		o.Output = os.Stdout
	}

	switch strings.ToLower(o.Backend) {
	case "", BackendSlog:
		level, err := parseSlogLevel(o.Level)
		if err != nil {
			return nil, nil, err
		}
		h := slog.NewJSONHandler(o.Output, &slog.HandlerOptions{Level: level})
		return NewSlogLogger(slog.New(h)), func() error { return nil }, nil

	case BackendZap:
		zl, err := newZap(o)
		if err != nil {
			return nil, nil, err
		}
		l := NewZapLogger(zl)
		return l, func() error { _ = l.Sync(); return nil }, nil
	}

	return nil, nil, fmt.Errorf("unknown log backend %q", o.Backend)
}

func newZap(o Options) (*zap.Logger, error) {
	var cfg zap.Config
	if o.Environment == EnvProduction {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if o.Level != "" {
		lvl, err := zapcore.ParseLevel(o.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.OutputPaths = []string{"stdout"}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	if o.Output != os.Stdout {
		encCfg := cfg.EncoderConfig
		encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		l = l.WithOptions(zap.WrapCore(func(zapcore.Core) zapcore.Core {
			return zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(o.Output), cfg.Level)
		}))
	}
	return l, nil
}

func parseSlogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("parse log level: %w", err)
	}
	return lvl, nil
}
