// Package config holds settings for the slotswap command-line client.
package config

import (
	"errors"
	"flag"
	"time"

	"github.com/dmitrijs2005/slotswap/internal/flagx"
)

// Config holds runtime settings for the CLI.
//
// The CLI signs its own access token with SecretKey, which must match the
// server's. This is meant for development setups where no identity service
// issues tokens.
type Config struct {
	ServerEndpointAddr string
	UserID             string
	SecretKey          string
	TokenValidity      time.Duration
	CallTimeout        time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SecretKey = "secretKey"
	c.TokenValidity = time.Hour
	c.CallTimeout = 10 * time.Second
}

// Load applies defaults and then flags from args.
//
//	-a string   server address
//	-u string   user id to act as
//	-s string   token signing secret
//	-t int      per-call timeout, seconds
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	fs := flag.NewFlagSet("slotswap-cli", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the server")
	fs.StringVar(&cfg.UserID, "u", cfg.UserID, "user id")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	timeout := fs.Int("t", int(cfg.CallTimeout.Seconds()), "call timeout (in seconds)")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-a", "-u", "-s", "-t"})); err != nil {
		return nil, err
	}
	cfg.CallTimeout = time.Duration(*timeout) * time.Second

	if cfg.UserID == "" {
		return nil, errors.New("user id is required (-u)")
	}
	return cfg, nil
}
