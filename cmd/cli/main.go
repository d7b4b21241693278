package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/dmitrijs2005/slotswap/internal/client/cli"
	"github.com/dmitrijs2005/slotswap/internal/client/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, closeFn, err := cli.NewApp(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer closeFn()

	app.Run(ctx, os.Stdin)
}
