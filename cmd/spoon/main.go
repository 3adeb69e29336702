package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/johnqtcg/spoon/internal/cli"
	"github.com/johnqtcg/spoon/internal/logger"
)

func main() {
	logger.Init(logger.FromEnv())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := runWithRunner(ctx, os.Args[1:], cli.NewApp(cli.AppDeps{}))
	stop()
	os.Exit(code)
}

func runWithRunner(ctx context.Context, args []string, runner cli.Runner) int {
	return runner.Run(ctx, args)
}
