package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx := contextWithUserTermination(context.Background())
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func contextWithUserTermination(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	// buffered so the signal is not dropped before the goroutine is ready
	interruptChan := make(chan os.Signal, 1)
	signal.Notify(interruptChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-interruptChan
		log.Debug("termination signal received")
		signal.Stop(interruptChan)
		cancel()
	}()

	return ctx
}
