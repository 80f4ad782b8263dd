package process

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Returns a context that is cancelled on SIGINT or SIGTERM, and its stop function.

func InterruptibleContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
