package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"shirtstats/commands"

	"github.com/joho/godotenv"
)

func main() {
	// MONGO_URI may come from a .env file
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := commands.ExecuteContext(ctx)
	stop()
	os.Exit(code)
}
