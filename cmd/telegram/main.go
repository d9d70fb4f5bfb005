package main

import (
	"context"
	"fmt"
	"os"
	"remindbot/internal/config"
	"remindbot/internal/implementations/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	client := telegram.New(
		cfg.TelegramBaseURL,
		cfg.TelegramToken,
		cfg.TelegramRequestTimeout,
		cfg.TelegramRatePerSecond,
	)

	url := cfg.BaseURL.JoinPath("telegram", "updates", cfg.TelegramURLSecret)
	if err := client.SetWebhook(context.Background(), url.String()); err != nil {
		fmt.Fprintf(os.Stderr, "could not register telegram webhook, error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Webhook %s successfully registered\n", url)
}
