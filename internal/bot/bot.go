package bot

import (
	"context"
	"fmt"
	"log"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-anonpost/internal/config"
)

// BotService represents the Telegram bot service
type BotService struct {
	Bot     *telego.Bot
	Handler *th.BotHandler
	// Server is non-nil only in webhook mode
	Server *WebhookServer
}

// Start starts the bot handler
func (b *BotService) Start() {
	b.Handler.Start()
}

// Stop stops the bot handler
func (b *BotService) Stop() {
	b.Handler.Stop()
}

// Initialize initializes the bot in the configured delivery mode
// (webhook push or long-polling pull).
func Initialize(ctx context.Context, cfg *config.Config) (*BotService, error) {
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	bot, err := telego.NewBot(cfg.Bot.Token, telego.WithDefaultLogger(false, true))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	botUser, err := bot.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bot info: %w", err)
	}
	log.Printf("Authorized on account %s", botUser.Username)

	setCommands(ctx, bot)

	// Clear any stale webhook before either mode starts
	if err := bot.DeleteWebhook(ctx, &telego.DeleteWebhookParams{}); err != nil {
		return nil, fmt.Errorf("failed to delete existing webhook: %w", err)
	}

	if cfg.Bot.Mode == "webhook" {
		secretToken := "anonpost_webhook_" + cfg.Bot.Token[len(cfg.Bot.Token)-6:]
		bh, server, err := SetupWebhook(ctx, bot, cfg.Bot.Webhook, secretToken)
		if err != nil {
			return nil, fmt.Errorf("failed to setup webhook: %w", err)
		}
		return &BotService{Bot: bot, Handler: bh, Server: server}, nil
	}

	updates, err := bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start long polling: %w", err)
	}

	bh, err := th.NewBotHandler(bot, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot handler: %w", err)
	}

	log.Printf("Running in long-polling mode")
	return &BotService{Bot: bot, Handler: bh}, nil
}

// setCommands registers the bot's command menu
func setCommands(ctx context.Context, bot *telego.Bot) {
	commands := []telego.BotCommand{
		{Command: "start", Description: "Welcome message"},
		{Command: "help", Description: "How to use the bot"},
		{Command: "setchannel", Description: "Set the target channel (admins, in group)"},
		{Command: "setgroup", Description: "Register this group as the admin group"},
		{Command: "stats", Description: "Submission and ban counters"},
		{Command: "users", Description: "List unique senders (admins)"},
		{Command: "info", Description: "Export a sender's history (admins)"},
		{Command: "unban", Description: "Lift a ban by user ID (admins)"},
	}

	err := bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: commands})
	if err != nil {
		log.Printf("Warning: Failed to set bot commands: %v", err)
	}
}
