package handler

import (
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-anonpost/internal/config"
	"tg-anonpost/internal/relay"
	"tg-anonpost/internal/storage"
)

var (
	globalConfig   *config.Config
	flow           *relay.Workflow
	settingsRepo   *storage.SettingsRepository
	submissionRepo *storage.SubmissionRepository
	banRepo        *storage.BanRepository
)

// Initialize wires the handlers to the workflow and repositories
func Initialize(cfg *config.Config, workflow *relay.Workflow,
	settings *storage.SettingsRepository, submissions *storage.SubmissionRepository, bans *storage.BanRepository) {
	globalConfig = cfg
	flow = workflow
	settingsRepo = settings
	submissionRepo = submissions
	banRepo = bans
}

// SetupMessageHandlers configures all bot message and update handlers
func SetupMessageHandlers(bh *th.BotHandler, bot *telego.Bot) {
	bh.HandleMessage(func(ctx *th.Context, message telego.Message) error {
		ok, err := RegisterCommands(ctx, bot, message)
		if ok {
			return err
		}

		return handleIncomingMessage(ctx, bot, message)
	})

	bh.HandleCallbackQuery(func(ctx *th.Context, query telego.CallbackQuery) error {
		return HandleCallbackQuery(ctx, bot, query)
	})
}
