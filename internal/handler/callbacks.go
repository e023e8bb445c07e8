package handler

import (
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-anonpost/internal/logger"
	"tg-anonpost/internal/relay"
)

// HandleCallbackQuery processes presses on moderation card controls.
// The card's own message ID is the moderation lookup key, so stale
// or double-clicked cards resolve to "already handled".
func HandleCallbackQuery(ctx *th.Context, bot *telego.Bot, query telego.CallbackQuery) error {
	if query.Data == "" {
		return nil
	}

	logger.Infof("Received callback query: %s", query.Data)

	var kind relay.ActionKind
	switch query.Data {
	case "del":
		kind = relay.ActionDelete
	case "ban":
		kind = relay.ActionBan
	default:
		return nil
	}

	accessibleMsg, ok := query.Message.(*telego.Message)
	if !ok {
		return answerCallback(ctx, bot, query.ID, "Card is too old to act on.", true)
	}

	if !requesterIsAdmin(ctx.Context(), bot, query.From.ID) {
		return answerCallback(ctx, bot, query.ID, "Admins only.", true)
	}

	action := &relay.AdminAction{
		Kind:           kind,
		GroupMessageID: accessibleMsg.MessageID,
	}
	result, err := flow.HandleAdminAction(ctx.Context(), action)
	if err != nil {
		logger.Errorf("Moderation action failed for card %d: %v", accessibleMsg.MessageID, err)
		return answerCallback(ctx, bot, query.ID, "❌ Action failed, try again.", true)
	}

	if !result.Found {
		return answerCallback(ctx, bot, query.ID, "Already handled.", false)
	}

	var text string
	switch kind {
	case relay.ActionBan:
		text = "User banned & post removed"
	default:
		if result.ChannelDeleted {
			text = "Deleted in channel"
		} else {
			text = "Couldn't delete (maybe already deleted)"
		}
	}
	return answerCallback(ctx, bot, query.ID, text, false)
}

func answerCallback(ctx *th.Context, bot *telego.Bot, queryID, text string, alert bool) error {
	err := bot.AnswerCallbackQuery(ctx.Context(), &telego.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		logger.Warningf("Error answering callback query: %v", err)
	}
	return err
}
