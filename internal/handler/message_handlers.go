package handler

import (
	"errors"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-anonpost/internal/logger"
	"tg-anonpost/internal/relay"
)

// handleIncomingMessage routes non-command messages. Only private
// chats feed the relay; group chatter is ignored.
func handleIncomingMessage(ctx *th.Context, bot *telego.Bot, message telego.Message) error {
	if message.From == nil || message.From.IsBot {
		return nil
	}

	if message.Chat.Type != "private" {
		return nil
	}

	inbound := inboundFromMessage(message)

	state, err := flow.HandleUserMessage(ctx.Context(), inbound)
	if err != nil {
		if errors.Is(err, relay.ErrNotConfigured) {
			// Sender already got the configuration-pending notice.
			logger.Warningf("Rejected submission from %d: bot not configured", inbound.SenderID)
			return nil
		}
		// Relay failures are scoped to this one message. The sender
		// was notified where appropriate; don't fail the handler.
		logger.Errorf("Relay failed in state %d for user %d: %v", state, inbound.SenderID, err)
		return nil
	}

	logger.Debugf("Relayed submission from user %d (state=%d)", inbound.SenderID, state)
	return nil
}
