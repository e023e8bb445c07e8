package platform

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/mymmrac/telego"

	"tg-anonpost/internal/logger"
	"tg-anonpost/internal/models"
	"tg-anonpost/internal/relay"
)

// Client implements relay.PlatformClient on top of telego. Every
// bot API call runs under a bounded timeout and is retried once
// when it expires before the error surfaces to the workflow.
type Client struct {
	bot     *telego.Bot
	timeout time.Duration
}

// NewClient wraps a telego bot with the configured per-call timeout.
func NewClient(bot *telego.Bot, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{bot: bot, timeout: timeout}
}

// withRetry applies the timeout and the single transient retry.
func (c *Client) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err = fn(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			break
		}
		logger.Warningf("%s timed out, retrying once", op)
	}
	return err
}

func chatID(chat string) telego.ChatID {
	return telego.ChatID{Username: chat}
}

// Publish copies the user's private message into the channel, so
// media goes out without re-uploading and without a forward header.
func (c *Client) Publish(ctx context.Context, channel string, msg *relay.Inbound) (int, error) {
	var messageID int
	err := c.withRetry(ctx, "publish", func(ctx context.Context) error {
		copied, err := c.bot.CopyMessage(ctx, &telego.CopyMessageParams{
			ChatID:     chatID(channel),
			FromChatID: telego.ChatID{ID: msg.SenderID},
			MessageID:  msg.MessageID,
		})
		if err != nil {
			return err
		}
		messageID = copied.MessageID
		return nil
	})
	return messageID, err
}

// PostCard posts the moderation card: an HTML header identifying
// the sender plus the delete/ban/profile/channel controls. Text
// submissions become a plain message; media is copied with the
// header as caption.
func (c *Client) PostCard(ctx context.Context, groupID int64, card *relay.Card) (int, error) {
	text := cardText(card)
	keyboard := cardKeyboard(card)

	var messageID int
	err := c.withRetry(ctx, "post card", func(ctx context.Context) error {
		if card.MessageType == models.TypeText {
			sent, err := c.bot.SendMessage(ctx, &telego.SendMessageParams{
				ChatID:      telego.ChatID{ID: groupID},
				Text:        text,
				ParseMode:   "HTML",
				ReplyMarkup: keyboard,
			})
			if err != nil {
				return err
			}
			messageID = sent.MessageID
			return nil
		}

		copied, err := c.bot.CopyMessage(ctx, &telego.CopyMessageParams{
			ChatID:      telego.ChatID{ID: groupID},
			FromChatID:  telego.ChatID{ID: card.SourceChatID},
			MessageID:   card.SourceMessageID,
			Caption:     text,
			ParseMode:   "HTML",
			ReplyMarkup: keyboard,
		})
		if err != nil {
			return err
		}
		messageID = copied.MessageID
		return nil
	})
	return messageID, err
}

// DeleteMessage removes a channel post.
func (c *Client) DeleteMessage(ctx context.Context, chat string, messageID int) error {
	return c.withRetry(ctx, "delete message", func(ctx context.Context) error {
		return c.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
			ChatID:    chatID(chat),
			MessageID: messageID,
		})
	})
}

// EditCard rewrites a handled card and drops its controls. Cards
// for media submissions carry the header as a caption, so when the
// text edit is rejected we retry as a caption edit.
func (c *Client) EditCard(ctx context.Context, groupID int64, messageID int, text string) error {
	return c.withRetry(ctx, "edit card", func(ctx context.Context) error {
		_, err := c.bot.EditMessageText(ctx, &telego.EditMessageTextParams{
			ChatID:    telego.ChatID{ID: groupID},
			MessageID: messageID,
			Text:      text,
		})
		if err == nil {
			return nil
		}
		_, capErr := c.bot.EditMessageCaption(ctx, &telego.EditMessageCaptionParams{
			ChatID:    telego.ChatID{ID: groupID},
			MessageID: messageID,
			Caption:   text,
		})
		if capErr != nil {
			return err
		}
		return nil
	})
}

// Notify sends a plain notice to a user's private chat.
func (c *Client) Notify(ctx context.Context, userID int64, text string) error {
	return c.withRetry(ctx, "notify", func(ctx context.Context) error {
		_, err := c.bot.SendMessage(ctx, &telego.SendMessageParams{
			ChatID: telego.ChatID{ID: userID},
			Text:   text,
		})
		return err
	})
}

func cardText(card *relay.Card) string {
	var sb strings.Builder
	sb.WriteString("<b>New submission</b>\n")
	name := html.EscapeString(card.SenderName)
	sb.WriteString(fmt.Sprintf("👤 <a href=\"%s\">%s</a> (<code>%d</code>)\n", card.ProfileLink, name, card.SenderID))
	if card.Username != "" {
		sb.WriteString("@" + html.EscapeString(card.Username) + "\n")
	}
	sb.WriteString(fmt.Sprintf("🧾 Type: <code>%s</code>\n", card.MessageType))
	if card.Text != "" {
		sb.WriteString("\n<b>Message:</b>\n" + html.EscapeString(card.Text))
	}
	return sb.String()
}

func cardKeyboard(card *relay.Card) *telego.InlineKeyboardMarkup {
	actionRow := []telego.InlineKeyboardButton{
		{Text: "🗑 Delete", CallbackData: "del"},
		{Text: "🚫 Ban", CallbackData: "ban"},
	}
	linkRow := []telego.InlineKeyboardButton{
		{Text: "👤 Profile", URL: card.ProfileLink},
	}
	if card.ChannelLink != "" {
		linkRow = append(linkRow, telego.InlineKeyboardButton{Text: "🔗 View in Channel", URL: card.ChannelLink})
	}
	return &telego.InlineKeyboardMarkup{
		InlineKeyboard: [][]telego.InlineKeyboardButton{actionRow, linkRow},
	}
}
