package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"

	"tg-anonpost/internal/models"
	"tg-anonpost/internal/relay"
)

// telegram message size limit, with headroom for headers
const maxChunkLen = 3500

// isGroupAdmin reports whether the user is an administrator or the
// creator of the given chat
func isGroupAdmin(ctx context.Context, bot *telego.Bot, chatID int64, userID int64) bool {
	member, err := bot.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: telego.ChatID{ID: chatID},
		UserID: userID,
	})
	if err != nil {
		return false
	}
	status := member.MemberStatus()
	return status == telego.MemberStatusAdministrator || status == telego.MemberStatusCreator
}

// requesterIsAdmin accepts configured admin IDs, then falls back to
// live admin status in the registered admin group
func requesterIsAdmin(ctx context.Context, bot *telego.Bot, userID int64) bool {
	for _, id := range globalConfig.Bot.AdminIDs {
		if id == userID {
			return true
		}
	}
	groupStr, ok, err := settingsRepo.Get(ctx, models.SettingGroupChatID)
	if err != nil || !ok {
		return false
	}
	groupID, err := strconv.ParseInt(groupStr, 10, 64)
	if err != nil {
		return false
	}
	return isGroupAdmin(ctx, bot, groupID, userID)
}

// reply sends a plain text response into the chat the message came from
func reply(ctx context.Context, bot *telego.Bot, chatID int64, text string) error {
	_, err := bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	})
	return err
}

// replyChunked splits long listings under the message size limit
func replyChunked(ctx context.Context, bot *telego.Bot, chatID int64, lines []string) error {
	chunk := ""
	for _, line := range lines {
		if len(chunk)+len(line)+1 > maxChunkLen {
			if err := reply(ctx, bot, chatID, chunk); err != nil {
				return err
			}
			chunk = line
			continue
		}
		if chunk == "" {
			chunk = line
		} else {
			chunk = chunk + "\n" + line
		}
	}
	if chunk != "" {
		return reply(ctx, bot, chatID, chunk)
	}
	return nil
}

// inboundFromMessage maps a telego private message onto the relay's
// platform-neutral inbound shape
func inboundFromMessage(message telego.Message) *relay.Inbound {
	messageType, mediaFileID := detectMedia(message)

	text := message.Text
	if text == "" {
		text = message.Caption
	}

	inbound := &relay.Inbound{
		SenderID:    message.From.ID,
		FirstName:   message.From.FirstName,
		LastName:    message.From.LastName,
		Username:    message.From.Username,
		MessageType: messageType,
		Text:        text,
		MediaFileID: mediaFileID,
		MessageID:   message.MessageID,
	}
	return inbound
}

func detectMedia(message telego.Message) (string, string) {
	switch {
	case message.Text != "":
		return models.TypeText, ""
	case len(message.Photo) > 0:
		// last size is the largest
		return models.TypePhoto, message.Photo[len(message.Photo)-1].FileID
	case message.Video != nil:
		return models.TypeVideo, message.Video.FileID
	case message.Voice != nil:
		return models.TypeVoice, message.Voice.FileID
	case message.Animation != nil:
		return models.TypeAnimation, message.Animation.FileID
	case message.Sticker != nil:
		return models.TypeSticker, message.Sticker.FileID
	case message.Document != nil:
		return models.TypeDocument, message.Document.FileID
	}
	return models.TypeOther, ""
}

// commandAndArgs splits "/cmd@bot arg1 arg2" into the bare command
// and its arguments
func commandAndArgs(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}
	cmd := fields[0]
	if at := strings.Index(cmd, "@"); at != -1 {
		cmd = cmd[:at]
	}
	return cmd, fields[1:]
}
