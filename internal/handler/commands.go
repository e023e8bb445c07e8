package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-anonpost/internal/logger"
	"tg-anonpost/internal/models"
)

const welcomeText = "👋 Welcome!\n\n" +
	"Send me a message and I will post it anonymously to the channel.\n" +
	"Text, photos, videos, voice notes, stickers and documents all work."

// RegisterCommands dispatches bot commands. Returns true when the
// message was a recognized command, so the caller skips relaying it.
func RegisterCommands(ctx *th.Context, bot *telego.Bot, message telego.Message) (bool, error) {
	if message.From == nil || !strings.HasPrefix(message.Text, "/") {
		return false, nil
	}

	cmd, args := commandAndArgs(message.Text)
	switch cmd {
	case "/start", "/help":
		return true, reply(ctx.Context(), bot, message.Chat.ID, welcomeText)
	case "/setgroup":
		return true, cmdSetGroup(ctx, bot, message)
	case "/setchannel":
		return true, cmdSetChannel(ctx, bot, message, args)
	case "/stats":
		return true, cmdStats(ctx, bot, message)
	case "/users":
		return true, cmdUsers(ctx, bot, message)
	case "/info":
		return true, cmdInfo(ctx, bot, message, args)
	case "/unban":
		return true, cmdUnban(ctx, bot, message, args)
	}

	return false, nil
}

// cmdSetGroup registers the surrounding group as the admin group
func cmdSetGroup(ctx *th.Context, bot *telego.Bot, message telego.Message) error {
	chat := message.Chat
	if chat.Type != "group" && chat.Type != "supergroup" {
		return reply(ctx.Context(), bot, chat.ID, "Run this inside the admin group.")
	}
	if !isGroupAdmin(ctx.Context(), bot, chat.ID, message.From.ID) {
		return reply(ctx.Context(), bot, chat.ID, "Only group admins can set the group.")
	}

	if err := settingsRepo.Set(ctx.Context(), models.SettingGroupChatID, strconv.FormatInt(chat.ID, 10)); err != nil {
		logger.Errorf("Failed to store admin group setting: %v", err)
		return reply(ctx.Context(), bot, chat.ID, "❌ Couldn't save the setting, check the database.")
	}

	return reply(ctx.Context(), bot, chat.ID, "✅ This chat is now registered as the admin group.")
}

// cmdSetChannel stores the target channel username
func cmdSetChannel(ctx *th.Context, bot *telego.Bot, message telego.Message, args []string) error {
	chat := message.Chat
	if chat.Type != "group" && chat.Type != "supergroup" {
		return reply(ctx.Context(), bot, chat.ID, "Run this inside the admin group.")
	}
	if !isGroupAdmin(ctx.Context(), bot, chat.ID, message.From.ID) {
		return reply(ctx.Context(), bot, chat.ID, "Only group admins can set the channel.")
	}
	if len(args) == 0 {
		return reply(ctx.Context(), bot, chat.ID, "Usage: /setchannel @ChannelUsername")
	}
	channel := args[0]
	if !strings.HasPrefix(channel, "@") {
		return reply(ctx.Context(), bot, chat.ID, "Please provide a public @channel username.")
	}

	if err := settingsRepo.Set(ctx.Context(), models.SettingChannelUsername, channel); err != nil {
		logger.Errorf("Failed to store channel setting: %v", err)
		return reply(ctx.Context(), bot, chat.ID, "❌ Couldn't save the setting, check the database.")
	}

	return reply(ctx.Context(), bot, chat.ID, fmt.Sprintf("✅ Channel set to %s", channel))
}

// cmdStats reports ledger and ban counters
func cmdStats(ctx *th.Context, bot *telego.Bot, message telego.Message) error {
	stats, err := submissionRepo.GetStats(ctx.Context(), banRepo)
	if err != nil {
		logger.Errorf("Failed to read stats: %v", err)
		return reply(ctx.Context(), bot, message.Chat.ID, "❌ Couldn't read statistics.")
	}
	text := fmt.Sprintf("Total submissions: %d\nUnique senders: %d\nBanned users: %d",
		stats.TotalSubmissions, stats.UniqueUsers, stats.BannedUsers)
	return reply(ctx.Context(), bot, message.Chat.ID, text)
}

// cmdUsers lists unique senders, most recent first
func cmdUsers(ctx *th.Context, bot *telego.Bot, message telego.Message) error {
	if !requesterIsAdmin(ctx.Context(), bot, message.From.ID) {
		return reply(ctx.Context(), bot, message.Chat.ID, "Admins only.")
	}

	users, err := submissionRepo.ListUsers(ctx.Context())
	if err != nil {
		logger.Errorf("Failed to list users: %v", err)
		return reply(ctx.Context(), bot, message.Chat.ID, "❌ Couldn't read the sender list.")
	}
	if len(users) == 0 {
		return reply(ctx.Context(), bot, message.Chat.ID, "No users found yet.")
	}

	lines := []string{"Users who sent messages:"}
	for i, u := range users {
		username := "-"
		if u.Username != "" {
			username = "@" + u.Username
		}
		fullName := strings.TrimSpace(u.FirstName + " " + u.LastName)
		if fullName == "" {
			fullName = "-"
		}
		lines = append(lines, fmt.Sprintf("%d. %d(ChatID) - %s(Username) - %s(Profile name)", i+1, u.UserID, username, fullName))
	}

	return replyChunked(ctx.Context(), bot, message.Chat.ID, lines)
}

// cmdInfo exports a sender's full submission history as a workbook
func cmdInfo(ctx *th.Context, bot *telego.Bot, message telego.Message, args []string) error {
	if !requesterIsAdmin(ctx.Context(), bot, message.From.ID) {
		return reply(ctx.Context(), bot, message.Chat.ID, "Admins only.")
	}
	if len(args) == 0 {
		return reply(ctx.Context(), bot, message.Chat.ID, "Usage: /info @username or /info 123456789")
	}

	token := strings.TrimPrefix(args[0], "@")
	var (
		subs  []*models.Submission
		label string
		err   error
	)
	if userID, convErr := strconv.ParseInt(token, 10, 64); convErr == nil {
		subs, err = submissionRepo.FindByUser(ctx.Context(), userID)
		label = token
	} else {
		subs, err = submissionRepo.FindByUsername(ctx.Context(), token)
		label = "@" + token
	}
	if err != nil {
		logger.Errorf("Failed to load submissions for %s: %v", label, err)
		return reply(ctx.Context(), bot, message.Chat.ID, "❌ Couldn't read submission history.")
	}
	if len(subs) == 0 {
		return reply(ctx.Context(), bot, message.Chat.ID, "No submissions found for that user.")
	}

	return sendExport(ctx.Context(), bot, message.Chat.ID, subs, label)
}

// cmdUnban lifts a ban; absent bans are a no-op
func cmdUnban(ctx *th.Context, bot *telego.Bot, message telego.Message, args []string) error {
	if !requesterIsAdmin(ctx.Context(), bot, message.From.ID) {
		return reply(ctx.Context(), bot, message.Chat.ID, "Admins only.")
	}
	if len(args) == 0 {
		return reply(ctx.Context(), bot, message.Chat.ID, "Usage: /unban 123456789")
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return reply(ctx.Context(), bot, message.Chat.ID, "User ID must be numeric.")
	}

	if err := flow.UnbanUser(ctx.Context(), userID); err != nil {
		logger.Errorf("Failed to unban user %d: %v", userID, err)
		return reply(ctx.Context(), bot, message.Chat.ID, "❌ Couldn't update the ban registry.")
	}

	return reply(ctx.Context(), bot, message.Chat.ID, fmt.Sprintf("✅ User %d is no longer banned.", userID))
}
