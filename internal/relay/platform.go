package relay

import (
	"context"
	"fmt"
	"strings"
)

// Inbound is a user's private message as received from the
// delivery shim, stripped of any platform-specific payload.
type Inbound struct {
	SenderID    int64
	Username    string
	FirstName   string
	LastName    string
	MessageType string
	Text        string
	MediaFileID string
	// MessageID identifies the original message in the sender's
	// private chat so media can be copied without re-uploading.
	MessageID int
}

// Card is the moderation card content posted to the admin group.
// Button layout is left to the platform client; the workflow only
// supplies identities and links.
type Card struct {
	SenderID    int64
	SenderName  string
	Username    string
	MessageType string
	Text        string
	ChannelLink string
	ProfileLink string
	// Source of the original private message, copied for media cards.
	SourceChatID    int64
	SourceMessageID int
}

// PlatformClient is the messaging platform surface the workflow
// depends on. The telego implementation lives in internal/platform;
// tests substitute a fake.
type PlatformClient interface {
	// Publish copies the message into the public channel and
	// returns the channel message ID.
	Publish(ctx context.Context, channel string, msg *Inbound) (int, error)
	// PostCard posts a moderation card with action controls to the
	// admin group and returns the group message ID.
	PostCard(ctx context.Context, groupID int64, card *Card) (int, error)
	// DeleteMessage removes a message from the channel.
	DeleteMessage(ctx context.Context, chat string, messageID int) error
	// EditCard rewrites a moderation card (clearing its controls)
	// after the submission has been handled.
	EditCard(ctx context.Context, groupID int64, messageID int, text string) error
	// Notify sends a plain text notice to a user's private chat.
	Notify(ctx context.Context, userID int64, text string) error
}

// ChannelLink builds the public deep link for a channel post, or
// "" when the channel has no public username.
func ChannelLink(channelUsername string, messageID int) string {
	if strings.HasPrefix(channelUsername, "@") {
		return fmt.Sprintf("https://t.me/%s/%d", strings.TrimPrefix(channelUsername, "@"), messageID)
	}
	return ""
}

// ProfileLink builds the tg:// deep link for a user profile.
func ProfileLink(userID int64) string {
	return fmt.Sprintf("tg://user?id=%d", userID)
}
