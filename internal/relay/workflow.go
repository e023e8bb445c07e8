package relay

import (
	"context"
	"errors"
	"strconv"

	"tg-anonpost/internal/logger"
	"tg-anonpost/internal/models"
	"tg-anonpost/internal/storage"
)

// State tracks how far an inbound message made it through the
// relay: received → checked → published → cardPosted → recorded,
// or received → rejected.
type State int

const (
	StateReceived State = iota
	StateRejected
	StateChecked
	StatePublished
	StateCardPosted
	StateRecorded
)

// Notices sent to users. The banned case is intentionally absent:
// banned senders get no feedback at all.
const (
	noticeNotConfigured = "⚠️ The bot isn't fully set up yet. Ask an admin to run /setchannel and /setgroup."
	noticePublishFailed = "❌ Couldn't post your message to the channel. Please try again later."
	noticeCardFailed    = "❌ Couldn't notify the moderators. Please try again later."
	noticeDelivered     = "✅ Your message was sent anonymously to the channel."
	noticeBanned        = "🚫 You have been banned from submitting messages to this bot."
)

// Workflow is the relay and moderation core. It holds no message
// state of its own: settings, bans and submissions are re-fetched
// from the repositories on every call.
type Workflow struct {
	bans           *storage.BanRepository
	ledger         *storage.SubmissionRepository
	settings       *storage.SettingsRepository
	platform       PlatformClient
	defaultChannel string
}

// NewWorkflow wires the workflow to its repositories and platform client.
func NewWorkflow(bans *storage.BanRepository, ledger *storage.SubmissionRepository,
	settings *storage.SettingsRepository, platform PlatformClient, defaultChannel string) *Workflow {
	return &Workflow{
		bans:           bans,
		ledger:         ledger,
		settings:       settings,
		platform:       platform,
		defaultChannel: defaultChannel,
	}
}

// Targets returns the configured channel username and admin group
// ID, fetched fresh so a mid-run /setchannel takes effect on the
// next message. Returns ErrNotConfigured when either is unset.
func (w *Workflow) Targets(ctx context.Context) (string, int64, error) {
	channel, ok, err := w.settings.Get(ctx, models.SettingChannelUsername)
	if err != nil {
		return "", 0, &PersistenceError{Op: "read channel setting", Err: err}
	}
	if !ok || channel == "" {
		channel = w.defaultChannel
	}

	groupStr, ok, err := w.settings.Get(ctx, models.SettingGroupChatID)
	if err != nil {
		return "", 0, &PersistenceError{Op: "read group setting", Err: err}
	}
	if channel == "" || !ok || groupStr == "" {
		return "", 0, ErrNotConfigured
	}

	groupID, err := strconv.ParseInt(groupStr, 10, 64)
	if err != nil {
		return "", 0, ErrNotConfigured
	}

	return channel, groupID, nil
}

// HandleUserMessage relays one private message: ban check, channel
// publish, moderation card, ledger record. Cross-step failures are
// not rolled back; a live channel post without a card or ledger row
// is logged for manual reconciliation.
func (w *Workflow) HandleUserMessage(ctx context.Context, msg *Inbound) (State, error) {
	banned, err := w.bans.IsBanned(ctx, msg.SenderID)
	if err != nil {
		// Ban check failed: abort rather than guess either way.
		return StateReceived, &PersistenceError{Op: "ban check", Err: err}
	}
	if banned {
		// Silent drop: no feedback that enforcement happened.
		logger.Infof("Dropping submission from banned user %d", msg.SenderID)
		return StateRejected, nil
	}

	channel, groupID, err := w.Targets(ctx)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			w.notify(ctx, msg.SenderID, noticeNotConfigured)
			return StateRejected, ErrNotConfigured
		}
		return StateChecked, err
	}

	channelMsgID, err := w.platform.Publish(ctx, channel, msg)
	if err != nil {
		logger.Warningf("Failed to publish to channel %s: %v", channel, err)
		w.notify(ctx, msg.SenderID, noticePublishFailed)
		return StateChecked, &PlatformError{Op: "publish", Err: err}
	}

	card := &Card{
		SenderID:        msg.SenderID,
		SenderName:      senderName(msg),
		Username:        msg.Username,
		MessageType:     msg.MessageType,
		Text:            msg.Text,
		ChannelLink:     ChannelLink(channel, channelMsgID),
		ProfileLink:     ProfileLink(msg.SenderID),
		SourceChatID:    msg.SenderID,
		SourceMessageID: msg.MessageID,
	}
	groupMsgID, err := w.platform.PostCard(ctx, groupID, card)
	if err != nil {
		// The channel post is already live. Deleting it would be
		// visible, so record the inconsistency instead.
		logger.Errorf("Orphan channel post %s/%d: moderation card failed: %v", channel, channelMsgID, err)
		w.notify(ctx, msg.SenderID, noticeCardFailed)
		return StatePublished, &PlatformError{Op: "post card", Err: err}
	}

	sub := &models.Submission{
		UserID:           msg.SenderID,
		Username:         msg.Username,
		FirstName:        msg.FirstName,
		LastName:         msg.LastName,
		MessageType:      msg.MessageType,
		ContentText:      msg.Text,
		MediaFileID:      msg.MediaFileID,
		ChannelUsername:  channel,
		ChannelMessageID: channelMsgID,
		GroupMessageID:   groupMsgID,
	}
	if _, err := w.ledger.Record(ctx, sub); err != nil {
		logger.Errorf("Ledger write failed for channel=%s channel_msg=%d group_msg=%d: %v",
			channel, channelMsgID, groupMsgID, err)
		return StateCardPosted, &PersistenceError{Op: "record submission", Err: err}
	}

	w.notify(ctx, msg.SenderID, noticeDelivered)
	return StateRecorded, nil
}

// ActionKind enumerates the moderation controls on a card.
type ActionKind int

const (
	ActionDelete ActionKind = iota
	ActionBan
)

// AdminAction is one press of a moderation control, identified by
// the card's message ID in the admin group.
type AdminAction struct {
	Kind           ActionKind
	GroupMessageID int
	Reason         string
}

// ActionResult reports what a moderation action did.
type ActionResult struct {
	Found          bool
	Submission     *models.Submission
	ChannelDeleted bool
}

// HandleAdminAction resolves the submission behind a card and
// performs the requested side effects. A lookup miss is reported
// as not-found, never an error, so repeated clicks are safe.
// Ban runs ban-then-delete: a failed channel deletion never leaves
// the user unbanned.
func (w *Workflow) HandleAdminAction(ctx context.Context, action *AdminAction) (*ActionResult, error) {
	sub, err := w.ledger.FindByGroupMessage(ctx, action.GroupMessageID)
	if err != nil {
		return nil, &PersistenceError{Op: "find submission", Err: err}
	}
	if sub == nil {
		return &ActionResult{Found: false}, nil
	}

	if action.Kind == ActionBan {
		reason := action.Reason
		if reason == "" {
			reason = "Admin ban"
		}
		if err := w.bans.Ban(ctx, sub.UserID, reason); err != nil {
			return nil, &PersistenceError{Op: "ban user", Err: err}
		}
	}

	result := &ActionResult{Found: true, Submission: sub}

	// Channel post may already be gone; tolerate and continue.
	if err := w.platform.DeleteMessage(ctx, sub.ChannelUsername, sub.ChannelMessageID); err != nil {
		logger.Warningf("Couldn't delete channel post %s/%d: %v", sub.ChannelUsername, sub.ChannelMessageID, err)
	} else {
		result.ChannelDeleted = true
	}

	if err := w.ledger.Delete(ctx, sub.ID); err != nil {
		return result, &PersistenceError{Op: "delete submission", Err: err}
	}

	w.editHandledCard(ctx, action, sub)

	if action.Kind == ActionBan {
		w.notify(ctx, sub.UserID, noticeBanned)
	}

	return result, nil
}

// UnbanUser lifts a ban; unknown users are a no-op.
func (w *Workflow) UnbanUser(ctx context.Context, userID int64) error {
	if err := w.bans.Unban(ctx, userID); err != nil {
		return &PersistenceError{Op: "unban user", Err: err}
	}
	return nil
}

// editHandledCard rewrites the admin card so the controls disappear
// and the card shows what was done. Best effort.
func (w *Workflow) editHandledCard(ctx context.Context, action *AdminAction, sub *models.Submission) {
	_, groupID, err := w.Targets(ctx)
	if err != nil {
		logger.Warningf("Couldn't resolve admin group to edit card %d: %v", action.GroupMessageID, err)
		return
	}

	var text string
	if action.Kind == ActionBan {
		text = "🚫 Sender " + sub.FullName() + " banned, post removed."
	} else {
		text = "🗑 Post from " + sub.FullName() + " deleted."
	}
	if err := w.platform.EditCard(ctx, groupID, action.GroupMessageID, text); err != nil {
		logger.Warningf("Couldn't edit moderation card %d: %v", action.GroupMessageID, err)
	}
}

// notify is best-effort: the user may have blocked the bot.
func (w *Workflow) notify(ctx context.Context, userID int64, text string) {
	if err := w.platform.Notify(ctx, userID, text); err != nil {
		logger.Warningf("Couldn't notify user %d: %v", userID, err)
	}
}

func senderName(msg *Inbound) string {
	switch {
	case msg.FirstName != "" && msg.LastName != "":
		return msg.FirstName + " " + msg.LastName
	case msg.FirstName != "":
		return msg.FirstName
	case msg.LastName != "":
		return msg.LastName
	case msg.Username != "":
		return "@" + msg.Username
	}
	return "Unknown"
}
