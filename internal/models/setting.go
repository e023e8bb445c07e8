package models

// Well-known setting keys. Any other key is rejected by the
// settings repository to prevent silent misconfiguration.
const (
	SettingChannelUsername = "channel_username"
	SettingGroupChatID     = "group_chat_id"
)

// Setting is a single key-value runtime configuration entry.
type Setting struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string `gorm:"not null"`
}
