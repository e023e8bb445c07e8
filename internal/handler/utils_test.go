package handler

import (
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-anonpost/internal/models"
)

func TestCommandAndArgs(t *testing.T) {
	cmd, args := commandAndArgs("/setchannel @mychan")
	assert.Equal(t, "/setchannel", cmd)
	assert.Equal(t, []string{"@mychan"}, args)

	// Commands addressed to the bot explicitly
	cmd, args = commandAndArgs("/stats@anonpost_bot")
	assert.Equal(t, "/stats", cmd)
	assert.Empty(t, args)

	cmd, args = commandAndArgs("")
	assert.Equal(t, "", cmd)
	assert.Nil(t, args)
}

func TestDetectMedia(t *testing.T) {
	messageType, fileID := detectMedia(telego.Message{Text: "hi"})
	assert.Equal(t, models.TypeText, messageType)
	assert.Empty(t, fileID)

	messageType, fileID = detectMedia(telego.Message{
		Photo: []telego.PhotoSize{{FileID: "small"}, {FileID: "large"}},
	})
	assert.Equal(t, models.TypePhoto, messageType)
	assert.Equal(t, "large", fileID)

	messageType, fileID = detectMedia(telego.Message{
		Document: &telego.Document{FileID: "doc1"},
	})
	assert.Equal(t, models.TypeDocument, messageType)
	assert.Equal(t, "doc1", fileID)

	messageType, fileID = detectMedia(telego.Message{})
	assert.Equal(t, models.TypeOther, messageType)
	assert.Empty(t, fileID)
}

func TestInboundFromMessageUsesCaptionForMedia(t *testing.T) {
	message := telego.Message{
		MessageID: 11,
		From:      &telego.User{ID: 42, FirstName: "Some", LastName: "One", Username: "sender"},
		Caption:   "look at this",
		Photo:     []telego.PhotoSize{{FileID: "p1"}},
	}

	inbound := inboundFromMessage(message)
	require.NotNil(t, inbound)
	assert.Equal(t, int64(42), inbound.SenderID)
	assert.Equal(t, models.TypePhoto, inbound.MessageType)
	assert.Equal(t, "look at this", inbound.Text)
	assert.Equal(t, "p1", inbound.MediaFileID)
	assert.Equal(t, 11, inbound.MessageID)
}
